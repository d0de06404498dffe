package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/survivor/internal/game/action"
	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

// ErrNotAction is returned by ToAction for commands handled locally by the host.
var ErrNotAction = errors.New("command does not produce an action")

// continuation reports whether args request repeating until a terminal outcome.
func continuation(args []string) bool {
	for _, a := range args {
		switch strings.ToLower(a) {
		case "all", "!", "till-end":
			return true
		}
	}
	return false
}

// ParseItemID parses a catalog item id.
//
// Postcondition: returns an error unless s names an item in the catalog.
func ParseItemID(s string) (catalog.ItemID, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return catalog.None, fmt.Errorf("invalid item id %q", s)
	}
	id := catalog.ItemID(n)
	if _, ok := catalog.LookupItem(id); !ok {
		return catalog.None, fmt.Errorf("unknown item id %d", id)
	}
	return id, nil
}

func parseItemIDs(args []string) ([]catalog.ItemID, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one item id is required")
	}
	ids := make([]catalog.ItemID, 0, len(args))
	for _, a := range args {
		id, err := ParseItemID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseBuy(args []string) (action.BuyItems, error) {
	if len(args) == 0 {
		return action.BuyItems{}, errors.New("usage: buy <potions> [item_id[:equip]]...")
	}
	potions, err := strconv.Atoi(args[0])
	if err != nil || potions < 0 {
		return action.BuyItems{}, fmt.Errorf("invalid potion count %q", args[0])
	}
	buy := action.BuyItems{Potions: potions}
	for _, a := range args[1:] {
		raw, equip := strings.CutSuffix(strings.ToLower(a), ":equip")
		id, err := ParseItemID(raw)
		if err != nil {
			return action.BuyItems{}, err
		}
		buy.Purchases = append(buy.Purchases, ledger.ItemPurchase{ItemID: id, Equip: equip})
	}
	return buy, nil
}

var statNames = map[string]func(*adventurer.Stats) *int{
	"str":  func(s *adventurer.Stats) *int { return &s.Strength },
	"dex":  func(s *adventurer.Stats) *int { return &s.Dexterity },
	"vit":  func(s *adventurer.Stats) *int { return &s.Vitality },
	"int":  func(s *adventurer.Stats) *int { return &s.Intelligence },
	"wis":  func(s *adventurer.Stats) *int { return &s.Wisdom },
	"cha":  func(s *adventurer.Stats) *int { return &s.Charisma },
	"luck": func(s *adventurer.Stats) *int { return &s.Luck },
}

func parseStats(args []string) (action.SelectStatUpgrades, error) {
	var stats adventurer.Stats
	for _, a := range args {
		name, value, ok := strings.Cut(strings.ToLower(a), "=")
		if !ok {
			return action.SelectStatUpgrades{}, fmt.Errorf("expected stat=points, got %q", a)
		}
		field, known := statNames[name]
		if !known {
			return action.SelectStatUpgrades{}, fmt.Errorf("unknown stat %q", name)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return action.SelectStatUpgrades{}, fmt.Errorf("invalid points %q for %s", value, name)
		}
		*field(&stats) += n
	}
	if stats.Total() == 0 {
		return action.SelectStatUpgrades{}, errors.New("no stat points allocated")
	}
	return action.SelectStatUpgrades{Stats: stats}, nil
}

// ToAction translates a resolved command and its arguments into an Action.
//
// Precondition: cmd must be non-nil.
// Postcondition: returns ErrNotAction for local commands, or a descriptive
// error when the arguments are malformed.
func ToAction(cmd *Command, args []string) (action.Action, error) {
	switch cmd.Handler {
	case HandlerExplore:
		return action.Explore{UntilBeast: continuation(args)}, nil
	case HandlerAttack:
		return action.Attack{UntilDeath: continuation(args)}, nil
	case HandlerFlee:
		return action.Flee{UntilDeath: continuation(args)}, nil
	case HandlerBuy:
		buy, err := parseBuy(args)
		if err != nil {
			return nil, err
		}
		return buy, nil
	case HandlerStats:
		stats, err := parseStats(args)
		if err != nil {
			return nil, err
		}
		return stats, nil
	case HandlerEquip:
		return action.Equip{}, nil
	case HandlerDrop:
		ids, err := parseItemIDs(args)
		if err != nil {
			return nil, err
		}
		return action.Drop{Items: ids}, nil
	default:
		return nil, ErrNotAction
	}
}
