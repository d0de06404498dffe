package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/survivor/internal/director"
	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/game/combat"
	"github.com/cory-johannsen/survivor/internal/game/event"
)

func itemName(id catalog.ItemID) string {
	if def, ok := catalog.LookupItem(id); ok {
		return def.Name
	}
	return fmt.Sprintf("item #%d", id)
}

func beastName(id catalog.BeastID) string {
	if def, ok := catalog.LookupBeast(id); ok {
		return def.Name
	}
	return fmt.Sprintf("beast #%d", id)
}

func itemNames(ids []catalog.ItemID) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, itemName(id))
	}
	return strings.Join(names, ", ")
}

func crit(critical bool) string {
	if critical {
		return " (critical!)"
	}
	return ""
}

// renderStatus formats the adventurer, beast, bag and market.
func (p palette) renderStatus(s director.State) string {
	adv := s.Adventurer
	if adv == nil {
		return p.Colorize(Dim, "No adventurer.") + "\n"
	}

	var b strings.Builder
	level := adv.Level()
	b.WriteString(p.Colorf(BrightYellow, "Adventurer of game %d", s.GameID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Level %d (%.0f%% to next)  HP %d  Gold %d  XP %d\n",
		level, adventurer.CalculateProgress(adv.XP), adv.Health, adv.Gold, adv.XP)
	st := adv.Stats
	fmt.Fprintf(&b, "  STR %d  DEX %d  VIT %d  INT %d  WIS %d  CHA %d  LUCK %d\n",
		st.Strength, st.Dexterity, st.Vitality, st.Intelligence, st.Wisdom, st.Charisma, st.Luck)
	if adv.StatUpgradesAvailable > 0 {
		b.WriteString(p.Colorf(BrightGreen, "  %d stat upgrade(s) available", adv.StatUpgradesAvailable))
		b.WriteString("\n")
	}
	if adv.Dead() {
		b.WriteString(p.Colorize(BrightRed, "  The adventurer has fallen."))
		b.WriteString("\n")
	}

	b.WriteString(p.Colorize(Cyan, "Equipment:"))
	b.WriteString("\n")
	for _, slot := range catalog.Slots {
		it := adv.Equipment.Slot(slot)
		if it.Empty() {
			fmt.Fprintf(&b, "  %-7s %s\n", slot, p.Colorize(Dim, "-"))
			continue
		}
		fmt.Fprintf(&b, "  %-7s %s (G%d)\n", slot, itemName(it.ID), it.Level())
	}

	if adv.InBattle() && s.Beast != nil {
		b.WriteString(p.Colorf(Red, "Beast: %s  HP %d  Level %d  Tier %d",
			beastName(s.Beast.ID), adv.BeastHealth, s.Beast.Level, s.Beast.Tier))
		b.WriteString("\n")
		pv := combat.PreviewBattle(adv, *s.Beast)
		fmt.Fprintf(&b, "  You hit for %d (%d critical)\n", pv.Hit, pv.Critical)
		taken := make([]string, 0, len(combat.ArmorSlots))
		for _, slot := range combat.ArmorSlots {
			taken = append(taken, fmt.Sprintf("%s %d", slot, pv.Taken[slot]))
		}
		fmt.Fprintf(&b, "  Beast hits: %s\n", strings.Join(taken, ", "))
	}

	if len(s.Bag) > 0 {
		b.WriteString(p.Colorize(Cyan, "Bag:"))
		b.WriteString("\n")
		for _, it := range s.Bag {
			fmt.Fprintf(&b, "  [%d] %s (G%d)\n", it.ID, itemName(it.ID), it.Level())
		}
	}

	if len(s.MarketItemIDs) > 0 {
		b.WriteString(p.Colorize(Cyan, "Market:"))
		b.WriteString("\n")
		for _, id := range s.MarketItemIDs {
			fmt.Fprintf(&b, "  [%d] %s\n", id, itemName(id))
		}
	}
	return b.String()
}

// renderEvent formats one exploration or battle entry as a single line.
func (p palette) renderEvent(ev event.Event) string {
	switch e := ev.(type) {
	case event.Discovery:
		switch e.Type {
		case event.DiscoveryGold:
			return p.Colorf(BrightYellow, "You found %d gold.", e.Amount)
		case event.DiscoveryHealth:
			return p.Colorf(BrightGreen, "You found %d health.", e.Amount)
		default:
			return p.Colorf(BrightCyan, "You found %s.", itemName(catalog.ItemID(e.Amount)))
		}
	case event.Obstacle:
		if e.Dodged {
			return p.Colorf(Green, "You dodged obstacle #%d (+%d xp).", e.ObstacleID, e.XPReward)
		}
		return p.Colorf(Red, "Obstacle #%d hit your %s for %d damage%s.", e.ObstacleID, e.Location, e.Damage, crit(e.CriticalHit))
	case event.Ambush:
		return p.Colorf(Red, "A %s ambushed you, striking your %s for %d%s.", beastName(e.BeastID), e.Location, e.Damage, crit(e.CriticalHit))
	case event.DefeatedBeast:
		return p.Colorf(BrightGreen, "You slew the %s (+%d gold, +%d xp).", beastName(e.BeastID), e.GoldReward, e.XPReward)
	case event.FledBeast:
		return p.Colorf(Yellow, "You escaped the %s (+%d xp).", beastName(e.BeastID), e.XPReward)
	case event.StatUpgrade:
		return p.Colorf(Magenta, "Spent %d stat point(s).", e.Stats.Total())
	case event.BuyItems:
		ids := make([]catalog.ItemID, 0, len(e.Purchases))
		for _, pu := range e.Purchases {
			ids = append(ids, pu.ItemID)
		}
		if len(ids) == 0 {
			return p.Colorf(Magenta, "Bought %d potion(s).", e.Potions)
		}
		return p.Colorf(Magenta, "Bought %d potion(s) and %s.", e.Potions, itemNames(ids))
	case event.Equip:
		return fmt.Sprintf("Equipped %s.", itemNames(e.Items))
	case event.Drop:
		return fmt.Sprintf("Dropped %s.", itemNames(e.Items))
	case event.LevelUp:
		return p.Colorf(Bold, "Reached level %d!", e.Level)
	case event.Attack:
		return fmt.Sprintf("You hit the beast for %d%s.", e.Damage, crit(e.CriticalHit))
	case event.BeastAttack:
		return p.Colorf(Red, "The beast hit your %s for %d%s.", e.Location, e.Damage, crit(e.CriticalHit))
	case event.Flee:
		if e.Success {
			return p.Colorize(Yellow, "You fled.")
		}
		return p.Colorize(Yellow, "You failed to flee.")
	default:
		return ""
	}
}
