package ledger

import (
	"fmt"
	"slices"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
)

// Fields is a read-only view over a ledger record. Missing or mistyped
// fields read as zero values; the ledger encodes large integers as hex strings.
type Fields struct {
	s *structpb.Struct
}

// View wraps s. A nil struct yields an empty view.
func View(s *structpb.Struct) Fields { return Fields{s: s} }

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f.s.GetFields()[key]
	return ok
}

// Keys returns the field names present, sorted.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f.s.GetFields()))
	for k := range f.s.GetFields() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Uint returns key as an unsigned integer.
func (f Fields) Uint(key string) uint64 {
	v, ok := f.s.GetFields()[key]
	if !ok {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if k.NumberValue < 0 {
			return 0
		}
		return uint64(k.NumberValue)
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(k.StringValue, 0, 64)
		if err != nil {
			return 0
		}
		return n
	case *structpb.Value_BoolValue:
		if k.BoolValue {
			return 1
		}
	}
	return 0
}

// Int returns key as an int.
func (f Fields) Int(key string) int {
	v, ok := f.s.GetFields()[key]
	if !ok {
		return 0
	}
	if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
		return int(n.NumberValue)
	}
	return int(f.Uint(key))
}

// String returns key as a string.
func (f Fields) String(key string) string {
	return f.s.GetFields()[key].GetStringValue()
}

// Bool returns key as a bool.
func (f Fields) Bool(key string) bool {
	v, ok := f.s.GetFields()[key]
	if !ok {
		return false
	}
	if b, ok := v.GetKind().(*structpb.Value_BoolValue); ok {
		return b.BoolValue
	}
	return f.Uint(key) != 0
}

// Struct returns the nested record at key.
func (f Fields) Struct(key string) (Fields, bool) {
	s := f.s.GetFields()[key].GetStructValue()
	return Fields{s: s}, s != nil
}

// List returns the list at key.
func (f Fields) List(key string) []*structpb.Value {
	return f.s.GetFields()[key].GetListValue().GetValues()
}

// Raw returns the wrapped struct.
func (f Fields) Raw() *structpb.Struct { return f.s }

// DecodeItem reads an {id, xp} record.
func DecodeItem(f Fields) adventurer.Item {
	return adventurer.Item{ID: catalog.ItemID(f.Uint("id")), XP: f.Int("xp")}
}

// DecodeItems reads a list of {id, xp} records.
func DecodeItems(values []*structpb.Value) []adventurer.Item {
	out := make([]adventurer.Item, 0, len(values))
	for _, v := range values {
		s := v.GetStructValue()
		if s == nil {
			continue
		}
		out = append(out, DecodeItem(View(s)))
	}
	return out
}

// DecodeItemIDs reads a list of numeric item ids.
func DecodeItemIDs(values []*structpb.Value) []catalog.ItemID {
	out := make([]catalog.ItemID, 0, len(values))
	for _, v := range values {
		switch k := v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			out = append(out, catalog.ItemID(k.NumberValue))
		case *structpb.Value_StringValue:
			if n, err := strconv.ParseUint(k.StringValue, 0, 8); err == nil {
				out = append(out, catalog.ItemID(n))
			}
		}
	}
	return out
}

// DecodeStats reads a stats record.
func DecodeStats(f Fields) adventurer.Stats {
	return adventurer.Stats{
		Strength:     f.Int("strength"),
		Dexterity:    f.Int("dexterity"),
		Vitality:     f.Int("vitality"),
		Intelligence: f.Int("intelligence"),
		Wisdom:       f.Int("wisdom"),
		Charisma:     f.Int("charisma"),
		Luck:         f.Int("luck"),
	}
}

// DecodeEquipment reads an equipment record keyed by slot name.
func DecodeEquipment(f Fields) adventurer.Equipment {
	var eq adventurer.Equipment
	for _, slot := range catalog.Slots {
		if sub, ok := f.Struct(string(slot)); ok {
			_ = eq.Set(slot, DecodeItem(sub))
		}
	}
	return eq
}

// DecodeAdventurer reads an adventurer record.
func DecodeAdventurer(f Fields) *adventurer.Adventurer {
	adv := &adventurer.Adventurer{
		Health:                f.Int("health"),
		XP:                    f.Int("xp"),
		Gold:                  f.Int("gold"),
		BeastHealth:           f.Int("beast_health"),
		StatUpgradesAvailable: f.Int("stat_upgrades_available"),
		ItemSpecialsSeed:      f.Uint("item_specials_seed"),
		ActionCount:           f.Int("action_count"),
	}
	if stats, ok := f.Struct("stats"); ok {
		adv.Stats = DecodeStats(stats)
	}
	if eq, ok := f.Struct("equipment"); ok {
		adv.Equipment = DecodeEquipment(eq)
	}
	return adv
}

// DecodeBeast reads a beast record. A missing tier is taken from the catalog.
func DecodeBeast(f Fields) *adventurer.Beast {
	b := &adventurer.Beast{
		ID:            catalog.BeastID(f.Uint("id")),
		Health:        f.Int("health"),
		Level:         f.Int("level"),
		Tier:          f.Int("tier"),
		SpecialPrefix: f.String("special_prefix"),
		SpecialSuffix: f.String("special_suffix"),
	}
	if b.Tier == 0 {
		if def, ok := catalog.LookupBeast(b.ID); ok {
			b.Tier = def.Tier
		}
	}
	return b
}

func itemIDsValue(ids []catalog.ItemID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// EncodeCall converts c to its wire record.
//
// Postcondition: the record carries "entrypoint", "game_id" and the fields
// relevant to the entrypoint.
func EncodeCall(c Call) (*structpb.Struct, error) {
	m := map[string]any{
		"entrypoint": string(c.Entrypoint),
		"game_id":    strconv.FormatUint(c.GameID, 10),
	}
	switch c.Entrypoint {
	case Explore:
		m["till_beast"] = c.TillBeast
	case Attack, Flee:
		m["to_the_death"] = c.TillDeath
	case BuyItems:
		purchases := make([]any, len(c.Purchases))
		for i, p := range c.Purchases {
			purchases[i] = map[string]any{"item_id": int(p.ItemID), "equip": p.Equip}
		}
		m["potions"] = c.Potions
		m["items"] = purchases
	case SelectStatUpgrades:
		m["stats"] = map[string]any{
			"strength":     c.Stats.Strength,
			"dexterity":    c.Stats.Dexterity,
			"vitality":     c.Stats.Vitality,
			"intelligence": c.Stats.Intelligence,
			"wisdom":       c.Stats.Wisdom,
			"charisma":     c.Stats.Charisma,
			"luck":         c.Stats.Luck,
		}
	case Equip, Drop:
		m["items"] = itemIDsValue(c.Items)
	case StartGame, RequestRandom:
	default:
		return nil, fmt.Errorf("ledger: unknown entrypoint %q", c.Entrypoint)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("ledger: encoding %s call: %w", c.Entrypoint, err)
	}
	return s, nil
}
