// Package catalog holds the static item, beast and specials tables used to
// interpret numeric ids delivered by the ledger.
//
// All trait lookups are keyed by numeric id. Display names exist for logging
// and rendering only and are never used for dispatch.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// ItemID is the on-chain loot item identifier. Zero is the empty-slot sentinel.
type ItemID uint8

// BeastID is the on-chain beast identifier.
type BeastID uint8

// Trait ids referenced by combat rules.
const (
	None         ItemID = 0
	Pendant      ItemID = 1
	Necklace     ItemID = 2
	Amulet       ItemID = 3
	PlatinumRing ItemID = 6
	TitaniumRing ItemID = 7
)

// Levels at which item specials become active.
const (
	SuffixUnlockLevel = 15
	PrefixUnlockLevel = 19
)

// Type is an item's elemental type (weapons) or material (armor).
type Type string

const (
	TypeNone     Type = ""
	TypeNecklace Type = "necklace"
	TypeRing     Type = "ring"
	TypeMagic    Type = "magic"
	TypeBlade    Type = "blade"
	TypeBludgeon Type = "bludgeon"
	TypeCloth    Type = "cloth"
	TypeHide     Type = "hide"
	TypeMetal    Type = "metal"
)

var validTypes = map[Type]bool{
	TypeNecklace: true, TypeRing: true,
	TypeMagic: true, TypeBlade: true, TypeBludgeon: true,
	TypeCloth: true, TypeHide: true, TypeMetal: true,
}

// Slot is the equipment slot an item occupies.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotChest  Slot = "chest"
	SlotHead   Slot = "head"
	SlotWaist  Slot = "waist"
	SlotFoot   Slot = "foot"
	SlotHand   Slot = "hand"
	SlotNeck   Slot = "neck"
	SlotRing   Slot = "ring"
)

// Slots lists every equipment slot in canonical order.
var Slots = []Slot{SlotWeapon, SlotChest, SlotHead, SlotWaist, SlotFoot, SlotHand, SlotNeck, SlotRing}

var validSlots = map[Slot]bool{
	SlotWeapon: true, SlotChest: true, SlotHead: true, SlotWaist: true,
	SlotFoot: true, SlotHand: true, SlotNeck: true, SlotRing: true,
}

// ItemDef is the static definition of a loot item.
type ItemDef struct {
	ID   ItemID `yaml:"id"`
	Name string `yaml:"name"`
	Tier int    `yaml:"tier"`
	Type Type   `yaml:"type"`
	Slot Slot   `yaml:"slot"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == None {
		errs = append(errs, errors.New("id must be > 0"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Tier < 1 || d.Tier > 5 {
		errs = append(errs, fmt.Errorf("tier must be 1-5, got %d", d.Tier))
	}
	if !validTypes[d.Type] {
		errs = append(errs, fmt.Errorf("unknown type %q", d.Type))
	}
	if !validSlots[d.Slot] {
		errs = append(errs, fmt.Errorf("unknown slot %q", d.Slot))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %d: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// BeastDef is the static definition of a beast.
type BeastDef struct {
	ID     BeastID `yaml:"id"`
	Name   string  `yaml:"name"`
	Tier   int     `yaml:"tier"`
	Attack Type    `yaml:"attack"`
	Armor  Type    `yaml:"armor"`
}

// Validate checks that the BeastDef satisfies its invariants.
func (d *BeastDef) Validate() error {
	var errs []error
	if d.ID == 0 {
		errs = append(errs, errors.New("id must be > 0"))
	}
	if d.Tier < 1 || d.Tier > 5 {
		errs = append(errs, fmt.Errorf("tier must be 1-5, got %d", d.Tier))
	}
	switch d.Attack {
	case TypeMagic, TypeBlade, TypeBludgeon:
	default:
		errs = append(errs, fmt.Errorf("attack must be a weapon type, got %q", d.Attack))
	}
	switch d.Armor {
	case TypeCloth, TypeHide, TypeMetal:
	default:
		errs = append(errs, fmt.Errorf("armor must be a material, got %q", d.Armor))
	}
	if len(errs) > 0 {
		return fmt.Errorf("beast %d: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Specials are the names an item derives from its id, level and the
// adventurer's specials seed. Empty strings mean "not unlocked".
type Specials struct {
	// Suffix is the "of ..." suffix, unlocked at SuffixUnlockLevel.
	Suffix string
	// Prefix is the first name prefix, unlocked at PrefixUnlockLevel.
	Prefix string
	// NameSuffix is the second name part, unlocked at PrefixUnlockLevel.
	NameSuffix string
}

// Registry indexes item and beast definitions by numeric id.
type Registry struct {
	items        map[ItemID]*ItemDef
	beasts       map[BeastID]*BeastDef
	suffixes     []string
	prefixes     []string
	nameSuffixes []string
}

type itemsFile struct {
	Items []*ItemDef `yaml:"items"`
}

type beastsFile struct {
	Beasts []*BeastDef `yaml:"beasts"`
}

type specialsFile struct {
	Suffixes     []string `yaml:"suffixes"`
	Prefixes     []string `yaml:"prefixes"`
	NameSuffixes []string `yaml:"name_suffixes"`
}

// Load parses items.yaml, beasts.yaml and specials.yaml from fsys.
//
// Precondition: fsys contains the three files at its root.
// Postcondition: returns a fully indexed Registry or the first error encountered.
func Load(fsys fs.FS) (*Registry, error) {
	var itf itemsFile
	if err := decode(fsys, "items.yaml", &itf); err != nil {
		return nil, err
	}
	var bf beastsFile
	if err := decode(fsys, "beasts.yaml", &bf); err != nil {
		return nil, err
	}
	var sf specialsFile
	if err := decode(fsys, "specials.yaml", &sf); err != nil {
		return nil, err
	}

	r := &Registry{
		items:        make(map[ItemID]*ItemDef, len(itf.Items)),
		beasts:       make(map[BeastID]*BeastDef, len(bf.Beasts)),
		suffixes:     sf.Suffixes,
		prefixes:     sf.Prefixes,
		nameSuffixes: sf.NameSuffixes,
	}
	for _, d := range itf.Items {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := r.items[d.ID]; dup {
			return nil, fmt.Errorf("catalog: item id %d already registered", d.ID)
		}
		r.items[d.ID] = d
	}
	for _, d := range bf.Beasts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := r.beasts[d.ID]; dup {
			return nil, fmt.Errorf("catalog: beast id %d already registered", d.ID)
		}
		r.beasts[d.ID] = d
	}
	if len(r.suffixes) == 0 || len(r.prefixes) == 0 || len(r.nameSuffixes) == 0 {
		return nil, errors.New("catalog: specials lists must not be empty")
	}
	return r, nil
}

func decode(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: parsing %s: %w", name, err)
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the embedded tables.
// Panics if the embedded data is invalid, which is a build defect.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			panic("catalog: embedded data: " + err.Error())
		}
		reg, err := Load(sub)
		if err != nil {
			panic(err.Error())
		}
		defaultReg = reg
	})
	return defaultReg
}

// Item returns the definition for id.
//
// Postcondition: ok is false for the empty sentinel and unknown ids.
func (r *Registry) Item(id ItemID) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Beast returns the definition for id.
func (r *Registry) Beast(id BeastID) (*BeastDef, bool) {
	d, ok := r.beasts[id]
	return d, ok
}

// ItemCount returns the number of registered items.
func (r *Registry) ItemCount() int { return len(r.items) }

// BeastCount returns the number of registered beasts.
func (r *Registry) BeastCount() int { return len(r.beasts) }

// Specials derives the special names for item id at level with the given seed.
//
// Postcondition: a zero seed yields no specials; names unlock at
// SuffixUnlockLevel and PrefixUnlockLevel respectively.
func (r *Registry) Specials(id ItemID, level int, seed uint64) Specials {
	var s Specials
	if seed == 0 || id == None {
		return s
	}
	n := seed + uint64(id)
	if level >= SuffixUnlockLevel {
		s.Suffix = r.suffixes[n%uint64(len(r.suffixes))]
	}
	if level >= PrefixUnlockLevel {
		s.Prefix = r.prefixes[n%uint64(len(r.prefixes))]
		s.NameSuffix = r.nameSuffixes[n%uint64(len(r.nameSuffixes))]
	}
	return s
}

// LookupItem resolves id against the Default registry.
func LookupItem(id ItemID) (*ItemDef, bool) { return Default().Item(id) }

// LookupBeast resolves id against the Default registry.
func LookupBeast(id BeastID) (*BeastDef, bool) { return Default().Beast(id) }

// SpecialsFor derives specials against the Default registry.
func SpecialsFor(id ItemID, level int, seed uint64) Specials {
	return Default().Specials(id, level, seed)
}
