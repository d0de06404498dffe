// Package adventurer models the adventurer, equipment, beast and bag state
// reconciled from ledger events.
package adventurer

import (
	"math"

	"github.com/cory-johannsen/survivor/internal/game/catalog"
)

// MaxLevelXP caps the experience required for the next level.
const MaxLevelXP = 400

// CalculateLevel derives a level from accumulated experience.
//
// Postcondition: returns 1 when xp is 0, otherwise floor(sqrt(xp)).
func CalculateLevel(xp int) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp))))
}

// CalculateNextLevelXP returns the experience total at which level+1 is reached.
//
// Postcondition: returns min(MaxLevelXP, (level+1)^2).
func CalculateNextLevelXP(level int) int {
	next := (level + 1) * (level + 1)
	if next > MaxLevelXP {
		return MaxLevelXP
	}
	return next
}

// CalculateProgress returns the percentage progress from the current level
// toward the next one.
func CalculateProgress(xp int) float64 {
	level := CalculateLevel(xp)
	next := CalculateNextLevelXP(level)
	current := level * level
	if next <= current {
		return 100
	}
	return float64(xp-current) / float64(next-current) * 100
}

// Stats is the adventurer's ability block.
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Vitality     int `json:"vitality"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
	Luck         int `json:"luck"`
}

// Total returns the sum of all stat points.
func (s Stats) Total() int {
	return s.Strength + s.Dexterity + s.Vitality + s.Intelligence + s.Wisdom + s.Charisma + s.Luck
}

// Item is an owned loot item. ID zero is the empty-slot sentinel.
type Item struct {
	ID catalog.ItemID `json:"id"`
	XP int            `json:"xp"`
}

// Empty reports whether the item is the empty sentinel.
func (i Item) Empty() bool { return i.ID == catalog.None }

// Level returns the item's greatness using the adventurer level curve.
func (i Item) Level() int { return CalculateLevel(i.XP) }

// Adventurer is the authoritative adventurer state delivered by the ledger.
type Adventurer struct {
	Health                int       `json:"health"`
	XP                    int       `json:"xp"`
	Gold                  int       `json:"gold"`
	BeastHealth           int       `json:"beast_health"`
	StatUpgradesAvailable int       `json:"stat_upgrades_available"`
	Stats                 Stats     `json:"stats"`
	Equipment             Equipment `json:"equipment"`
	ItemSpecialsSeed      uint64    `json:"item_specials_seed"`
	ActionCount           int       `json:"action_count"`
}

// Level returns the adventurer's level derived from XP.
func (a *Adventurer) Level() int { return CalculateLevel(a.XP) }

// Dead reports whether the adventurer has no health left.
func (a *Adventurer) Dead() bool { return a.Health <= 0 }

// InBattle reports whether a beast is currently engaged.
func (a *Adventurer) InBattle() bool { return a.BeastHealth > 0 }

// Clone returns a deep copy of a.
func (a *Adventurer) Clone() *Adventurer {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}

// Beast is the beast currently engaged by the adventurer.
type Beast struct {
	ID            catalog.BeastID `json:"id"`
	Health        int             `json:"health"`
	Level         int             `json:"level"`
	Tier          int             `json:"tier"`
	SpecialPrefix string          `json:"special_prefix,omitempty"`
	SpecialSuffix string          `json:"special_suffix,omitempty"`
}

// Bag holds unequipped items.
type Bag []Item

// Normalize returns a copy of b without empty sentinel entries.
//
// Postcondition: no returned item has ID 0.
func (b Bag) Normalize() Bag {
	out := make(Bag, 0, len(b))
	for _, it := range b {
		if !it.Empty() {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the bag item with the given id.
func (b Bag) Find(id catalog.ItemID) (Item, bool) {
	for _, it := range b {
		if it.ID == id && !it.Empty() {
			return it, true
		}
	}
	return Item{}, false
}
