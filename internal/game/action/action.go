// Package action defines player intents and compiles them into ordered
// ledger call batches.
package action

import (
	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

// Type tags an Action.
type Type string

const (
	TypeExplore            Type = "explore"
	TypeAttack             Type = "attack"
	TypeFlee               Type = "flee"
	TypeBuyItems           Type = "buy_items"
	TypeSelectStatUpgrades Type = "select_stat_upgrades"
	TypeEquip              Type = "equip"
	TypeDrop               Type = "drop"
)

// Action is a player intent. The set of implementations is closed.
type Action interface {
	Type() Type
	sealed()
}

// Explore walks the dungeon. UntilBeast keeps exploring until a beast appears.
type Explore struct {
	UntilBeast bool
}

// Attack strikes the current beast. UntilDeath repeats until one side dies.
type Attack struct {
	UntilDeath bool
}

// Flee tries to escape the current beast. UntilDeath repeats until escape or death.
type Flee struct {
	UntilDeath bool
}

// BuyItems purchases potions and market items.
type BuyItems struct {
	Potions   int
	Purchases []ledger.ItemPurchase
}

// SelectStatUpgrades spends available stat points.
type SelectStatUpgrades struct {
	Stats adventurer.Stats
}

// Equip commits locally staged equipment. The items are derived from the
// difference between staged and authoritative equipment at compile time.
type Equip struct{}

// Drop discards items.
type Drop struct {
	Items []catalog.ItemID
}

func (Explore) Type() Type            { return TypeExplore }
func (Attack) Type() Type             { return TypeAttack }
func (Flee) Type() Type               { return TypeFlee }
func (BuyItems) Type() Type           { return TypeBuyItems }
func (SelectStatUpgrades) Type() Type { return TypeSelectStatUpgrades }
func (Equip) Type() Type              { return TypeEquip }
func (Drop) Type() Type               { return TypeDrop }

func (Explore) sealed()            {}
func (Attack) sealed()             {}
func (Flee) sealed()               {}
func (BuyItems) sealed()           {}
func (SelectStatUpgrades) sealed() {}
func (Equip) sealed()              {}
func (Drop) sealed()               {}
