// Package event defines the typed game events produced from raw ledger
// records and the normalizer that builds them.
package event

import (
	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
)

// Kind is the tag of a game event. Values match the ledger's detail keys.
type Kind string

const (
	KindAdventurer    Kind = "adventurer"
	KindBag           Kind = "bag"
	KindBeast         Kind = "beast"
	KindMarketItems   Kind = "market_items"
	KindDiscovery     Kind = "discovery"
	KindObstacle      Kind = "obstacle"
	KindAmbush        Kind = "ambush"
	KindDefeatedBeast Kind = "defeated_beast"
	KindFledBeast     Kind = "fled_beast"
	KindStatUpgrade   Kind = "stat_upgrade"
	KindBuyItems      Kind = "buy_items"
	KindEquip         Kind = "equip"
	KindDrop          Kind = "drop"
	KindLevelUp       Kind = "level_up"
	KindAttack        Kind = "attack"
	KindBeastAttack   Kind = "beast_attack"
	KindFlee          Kind = "flee"
)

// IsExploreLog reports whether events of kind k belong in the exploration log.
func IsExploreLog(k Kind) bool {
	switch k {
	case KindDiscovery, KindObstacle, KindDefeatedBeast, KindFledBeast,
		KindStatUpgrade, KindBuyItems, KindEquip, KindDrop, KindLevelUp, KindAmbush:
		return true
	default:
		return false
	}
}

// IsBattle reports whether events of kind k belong in the battle feed.
func IsBattle(k Kind) bool {
	switch k {
	case KindAttack, KindBeastAttack, KindFlee, KindAmbush,
		KindDefeatedBeast, KindFledBeast, KindLevelUp:
		return true
	default:
		return false
	}
}

// Event is a normalized game event. The set of implementations is closed.
type Event interface {
	Kind() Kind
	// ActionCount is the adventurer action counter the event was emitted at.
	ActionCount() int
	sealed()
}

// Header carries the fields shared by every event.
type Header struct {
	Action int
}

// ActionCount returns the action counter.
func (h Header) ActionCount() int { return h.Action }

func (Header) sealed() {}

// DiscoveryType is what an exploration turned up.
type DiscoveryType string

const (
	DiscoveryGold   DiscoveryType = "Gold"
	DiscoveryHealth DiscoveryType = "Health"
	DiscoveryLoot   DiscoveryType = "Loot"
)

// AdventurerUpdate replaces the adventurer state.
type AdventurerUpdate struct {
	Header
	Adventurer *adventurer.Adventurer
}

// BagUpdate replaces the bag contents.
type BagUpdate struct {
	Header
	Bag adventurer.Bag
}

// BeastUpdate replaces the current beast.
type BeastUpdate struct {
	Header
	Beast *adventurer.Beast
}

// MarketItemsUpdate replaces the market listing.
type MarketItemsUpdate struct {
	Header
	Items []catalog.ItemID
}

// Discovery is a non-combat find while exploring. For Loot, Amount is the item id.
type Discovery struct {
	Header
	Type     DiscoveryType
	Amount   int
	XPReward int
}

// Obstacle is a trap encountered while exploring.
type Obstacle struct {
	Header
	ObstacleID  int
	Dodged      bool
	Damage      int
	Location    catalog.Slot
	CriticalHit bool
	XPReward    int
}

// Ambush is a beast attacking before the adventurer can act.
type Ambush struct {
	Header
	BeastID     catalog.BeastID
	Damage      int
	Location    catalog.Slot
	CriticalHit bool
}

// DefeatedBeast closes a battle won by the adventurer.
type DefeatedBeast struct {
	Header
	BeastID    catalog.BeastID
	GoldReward int
	XPReward   int
}

// FledBeast closes a battle the adventurer escaped.
type FledBeast struct {
	Header
	BeastID  catalog.BeastID
	XPReward int
}

// StatUpgrade records applied stat points.
type StatUpgrade struct {
	Header
	Stats adventurer.Stats
}

// Purchase is one bought item.
type Purchase struct {
	ItemID catalog.ItemID
	Equip  bool
}

// BuyItems records a market purchase.
type BuyItems struct {
	Header
	Potions   int
	Purchases []Purchase
}

// Equip records items moved from the bag to equipment.
type Equip struct {
	Header
	Items []catalog.ItemID
}

// Drop records discarded items.
type Drop struct {
	Header
	Items []catalog.ItemID
}

// LevelUp records the adventurer reaching a new level.
type LevelUp struct {
	Header
	Level int
}

// Attack is one adventurer strike.
type Attack struct {
	Header
	Damage      int
	Location    catalog.Slot
	CriticalHit bool
}

// BeastAttack is one beast strike on a body location.
type BeastAttack struct {
	Header
	Damage      int
	Location    catalog.Slot
	CriticalHit bool
}

// Flee is one escape attempt.
type Flee struct {
	Header
	Success bool
}

func (AdventurerUpdate) Kind() Kind  { return KindAdventurer }
func (BagUpdate) Kind() Kind         { return KindBag }
func (BeastUpdate) Kind() Kind       { return KindBeast }
func (MarketItemsUpdate) Kind() Kind { return KindMarketItems }
func (Discovery) Kind() Kind         { return KindDiscovery }
func (Obstacle) Kind() Kind          { return KindObstacle }
func (Ambush) Kind() Kind            { return KindAmbush }
func (DefeatedBeast) Kind() Kind     { return KindDefeatedBeast }
func (FledBeast) Kind() Kind         { return KindFledBeast }
func (StatUpgrade) Kind() Kind       { return KindStatUpgrade }
func (BuyItems) Kind() Kind          { return KindBuyItems }
func (Equip) Kind() Kind             { return KindEquip }
func (Drop) Kind() Kind              { return KindDrop }
func (LevelUp) Kind() Kind           { return KindLevelUp }
func (Attack) Kind() Kind            { return KindAttack }
func (BeastAttack) Kind() Kind       { return KindBeastAttack }
func (Flee) Kind() Kind              { return KindFlee }
