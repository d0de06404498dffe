package director

import (
	"slices"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/game/event"
)

// State is the reconciled view of one game session.
type State struct {
	GameID uint64
	// Adventurer is the local adventurer, including equipment staged by the host.
	Adventurer *adventurer.Adventurer
	// AdventurerState is the last adventurer applied from the ledger.
	AdventurerState *adventurer.Adventurer
	Bag             adventurer.Bag
	Beast           *adventurer.Beast
	MarketItemIDs   []catalog.ItemID
	// NewMarket is set whenever the market listing changes.
	NewMarket bool
	// ExploreLog holds exploration entries, oldest first.
	ExploreLog []event.Event
	// BattleEvent is the most recent live battle entry.
	BattleEvent event.Event
	// BattleSeq increments every time BattleEvent is replaced.
	BattleSeq int
	// NewInventoryItems accumulates loot discovered during live play.
	NewInventoryItems []int
	// ActionFailed counts failed batch submissions.
	ActionFailed int
}

// Clone returns a copy that shares no mutable memory with s.
func (s State) Clone() State {
	out := s
	out.Adventurer = s.Adventurer.Clone()
	out.AdventurerState = s.AdventurerState.Clone()
	if s.Beast != nil {
		b := *s.Beast
		out.Beast = &b
	}
	out.Bag = slices.Clone(s.Bag)
	out.MarketItemIDs = slices.Clone(s.MarketItemIDs)
	out.ExploreLog = slices.Clone(s.ExploreLog)
	out.NewInventoryItems = slices.Clone(s.NewInventoryItems)
	return out
}

// apply folds ev into s. Reconnecting suppresses battle entries and loot accrual.
func (s *State) apply(ev event.Event, reconnecting bool) {
	switch e := ev.(type) {
	case event.AdventurerUpdate:
		s.Adventurer = e.Adventurer.Clone()
		s.AdventurerState = e.Adventurer.Clone()
	case event.BagUpdate:
		s.Bag = e.Bag.Normalize()
	case event.BeastUpdate:
		b := *e.Beast
		s.Beast = &b
	case event.MarketItemsUpdate:
		s.MarketItemIDs = slices.Clone(e.Items)
		s.NewMarket = true
	case event.Discovery:
		if !reconnecting && e.Type == event.DiscoveryLoot {
			s.NewInventoryItems = append(s.NewInventoryItems, e.Amount)
		}
	case event.Obstacle, event.Ambush, event.DefeatedBeast, event.FledBeast,
		event.StatUpgrade, event.BuyItems, event.Equip, event.Drop, event.LevelUp,
		event.Attack, event.BeastAttack, event.Flee:
	}

	if event.IsExploreLog(ev.Kind()) {
		s.ExploreLog = append(s.ExploreLog, ev)
	}
	if !reconnecting && event.IsBattle(ev.Kind()) {
		s.BattleEvent = ev
		s.BattleSeq++
	}
}

// stageEquip moves item id from the bag into its catalog slot on the local
// adventurer, returning any displaced item to the bag.
func (s *State) stageEquip(id catalog.ItemID) error {
	if s.Adventurer == nil {
		return ErrNoAdventurer
	}
	item, ok := s.Bag.Find(id)
	if !ok {
		return ErrNotInBag
	}
	def, ok := catalog.LookupItem(id)
	if !ok {
		return ErrNotInBag
	}
	displaced := s.Adventurer.Equipment.Slot(def.Slot)
	if err := s.Adventurer.Equipment.Set(def.Slot, item); err != nil {
		return err
	}
	idx := slices.IndexFunc(s.Bag, func(it adventurer.Item) bool { return it.ID == id })
	s.Bag = slices.Delete(slices.Clone(s.Bag), idx, idx+1)
	if !displaced.Empty() {
		s.Bag = append(s.Bag, displaced)
	}
	return nil
}
