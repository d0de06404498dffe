package action

import (
	"fmt"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

// Compiler turns actions into call batches for one game.
type Compiler struct {
	GameID uint64
	// RandomnessRequired prepends a request_random call to actions that
	// consume entropy.
	RandomnessRequired bool
}

// Input is everything Compile reads. Current is the locally staged equipment,
// Prior the last authoritative equipment.
type Input struct {
	Action      Action
	Current     adventurer.Equipment
	Prior       adventurer.Equipment
	BeastHealth int
	Spectating  bool
}

// NeedsRandomness reports whether in requires a request_random call.
// Nothing does unless randomness is required; equip during a battle then
// needs it for the beast's counter-attack.
func (c Compiler) NeedsRandomness(in Input) bool {
	if !c.RandomnessRequired {
		return false
	}
	if in.Action.Type() == TypeEquip && in.BeastHealth > 0 {
		return true
	}
	switch in.Action.Type() {
	case TypeExplore, TypeAttack, TypeFlee, TypeEquip:
		return true
	default:
		return false
	}
}

// Compile builds the ordered call batch for in.
//
// Precondition: in.Action must be non-nil.
// Postcondition: returns nil when spectating; otherwise at most one
// request_random call leads the batch, an implicit equip of staged items
// precedes any non-equip action, and the action's own call is last.
func (c Compiler) Compile(in Input) []ledger.Call {
	if in.Spectating {
		return nil
	}

	var calls []ledger.Call
	if c.NeedsRandomness(in) {
		calls = append(calls, c.call(ledger.RequestRandom))
	}

	staged := adventurer.IDs(in.Current.NewItemsEquipped(in.Prior))
	if in.Action.Type() != TypeEquip && len(staged) > 0 {
		eq := c.call(ledger.Equip)
		eq.Items = staged
		calls = append(calls, eq)
	}

	return append(calls, c.own(in))
}

func (c Compiler) own(in Input) ledger.Call {
	switch a := in.Action.(type) {
	case Explore:
		call := c.call(ledger.Explore)
		call.TillBeast = a.UntilBeast
		return call
	case Attack:
		call := c.call(ledger.Attack)
		call.TillDeath = a.UntilDeath
		return call
	case Flee:
		call := c.call(ledger.Flee)
		call.TillDeath = a.UntilDeath
		return call
	case BuyItems:
		call := c.call(ledger.BuyItems)
		call.Potions = a.Potions
		call.Purchases = append([]ledger.ItemPurchase(nil), a.Purchases...)
		return call
	case SelectStatUpgrades:
		call := c.call(ledger.SelectStatUpgrades)
		call.Stats = a.Stats
		return call
	case Equip:
		call := c.call(ledger.Equip)
		call.Items = adventurer.IDs(in.Current.NewItemsEquipped(in.Prior))
		return call
	case Drop:
		call := c.call(ledger.Drop)
		call.Items = append(call.Items, a.Items...)
		return call
	default:
		panic(fmt.Sprintf("action: unhandled action type %T", a))
	}
}

func (c Compiler) call(ep ledger.Entrypoint) ledger.Call {
	return ledger.Call{Entrypoint: ep, GameID: c.GameID}
}

// StartGame builds the call that opens a fresh session.
func (c Compiler) StartGame() []ledger.Call {
	return []ledger.Call{c.call(ledger.StartGame)}
}
