package adventurer

import (
	"fmt"

	"github.com/cory-johannsen/survivor/internal/game/catalog"
)

// Equipment holds one item per slot. Empty slots carry the zero Item.
type Equipment struct {
	Weapon Item `json:"weapon"`
	Chest  Item `json:"chest"`
	Head   Item `json:"head"`
	Waist  Item `json:"waist"`
	Foot   Item `json:"foot"`
	Hand   Item `json:"hand"`
	Neck   Item `json:"neck"`
	Ring   Item `json:"ring"`
}

// Slot returns the item occupying slot; unknown slots return the empty item.
func (e Equipment) Slot(slot catalog.Slot) Item {
	switch slot {
	case catalog.SlotWeapon:
		return e.Weapon
	case catalog.SlotChest:
		return e.Chest
	case catalog.SlotHead:
		return e.Head
	case catalog.SlotWaist:
		return e.Waist
	case catalog.SlotFoot:
		return e.Foot
	case catalog.SlotHand:
		return e.Hand
	case catalog.SlotNeck:
		return e.Neck
	case catalog.SlotRing:
		return e.Ring
	default:
		return Item{}
	}
}

// Set places item into slot.
//
// Postcondition: Slot(slot) == item, or an error for an unknown slot.
func (e *Equipment) Set(slot catalog.Slot, item Item) error {
	switch slot {
	case catalog.SlotWeapon:
		e.Weapon = item
	case catalog.SlotChest:
		e.Chest = item
	case catalog.SlotHead:
		e.Head = item
	case catalog.SlotWaist:
		e.Waist = item
	case catalog.SlotFoot:
		e.Foot = item
	case catalog.SlotHand:
		e.Hand = item
	case catalog.SlotNeck:
		e.Neck = item
	case catalog.SlotRing:
		e.Ring = item
	default:
		return fmt.Errorf("unknown equipment slot %q", slot)
	}
	return nil
}

// NewItemsEquipped returns, in canonical slot order, the items of e that are
// non-empty and differ by id from the item in the same slot of prior.
func (e Equipment) NewItemsEquipped(prior Equipment) []Item {
	var out []Item
	for _, slot := range catalog.Slots {
		cur := e.Slot(slot)
		if cur.Empty() || cur.ID == prior.Slot(slot).ID {
			continue
		}
		out = append(out, cur)
	}
	return out
}

// IDs returns the ids of items in order.
func IDs(items []Item) []catalog.ItemID {
	if len(items) == 0 {
		return nil
	}
	out := make([]catalog.ItemID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
