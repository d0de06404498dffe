package event

import (
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

// ModelSuffix identifies the ledger model that carries game events.
const ModelSuffix = "GameEvent"

// Model returns the game event model carried by raw, if any.
//
// A raw record has the shape {"models": {"<namespace>-GameEvent": {...}}}.
func Model(raw *structpb.Struct) (ledger.Fields, bool) {
	models, ok := ledger.View(raw).Struct("models")
	if !ok {
		return ledger.Fields{}, false
	}
	for _, name := range models.Keys() {
		if !strings.HasSuffix(name, ModelSuffix) {
			continue
		}
		if m, ok := models.Struct(name); ok {
			return m, true
		}
	}
	return ledger.Fields{}, false
}

// IsGameEvent reports whether raw carries a game event model.
func IsGameEvent(raw *structpb.Struct) bool {
	_, ok := Model(raw)
	return ok
}

// Normalize converts a raw ledger record into an Event.
//
// Postcondition: returns (nil, false) for records that carry no game event
// model or whose details name no known kind.
func Normalize(raw *structpb.Struct) (Event, bool) {
	model, ok := Model(raw)
	if !ok {
		return nil, false
	}
	details, ok := model.Struct("details")
	if !ok {
		return nil, false
	}
	keys := details.Keys()
	if len(keys) != 1 {
		return nil, false
	}
	kind := Kind(keys[0])
	h := Header{Action: model.Int("action_count")}
	body, _ := details.Struct(keys[0])
	list := details.List(keys[0])

	switch kind {
	case KindAdventurer:
		if body.Raw() == nil {
			return nil, false
		}
		return AdventurerUpdate{Header: h, Adventurer: ledger.DecodeAdventurer(body)}, true
	case KindBag:
		if body.Raw() != nil {
			list = body.List("items")
		}
		bag := adventurer.Bag(ledger.DecodeItems(list)).Normalize()
		return BagUpdate{Header: h, Bag: bag}, true
	case KindBeast:
		if body.Raw() == nil {
			return nil, false
		}
		return BeastUpdate{Header: h, Beast: ledger.DecodeBeast(body)}, true
	case KindMarketItems:
		if body.Raw() != nil {
			list = body.List("items")
		}
		return MarketItemsUpdate{Header: h, Items: ledger.DecodeItemIDs(list)}, true
	case KindDiscovery:
		return Discovery{
			Header:   h,
			Type:     DiscoveryType(body.String("type")),
			Amount:   body.Int("amount"),
			XPReward: body.Int("xp_reward"),
		}, true
	case KindObstacle:
		return Obstacle{
			Header:      h,
			ObstacleID:  body.Int("obstacle_id"),
			Dodged:      body.Bool("dodged"),
			Damage:      body.Int("damage"),
			Location:    catalog.Slot(body.String("location")),
			CriticalHit: body.Bool("critical_hit"),
			XPReward:    body.Int("xp_reward"),
		}, true
	case KindAmbush:
		return Ambush{
			Header:      h,
			BeastID:     catalog.BeastID(body.Uint("beast_id")),
			Damage:      body.Int("damage"),
			Location:    catalog.Slot(body.String("location")),
			CriticalHit: body.Bool("critical_hit"),
		}, true
	case KindDefeatedBeast:
		return DefeatedBeast{
			Header:     h,
			BeastID:    catalog.BeastID(body.Uint("beast_id")),
			GoldReward: body.Int("gold_reward"),
			XPReward:   body.Int("xp_reward"),
		}, true
	case KindFledBeast:
		return FledBeast{
			Header:   h,
			BeastID:  catalog.BeastID(body.Uint("beast_id")),
			XPReward: body.Int("xp_reward"),
		}, true
	case KindStatUpgrade:
		stats, _ := body.Struct("stats")
		return StatUpgrade{Header: h, Stats: ledger.DecodeStats(stats)}, true
	case KindBuyItems:
		var purchases []Purchase
		for _, v := range body.List("items_purchased") {
			p := ledger.View(v.GetStructValue())
			purchases = append(purchases, Purchase{
				ItemID: catalog.ItemID(p.Uint("item_id")),
				Equip:  p.Bool("equip"),
			})
		}
		return BuyItems{Header: h, Potions: body.Int("potions"), Purchases: purchases}, true
	case KindEquip:
		return Equip{Header: h, Items: ledger.DecodeItemIDs(body.List("items"))}, true
	case KindDrop:
		return Drop{Header: h, Items: ledger.DecodeItemIDs(body.List("items"))}, true
	case KindLevelUp:
		return LevelUp{Header: h, Level: body.Int("level")}, true
	case KindAttack:
		return Attack{
			Header:      h,
			Damage:      body.Int("damage"),
			Location:    catalog.Slot(body.String("location")),
			CriticalHit: body.Bool("critical_hit"),
		}, true
	case KindBeastAttack:
		return BeastAttack{
			Header:      h,
			Damage:      body.Int("damage"),
			Location:    catalog.Slot(body.String("location")),
			CriticalHit: body.Bool("critical_hit"),
		}, true
	case KindFlee:
		return Flee{Header: h, Success: body.Bool("success")}, true
	default:
		return nil, false
	}
}
