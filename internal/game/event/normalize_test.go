package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/game/event"
)

func record(t *testing.T, kind string, body any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(map[string]any{
		"models": map[string]any{
			"lootsurvivor-GameEvent": map[string]any{
				"action_count": 7,
				"details":      map[string]any{kind: body},
			},
		},
	})
	require.NoError(t, err)
	return s
}

func TestNormalize_NoModels(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"foo": 1})
	require.NoError(t, err)
	_, ok := event.Normalize(s)
	assert.False(t, ok)
	assert.False(t, event.IsGameEvent(s))
}

func TestNormalize_OtherModel(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"models": map[string]any{"lootsurvivor-TokenMetadata": map[string]any{"details": map[string]any{}}},
	})
	require.NoError(t, err)
	_, ok := event.Normalize(s)
	assert.False(t, ok)
}

func TestModel_SeveralGameEventModelsPicksFirstByName(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"models": map[string]any{
			"zeta-GameEvent":         map[string]any{"details": map[string]any{"adventurer": map[string]any{"health": 1}}},
			"lootsurvivor-GameEvent": map[string]any{"details": map[string]any{"adventurer": map[string]any{"health": 90}}},
			"alpha-TokenMetadata":    map[string]any{"details": map[string]any{}},
		},
	})
	require.NoError(t, err)
	for range 20 {
		ev, ok := event.Normalize(s)
		require.True(t, ok)
		upd, ok := ev.(event.AdventurerUpdate)
		require.True(t, ok)
		assert.Equal(t, 90, upd.Adventurer.Health)
	}
}

func TestNormalize_UnknownKind(t *testing.T) {
	_, ok := event.Normalize(record(t, "teleport", map[string]any{}))
	assert.False(t, ok)
}

func TestNormalize_Nil(t *testing.T) {
	_, ok := event.Normalize(nil)
	assert.False(t, ok)
}

func TestNormalize_Adventurer(t *testing.T) {
	ev, ok := event.Normalize(record(t, "adventurer", map[string]any{
		"health":             100,
		"xp":                 16,
		"gold":               25,
		"beast_health":       3,
		"item_specials_seed": "0x1b",
		"stats":              map[string]any{"strength": 2, "luck": 5},
		"equipment": map[string]any{
			"weapon": map[string]any{"id": 42, "xp": 16},
			"chest":  map[string]any{"id": 0, "xp": 0},
		},
	}))
	require.True(t, ok)
	upd, ok := ev.(event.AdventurerUpdate)
	require.True(t, ok)
	assert.Equal(t, event.KindAdventurer, ev.Kind())
	assert.Equal(t, 7, ev.ActionCount())
	assert.Equal(t, 100, upd.Adventurer.Health)
	assert.Equal(t, 4, upd.Adventurer.Level())
	assert.Equal(t, uint64(27), upd.Adventurer.ItemSpecialsSeed)
	assert.Equal(t, 2, upd.Adventurer.Stats.Strength)
	assert.Equal(t, adventurer.Item{ID: 42, XP: 16}, upd.Adventurer.Equipment.Weapon)
	assert.True(t, upd.Adventurer.Equipment.Chest.Empty())
}

func TestNormalize_BagDropsEmpty(t *testing.T) {
	ev, ok := event.Normalize(record(t, "bag", []any{
		map[string]any{"id": 42, "xp": 1},
		map[string]any{"id": 0, "xp": 0},
		map[string]any{"id": 6, "xp": 4},
	}))
	require.True(t, ok)
	bag := ev.(event.BagUpdate).Bag
	assert.Equal(t, adventurer.Bag{{ID: 42, XP: 1}, {ID: 6, XP: 4}}, bag)
}

func TestNormalize_BeastTierFromCatalog(t *testing.T) {
	ev, ok := event.Normalize(record(t, "beast", map[string]any{
		"id": 51, "health": 40, "level": 10, "special_prefix": "Agony",
	}))
	require.True(t, ok)
	b := ev.(event.BeastUpdate).Beast
	assert.Equal(t, catalog.BeastID(51), b.ID)
	assert.Equal(t, 1, b.Tier)
	assert.Equal(t, "Agony", b.SpecialPrefix)
}

func TestNormalize_MarketItems(t *testing.T) {
	ev, ok := event.Normalize(record(t, "market_items", map[string]any{"items": []any{1, 42, "0x2e"}}))
	require.True(t, ok)
	assert.Equal(t, []catalog.ItemID{1, 42, 46}, ev.(event.MarketItemsUpdate).Items)
}

func TestNormalize_DiscoveryLoot(t *testing.T) {
	ev, ok := event.Normalize(record(t, "discovery", map[string]any{"type": "Loot", "amount": 3, "xp_reward": 1}))
	require.True(t, ok)
	d := ev.(event.Discovery)
	assert.Equal(t, event.DiscoveryLoot, d.Type)
	assert.Equal(t, 3, d.Amount)
	assert.Equal(t, 1, d.XPReward)
}

func TestNormalize_BattleEntries(t *testing.T) {
	ev, ok := event.Normalize(record(t, "beast_attack", map[string]any{"damage": 12, "location": "head", "critical_hit": true}))
	require.True(t, ok)
	assert.Equal(t, event.BeastAttack{Header: event.Header{Action: 7}, Damage: 12, Location: catalog.SlotHead, CriticalHit: true}, ev)

	ev, ok = event.Normalize(record(t, "flee", map[string]any{"success": false}))
	require.True(t, ok)
	assert.False(t, ev.(event.Flee).Success)

	ev, ok = event.Normalize(record(t, "level_up", map[string]any{"level": 5}))
	require.True(t, ok)
	assert.Equal(t, 5, ev.(event.LevelUp).Level)
}

func TestNormalize_BuyItems(t *testing.T) {
	ev, ok := event.Normalize(record(t, "buy_items", map[string]any{
		"potions":         2,
		"items_purchased": []any{map[string]any{"item_id": 46, "equip": true}},
	}))
	require.True(t, ok)
	buy := ev.(event.BuyItems)
	assert.Equal(t, 2, buy.Potions)
	assert.Equal(t, []event.Purchase{{ItemID: 46, Equip: true}}, buy.Purchases)
}

func TestNormalize_EquipAndDrop(t *testing.T) {
	ev, ok := event.Normalize(record(t, "equip", map[string]any{"items": []any{5, 6}}))
	require.True(t, ok)
	assert.Equal(t, []catalog.ItemID{5, 6}, ev.(event.Equip).Items)

	ev, ok = event.Normalize(record(t, "drop", map[string]any{"items": []any{9}}))
	require.True(t, ok)
	assert.Equal(t, []catalog.ItemID{9}, ev.(event.Drop).Items)
}

func TestKindClassification(t *testing.T) {
	assert.True(t, event.IsExploreLog(event.KindDiscovery))
	assert.True(t, event.IsExploreLog(event.KindLevelUp))
	assert.False(t, event.IsExploreLog(event.KindAttack))
	assert.True(t, event.IsBattle(event.KindAttack))
	assert.True(t, event.IsBattle(event.KindAmbush))
	assert.False(t, event.IsBattle(event.KindDiscovery))
	assert.False(t, event.IsBattle(event.KindMarketItems))
	assert.False(t, event.IsExploreLog(event.KindMarketItems))
}

func TestNormalize_Property_KindMatchesDetailKey(t *testing.T) {
	kinds := []event.Kind{
		event.KindDiscovery, event.KindObstacle, event.KindAmbush, event.KindDefeatedBeast,
		event.KindFledBeast, event.KindStatUpgrade, event.KindBuyItems, event.KindEquip,
		event.KindDrop, event.KindLevelUp, event.KindAttack, event.KindBeastAttack, event.KindFlee,
		event.KindBag, event.KindMarketItems,
	}
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.SampledFrom(kinds).Draw(rt, "kind")
		s, err := structpb.NewStruct(map[string]any{
			"models": map[string]any{
				"ns-GameEvent": map[string]any{"details": map[string]any{string(k): map[string]any{}}},
			},
		})
		if err != nil {
			rt.Fatal(err)
		}
		ev, ok := event.Normalize(s)
		if !ok {
			rt.Fatalf("kind %s not normalized", k)
		}
		assert.Equal(rt, k, ev.Kind())
	})
}
