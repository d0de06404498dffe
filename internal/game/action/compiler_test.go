package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survivor/internal/game/action"
	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

const gameID = 42

func entrypoints(calls []ledger.Call) []ledger.Entrypoint {
	out := make([]ledger.Entrypoint, len(calls))
	for i, c := range calls {
		out[i] = c.Entrypoint
	}
	return out
}

func stagedRings() (adventurer.Equipment, adventurer.Equipment) {
	current := adventurer.Equipment{
		Weapon: adventurer.Item{ID: 5},
		Ring:   adventurer.Item{ID: 6},
	}
	return current, adventurer.Equipment{}
}

func TestCompile_EquipOutsideBattle(t *testing.T) {
	c := action.Compiler{GameID: gameID, RandomnessRequired: true}
	current, prior := stagedRings()
	calls := c.Compile(action.Input{Action: action.Equip{}, Current: current, Prior: prior})

	require.Len(t, calls, 2)
	assert.Equal(t, []ledger.Entrypoint{ledger.RequestRandom, ledger.Equip}, entrypoints(calls))
	assert.Equal(t, []catalog.ItemID{5, 6}, calls[1].Items)
}

func TestCompile_EquipInBattle(t *testing.T) {
	c := action.Compiler{GameID: gameID, RandomnessRequired: true}
	current, prior := stagedRings()
	calls := c.Compile(action.Input{Action: action.Equip{}, Current: current, Prior: prior, BeastHealth: 12})

	require.Len(t, calls, 2)
	assert.Equal(t, []ledger.Entrypoint{ledger.RequestRandom, ledger.Equip}, entrypoints(calls))
	assert.Equal(t, []catalog.ItemID{5, 6}, calls[1].Items)
}

func TestCompile_EquipInBattleWithoutRandomnessFlag(t *testing.T) {
	c := action.Compiler{GameID: gameID}
	current, prior := stagedRings()
	calls := c.Compile(action.Input{Action: action.Equip{}, Current: current, Prior: prior, BeastHealth: 12})
	assert.Equal(t, []ledger.Entrypoint{ledger.Equip}, entrypoints(calls))
	assert.False(t, c.NeedsRandomness(action.Input{Action: action.Equip{}, BeastHealth: 12}))

	calls = c.Compile(action.Input{Action: action.Equip{}, Current: current, Prior: prior})
	assert.Equal(t, []ledger.Entrypoint{ledger.Equip}, entrypoints(calls))
}

func TestCompile_AttackWithStagedWeapon(t *testing.T) {
	c := action.Compiler{GameID: gameID, RandomnessRequired: true}
	prior := adventurer.Equipment{Weapon: adventurer.Item{ID: 1}}
	current := adventurer.Equipment{Weapon: adventurer.Item{ID: 2}}
	calls := c.Compile(action.Input{Action: action.Attack{UntilDeath: true}, Current: current, Prior: prior})

	require.Len(t, calls, 3)
	assert.Equal(t, []ledger.Entrypoint{ledger.RequestRandom, ledger.Equip, ledger.Attack}, entrypoints(calls))
	assert.Equal(t, []catalog.ItemID{2}, calls[1].Items)
	assert.True(t, calls[2].TillDeath)
	for _, call := range calls {
		assert.Equal(t, uint64(gameID), call.GameID)
	}
}

func TestCompile_Spectating(t *testing.T) {
	c := action.Compiler{GameID: gameID, RandomnessRequired: true}
	current, prior := stagedRings()
	for _, a := range []action.Action{
		action.Explore{}, action.Attack{}, action.Flee{}, action.Equip{},
		action.BuyItems{Potions: 1}, action.SelectStatUpgrades{}, action.Drop{Items: []catalog.ItemID{1}},
	} {
		calls := c.Compile(action.Input{Action: a, Current: current, Prior: prior, BeastHealth: 5, Spectating: true})
		assert.Empty(t, calls, "%s", a.Type())
	}
}

func TestCompile_ExploreWithoutRandomness(t *testing.T) {
	c := action.Compiler{GameID: gameID}
	calls := c.Compile(action.Input{Action: action.Explore{UntilBeast: true}})
	require.Len(t, calls, 1)
	assert.Equal(t, ledger.Explore, calls[0].Entrypoint)
	assert.True(t, calls[0].TillBeast)
}

func TestCompile_MarketActionsNeverRequestRandomness(t *testing.T) {
	c := action.Compiler{GameID: gameID, RandomnessRequired: true}
	buy := action.BuyItems{Potions: 2, Purchases: []ledger.ItemPurchase{{ItemID: 46, Equip: true}}}
	calls := c.Compile(action.Input{Action: buy, BeastHealth: 9})
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Potions)
	assert.Equal(t, buy.Purchases, calls[0].Purchases)

	stats := action.SelectStatUpgrades{Stats: adventurer.Stats{Strength: 1, Luck: 2}}
	calls = c.Compile(action.Input{Action: stats})
	require.Len(t, calls, 1)
	assert.Equal(t, stats.Stats, calls[0].Stats)
}

func TestCompile_DropAfterImplicitEquip(t *testing.T) {
	c := action.Compiler{GameID: gameID, RandomnessRequired: true}
	current := adventurer.Equipment{Chest: adventurer.Item{ID: 77}}
	calls := c.Compile(action.Input{Action: action.Drop{Items: []catalog.ItemID{17}}, Current: current})
	assert.Equal(t, []ledger.Entrypoint{ledger.Equip, ledger.Drop}, entrypoints(calls))
	assert.Equal(t, []catalog.ItemID{77}, calls[0].Items)
	assert.Equal(t, []catalog.ItemID{17}, calls[1].Items)
}

func TestStartGame(t *testing.T) {
	calls := action.Compiler{GameID: gameID}.StartGame()
	assert.Equal(t, []ledger.Call{{Entrypoint: ledger.StartGame, GameID: gameID}}, calls)
}

func drawEquipment(rt *rapid.T, label string) adventurer.Equipment {
	var eq adventurer.Equipment
	for _, slot := range catalog.Slots {
		id := rapid.IntRange(0, 3).Draw(rt, label+"_"+string(slot))
		_ = eq.Set(slot, adventurer.Item{ID: catalog.ItemID(id)})
	}
	return eq
}

func TestCompile_Property_BatchShape(t *testing.T) {
	actions := []action.Action{
		action.Explore{}, action.Attack{}, action.Flee{}, action.Equip{},
		action.BuyItems{}, action.SelectStatUpgrades{}, action.Drop{},
	}
	rapid.Check(t, func(rt *rapid.T) {
		c := action.Compiler{GameID: gameID, RandomnessRequired: rapid.Bool().Draw(rt, "vrf")}
		in := action.Input{
			Action:      rapid.SampledFrom(actions).Draw(rt, "action"),
			Current:     drawEquipment(rt, "current"),
			Prior:       drawEquipment(rt, "prior"),
			BeastHealth: rapid.IntRange(0, 20).Draw(rt, "beast_health"),
		}
		calls := c.Compile(in)

		randoms := 0
		for i, call := range calls {
			if call.Entrypoint == ledger.RequestRandom {
				randoms++
				assert.Equal(rt, 0, i, "request_random must lead the batch")
			}
		}
		assert.LessOrEqual(rt, randoms, 1)
		if !c.RandomnessRequired {
			assert.Zero(rt, randoms, "request_random without randomness required")
		}
		assert.Equal(rt, string(in.Action.Type()), string(calls[len(calls)-1].Entrypoint))
		assert.LessOrEqual(rt, len(calls), 3)
	})
}
