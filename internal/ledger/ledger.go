// Package ledger defines the transaction descriptors submitted to the remote
// game authority and the collaborator interfaces the director consumes.
package ledger

//go:generate mockgen -destination=mock/mock_ledger.go -package=ledgermock github.com/cory-johannsen/survivor/internal/ledger Executor,AdventurerFetcher

import (
	"context"
	"errors"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
)

// ErrNotFound is returned when the authority has no state for a game.
var ErrNotFound = errors.New("ledger: game not found")

// Entrypoint names a game system call.
type Entrypoint string

const (
	StartGame          Entrypoint = "start_game"
	RequestRandom      Entrypoint = "request_random"
	Explore            Entrypoint = "explore"
	Attack             Entrypoint = "attack"
	Flee               Entrypoint = "flee"
	BuyItems           Entrypoint = "buy_items"
	SelectStatUpgrades Entrypoint = "select_stat_upgrades"
	Equip              Entrypoint = "equip"
	Drop               Entrypoint = "drop"
)

// ItemPurchase is one market purchase. Equip requests the item be equipped
// immediately instead of going to the bag.
type ItemPurchase struct {
	ItemID catalog.ItemID
	Equip  bool
}

// Call is a single transaction descriptor. Only the fields relevant to
// Entrypoint are populated.
type Call struct {
	Entrypoint Entrypoint
	GameID     uint64
	// TillBeast continues exploring until a beast is encountered.
	TillBeast bool
	// TillDeath repeats attack or flee until one side dies or escape succeeds.
	TillDeath bool
	Potions   int
	Purchases []ItemPurchase
	Stats     adventurer.Stats
	Items     []catalog.ItemID
}

// Subscription is a live event subscription.
type Subscription interface {
	// Cancel stops delivery. Safe to call more than once.
	Cancel()
}

// Subscriber opens event subscriptions for a game.
type Subscriber interface {
	// Subscribe returns the records that exist at subscription time and
	// invokes deliver, in arrival order, for every later batch.
	Subscribe(ctx context.Context, gameID uint64, deliver func([]*structpb.Struct)) ([]*structpb.Struct, Subscription, error)
}

// AdventurerFetcher reads authoritative adventurer state.
type AdventurerFetcher interface {
	// FetchAdventurer returns ErrNotFound when the game has no adventurer.
	FetchAdventurer(ctx context.Context, gameID uint64) (*adventurer.Adventurer, error)
}

// Executor submits call batches. A batch succeeds or fails as a unit.
type Executor interface {
	Execute(ctx context.Context, calls []Call) error
}
