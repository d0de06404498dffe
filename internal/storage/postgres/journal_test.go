package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/protobuf/types/known/structpb"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survivor/internal/ledger"
	"github.com/cory-johannsen/survivor/internal/storage/postgres"
	"github.com/cory-johannsen/survivor/internal/testutil"
)

func setupJournal(t *testing.T) *postgres.EventJournal {
	t.Helper()
	return postgres.NewEventJournal(testutil.NewPool(t), zaptest.NewLogger(t))
}

func record(t *testing.T, kind string, body map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(map[string]any{
		"models": map[string]any{
			"lootsurvivor-GameEvent": map[string]any{
				"action_count": 1,
				"details":      map[string]any{kind: body},
			},
		},
	})
	require.NoError(t, err)
	return s
}

func TestEventJournal_AppendLoadRoundTripsInOrder(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()
	const gameID = uint64(1) << 63

	require.NoError(t, j.Append(ctx, gameID, []*structpb.Struct{
		record(t, "level_up", map[string]any{"level": 3}),
		record(t, "attack", map[string]any{"damage": 7, "location": "hand"}),
	}))
	require.NoError(t, j.Append(ctx, gameID, []*structpb.Struct{
		record(t, "flee", map[string]any{"success": true}),
	}))

	got, err := j.Load(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	var kinds []string
	for _, r := range got {
		models, ok := ledger.View(r).Struct("models")
		require.True(t, ok)
		ev, ok := models.Struct("lootsurvivor-GameEvent")
		require.True(t, ok)
		details, ok := ev.Struct("details")
		require.True(t, ok)
		kinds = append(kinds, details.Keys()...)
	}
	assert.Equal(t, []string{"level_up", "attack", "flee"}, kinds)

	n, err := j.Count(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEventJournal_LoadEmpty(t *testing.T) {
	j := setupJournal(t)
	_, err := j.Load(context.Background(), 424242)
	assert.True(t, errors.Is(err, postgres.ErrEmptyJournal))
}

func TestEventJournal_AppendEmptyIsNoop(t *testing.T) {
	j := setupJournal(t)
	require.NoError(t, j.Append(context.Background(), 77, nil))
	n, err := j.Count(context.Background(), 77)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEventJournal_GamesAreIsolatedAndPurgeable(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, 10, []*structpb.Struct{record(t, "drop", map[string]any{"items": []any{1}})}))
	require.NoError(t, j.Append(ctx, 11, []*structpb.Struct{record(t, "drop", map[string]any{"items": []any{2}})}))

	removed, err := j.Purge(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = j.Load(ctx, 10)
	assert.ErrorIs(t, err, postgres.ErrEmptyJournal)
	got, err := j.Load(ctx, 11)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEventJournal_Property_CountMatchesAppends(t *testing.T) {
	j := setupJournal(t)
	ctx := context.Background()
	gameID := uint64(5000)

	rapid.Check(t, func(rt *rapid.T) {
		gameID++
		sizes := rapid.SliceOfN(rapid.IntRange(0, 4), 1, 5).Draw(rt, "batch_sizes")
		total := 0
		for _, n := range sizes {
			batch := make([]*structpb.Struct, 0, n)
			for i := 0; i < n; i++ {
				batch = append(batch, record(t, "level_up", map[string]any{"level": i + 1}))
			}
			if err := j.Append(ctx, gameID, batch); err != nil {
				rt.Fatal(err)
			}
			total += n
		}
		got, err := j.Count(ctx, gameID)
		if err != nil {
			rt.Fatal(err)
		}
		if got != total {
			rt.Fatalf("count %d, appended %d", got, total)
		}
	})
}

func TestPool_InTxRollsBackOnError(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO event_journal (game_id, record) VALUES ('9', '{}')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := postgres.NewEventJournal(pool, zaptest.NewLogger(t)).Count(ctx, 9)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, pool.Health(ctx, time.Second))
}
