package ledger_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

// fakeGateway is an in-process ledger gateway speaking structpb messages.
type fakeGateway struct {
	mu          sync.Mutex
	snapshot    map[uint64][]any
	live        chan []any
	adventurers map[uint64]map[string]any
	executed    []*structpb.Struct
	execErr     error
	execDelay   time.Duration
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		snapshot:    make(map[uint64][]any),
		live:        make(chan []any, 4),
		adventurers: make(map[uint64]map[string]any),
	}
}

func batch(records []any) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"records": records})
}

func (g *fakeGateway) subscribe(_ any, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	gameID := ledger.View(req).Uint("game_id")
	g.mu.Lock()
	initial := g.snapshot[gameID]
	g.mu.Unlock()

	msg, err := batch(initial)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(msg); err != nil {
		return err
	}
	for {
		select {
		case <-stream.Context().Done():
			return nil
		case records := <-g.live:
			msg, err := batch(records)
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

func (g *fakeGateway) getAdventurer(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	gameID := ledger.View(req).Uint("game_id")
	if gameID == 404 {
		return nil, status.Error(codes.NotFound, "no such game")
	}
	g.mu.Lock()
	adv, ok := g.adventurers[gameID]
	g.mu.Unlock()
	if !ok {
		return structpb.NewStruct(map[string]any{"found": false})
	}
	return structpb.NewStruct(map[string]any{"found": true, "adventurer": adv})
}

func (g *fakeGateway) execute(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	g.mu.Lock()
	delay := g.execDelay
	g.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.execErr != nil {
		return nil, g.execErr
	}
	g.executed = append(g.executed, req)
	return structpb.NewStruct(map[string]any{"transaction_hash": "0xabc"})
}

func (g *fakeGateway) desc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: ledger.ServiceName,
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetAdventurer", Handler: g.getAdventurer},
			{MethodName: "Execute", Handler: g.execute},
		},
		Streams: []grpc.StreamDesc{
			{StreamName: "SubscribeEvents", Handler: g.subscribe, ServerStreams: true},
		},
	}
}

func testClient(t *testing.T) (*ledger.Client, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	grpcServer.RegisterService(gw.desc(), gw)

	go func() { _ = grpcServer.Serve(lis) }()
	t.Cleanup(func() { grpcServer.Stop() })

	conn, err := grpc.NewClient(lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return ledger.NewClient(conn, zaptest.NewLogger(t)), gw
}

func gameEvent(kind string, body any) map[string]any {
	return map[string]any{
		"models": map[string]any{
			"lootsurvivor-GameEvent": map[string]any{"details": map[string]any{kind: body}},
		},
	}
}

func TestClient_SubscribeDeliversSnapshotThenLive(t *testing.T) {
	client, gw := testClient(t)
	gw.snapshot[9] = []any{
		gameEvent("level_up", map[string]any{"level": 2}),
		gameEvent("flee", map[string]any{"success": true}),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan []*structpb.Struct, 2)
	initial, sub, err := client.Subscribe(ctx, 9, func(records []*structpb.Struct) { got <- records })
	require.NoError(t, err)
	defer sub.Cancel()
	require.Len(t, initial, 2)
	_, ok := ledger.View(initial[0]).Struct("models")
	assert.True(t, ok)

	gw.live <- []any{gameEvent("attack", map[string]any{"damage": 9})}
	select {
	case records := <-got:
		require.Len(t, records, 1)
	case <-ctx.Done():
		t.Fatal("live batch not delivered")
	}

	sub.Cancel()
	sub.Cancel()
}

func TestClient_SubscribeEmptySnapshot(t *testing.T) {
	client, _ := testClient(t)
	initial, sub, err := client.Subscribe(context.Background(), 1, func([]*structpb.Struct) {})
	require.NoError(t, err)
	defer sub.Cancel()
	assert.Empty(t, initial)
}

func TestClient_FetchAdventurer(t *testing.T) {
	client, gw := testClient(t)
	gw.adventurers[3] = map[string]any{
		"health": 75,
		"xp":     "0x19",
		"equipment": map[string]any{
			"ring": map[string]any{"id": 7, "xp": 9},
		},
	}

	adv, err := client.FetchAdventurer(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 75, adv.Health)
	assert.Equal(t, 25, adv.XP)
	assert.Equal(t, catalog.TitaniumRing, adv.Equipment.Ring.ID)
}

func TestClient_FetchAdventurerNotFound(t *testing.T) {
	client, _ := testClient(t)

	_, err := client.FetchAdventurer(context.Background(), 5)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = client.FetchAdventurer(context.Background(), 404)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestClient_ExecuteSendsOneBatch(t *testing.T) {
	client, gw := testClient(t)
	calls := []ledger.Call{
		{Entrypoint: ledger.RequestRandom, GameID: 3},
		{Entrypoint: ledger.Equip, GameID: 3, Items: []catalog.ItemID{42}},
		{Entrypoint: ledger.Attack, GameID: 3, TillDeath: true},
	}
	require.NoError(t, client.Execute(context.Background(), calls))

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.executed, 1)
	req := ledger.View(gw.executed[0])
	_, err := uuid.Parse(req.String("batch_id"))
	assert.NoError(t, err)

	sent := req.List("calls")
	require.Len(t, sent, 3)
	var entrypoints []string
	for _, v := range sent {
		entrypoints = append(entrypoints, ledger.View(v.GetStructValue()).String("entrypoint"))
	}
	assert.Equal(t, []string{"request_random", "equip", "attack"}, entrypoints)
	assert.True(t, ledger.View(sent[2].GetStructValue()).Bool("to_the_death"))
}

func TestClient_ExecuteEmptyBatchIsNoop(t *testing.T) {
	client, gw := testClient(t)
	require.NoError(t, client.Execute(context.Background(), nil))
	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Empty(t, gw.executed)
}

func TestClient_ExecuteFailure(t *testing.T) {
	client, gw := testClient(t)
	gw.execErr = status.Error(codes.FailedPrecondition, "adventurer is dead")

	err := client.Execute(context.Background(), []ledger.Call{{Entrypoint: ledger.Explore, GameID: 1}})
	require.Error(t, err)
	var st interface{ GRPCStatus() *status.Status }
	require.True(t, errors.As(err, &st))
	assert.Equal(t, codes.FailedPrecondition, st.GRPCStatus().Code())
}

func TestClient_ExecuteRejectsUnknownEntrypoint(t *testing.T) {
	client, _ := testClient(t)
	err := client.Execute(context.Background(), []ledger.Call{{Entrypoint: "teleport"}})
	assert.Error(t, err)
}

func TestClient_CallTimeoutBoundsUnaryCalls(t *testing.T) {
	client, gw := testClient(t)
	gw.execDelay = 2 * time.Second
	client.WithCallTimeout(50 * time.Millisecond)

	err := client.Execute(context.Background(), []ledger.Call{{Entrypoint: ledger.Explore, GameID: 1}})
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(errors.Unwrap(err)))
}
