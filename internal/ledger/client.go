package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/game/adventurer"
)

// ServiceName is the fully qualified gRPC service exposed by the ledger gateway.
const ServiceName = "survivor.ledger.v1.Ledger"

// Fully qualified method names.
const (
	SubscribeEventsMethod = "/" + ServiceName + "/SubscribeEvents"
	GetAdventurerMethod   = "/" + ServiceName + "/GetAdventurer"
	ExecuteMethod         = "/" + ServiceName + "/Execute"
)

// Client talks to the ledger gateway over gRPC using structpb messages.
// It implements Subscriber, AdventurerFetcher and Executor.
type Client struct {
	conn        grpc.ClientConnInterface
	logger      *zap.Logger
	callTimeout time.Duration
}

var (
	_ Subscriber        = (*Client)(nil)
	_ AdventurerFetcher = (*Client)(nil)
	_ Executor          = (*Client)(nil)
)

// NewClient wraps an established connection.
//
// Precondition: conn and logger must be non-nil.
func NewClient(conn grpc.ClientConnInterface, logger *zap.Logger) *Client {
	return &Client{conn: conn, logger: logger}
}

// Dial opens an insecure connection to addr. The caller owns the returned
// connection and must close it.
//
// Postcondition: returns a Client and its connection, or a non-nil error.
func Dial(addr string, logger *zap.Logger) (*Client, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dialing ledger %s: %w", addr, err)
	}
	return NewClient(conn, logger), conn, nil
}

// WithCallTimeout bounds every unary call by d. Streams are not bounded.
// A non-positive d disables the bound.
func (c *Client) WithCallTimeout(d time.Duration) *Client {
	c.callTimeout = d
	return c
}

func (c *Client) unaryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

func gameRequest(gameID uint64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"game_id": structpb.NewStringValue(strconv.FormatUint(gameID, 10)),
	}}
}

// records extracts the "records" list of a batch message.
func records(batch *structpb.Struct) []*structpb.Struct {
	values := View(batch).List("records")
	out := make([]*structpb.Struct, 0, len(values))
	for _, v := range values {
		if s := v.GetStructValue(); s != nil {
			out = append(out, s)
		}
	}
	return out
}

type streamSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Cancel stops the stream and waits for the receive loop to exit.
func (s *streamSubscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe opens the event stream for gameID. The first stream message is
// the snapshot of existing records; every later message is a live batch
// passed to deliver from a single goroutine, in arrival order.
//
// Precondition: deliver must be non-nil.
// Postcondition: on success the returned Subscription must eventually be cancelled.
func (c *Client) Subscribe(ctx context.Context, gameID uint64, deliver func([]*structpb.Struct)) ([]*structpb.Struct, Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := c.conn.NewStream(streamCtx, &grpc.StreamDesc{
		StreamName:    "SubscribeEvents",
		ServerStreams: true,
	}, SubscribeEventsMethod)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("opening event stream for game %d: %w", gameID, err)
	}
	if err := stream.SendMsg(gameRequest(gameID)); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("sending subscribe request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("closing subscribe request: %w", err)
	}

	snapshot := new(structpb.Struct)
	if err := stream.RecvMsg(snapshot); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("receiving initial snapshot for game %d: %w", gameID, err)
	}
	initial := records(snapshot)

	sub := &streamSubscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for {
			batch := new(structpb.Struct)
			if err := stream.RecvMsg(batch); err != nil {
				if !errors.Is(err, io.EOF) && streamCtx.Err() == nil {
					c.logger.Warn("event stream closed",
						zap.Uint64("game_id", gameID),
						zap.Error(err),
					)
				}
				return
			}
			if recs := records(batch); len(recs) > 0 {
				deliver(recs)
			}
		}
	}()

	c.logger.Debug("subscribed to game events",
		zap.Uint64("game_id", gameID),
		zap.Int("initial_records", len(initial)),
	)
	return initial, sub, nil
}

// FetchAdventurer reads the authoritative adventurer for gameID.
//
// Postcondition: returns ErrNotFound when the gateway reports no adventurer.
func (c *Client) FetchAdventurer(ctx context.Context, gameID uint64) (*adventurer.Adventurer, error) {
	ctx, cancel := c.unaryContext(ctx)
	defer cancel()
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, GetAdventurerMethod, gameRequest(gameID), resp); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching adventurer for game %d: %w", gameID, err)
	}
	view := View(resp)
	advView, ok := view.Struct("adventurer")
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeAdventurer(advView), nil
}

// Execute submits calls as one batch tagged with a fresh batch id.
//
// Postcondition: returns nil iff the gateway accepted the whole batch.
func (c *Client) Execute(ctx context.Context, calls []Call) error {
	if len(calls) == 0 {
		return nil
	}
	encoded := make([]any, 0, len(calls))
	for _, call := range calls {
		s, err := EncodeCall(call)
		if err != nil {
			return err
		}
		encoded = append(encoded, s.AsMap())
	}
	batchID := uuid.New().String()
	req, err := structpb.NewStruct(map[string]any{
		"batch_id": batchID,
		"calls":    encoded,
	})
	if err != nil {
		return fmt.Errorf("encoding batch %s: %w", batchID, err)
	}

	ctx, cancel := c.unaryContext(ctx)
	defer cancel()
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, ExecuteMethod, req, resp); err != nil {
		return fmt.Errorf("executing batch %s: %w", batchID, err)
	}
	c.logger.Debug("batch executed",
		zap.String("batch_id", batchID),
		zap.Int("calls", len(calls)),
		zap.String("transaction_hash", View(resp).String("transaction_hash")),
	)
	return nil
}
