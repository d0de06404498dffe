package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrEmptyJournal is returned by Load when no records exist for a game.
var ErrEmptyJournal = errors.New("no journaled records for game")

// EventJournal persists live ledger records per game so a session can be
// played back offline.
type EventJournal struct {
	pool   *Pool
	logger *zap.Logger
}

// NewEventJournal creates an EventJournal backed by pool.
//
// Precondition: pool and logger must be non-nil; the event_journal table must exist.
func NewEventJournal(pool *Pool, logger *zap.Logger) *EventJournal {
	return &EventJournal{pool: pool, logger: logger}
}

func gameKey(gameID uint64) string {
	return strconv.FormatUint(gameID, 10)
}

// Append stores records for gameID in order, atomically.
//
// Postcondition: either every record is stored after all previously
// appended records for gameID, or none is and a non-nil error is returned.
func (j *EventJournal) Append(ctx context.Context, gameID uint64, records []*structpb.Struct) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, r := range records {
		body, err := protojson.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		batch.Queue(`INSERT INTO event_journal (game_id, record) VALUES ($1, $2)`, gameKey(gameID), body)
	}

	err := j.pool.InTx(ctx, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("appending %d records for game %d: %w", len(records), gameID, err)
	}
	j.logger.Debug("journaled records",
		zap.Uint64("game_id", gameID),
		zap.Int("records", len(records)),
	)
	return nil
}

// Load returns every record journaled for gameID in append order.
//
// Postcondition: Returns a non-empty slice or ErrEmptyJournal.
func (j *EventJournal) Load(ctx context.Context, gameID uint64) ([]*structpb.Struct, error) {
	rows, err := j.pool.DB().Query(ctx, `
		SELECT record FROM event_journal
		WHERE game_id = $1 ORDER BY id ASC`,
		gameKey(gameID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	out := make([]*structpb.Struct, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		rec := new(structpb.Struct)
		if err := protojson.Unmarshal(body, rec); err != nil {
			return nil, fmt.Errorf("decoding journal record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyJournal
	}
	return out, nil
}

// Count returns the number of records journaled for gameID.
func (j *EventJournal) Count(ctx context.Context, gameID uint64) (int, error) {
	var n int
	err := j.pool.DB().QueryRow(ctx,
		`SELECT COUNT(*) FROM event_journal WHERE game_id = $1`, gameKey(gameID),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting journal: %w", err)
	}
	return n, nil
}

// Purge deletes every record journaled for gameID and returns how many were removed.
func (j *EventJournal) Purge(ctx context.Context, gameID uint64) (int64, error) {
	tag, err := j.pool.DB().Exec(ctx, `DELETE FROM event_journal WHERE game_id = $1`, gameKey(gameID))
	if err != nil {
		return 0, fmt.Errorf("purging journal: %w", err)
	}
	return tag.RowsAffected(), nil
}
