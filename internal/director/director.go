// Package director reconciles the ledger's game event stream into local
// state and turns player actions into ordered call batches.
package director

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/game/action"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/game/event"
	"github.com/cory-johannsen/survivor/internal/ledger"
)

var (
	// ErrSpectating is returned by ExecuteAction while spectating.
	ErrSpectating = errors.New("director: actions are disabled while spectating")
	// ErrNoGame is returned when no game has been subscribed.
	ErrNoGame = errors.New("director: no active game")
	// ErrNoAdventurer is returned when no adventurer state has been applied yet.
	ErrNoAdventurer = errors.New("director: no adventurer")
	// ErrNotInBag is returned by StageEquip for items the bag does not hold.
	ErrNotInBag = errors.New("director: item is not in the bag")
)

// Mode is how a subscription was started.
type Mode int

const (
	// ModeFresh started a new game because the ledger had no events.
	ModeFresh Mode = iota
	// ModeReconnect replayed existing events instantly.
	ModeReconnect
	// ModeSpectate replayed a living adventurer's events instantly.
	ModeSpectate
	// ModeSpectateReplay held a fallen adventurer's events for manual playback.
	ModeSpectateReplay
	// ModeTeardown ended the session.
	ModeTeardown
)

func (m Mode) String() string {
	switch m {
	case ModeFresh:
		return "fresh"
	case ModeReconnect:
		return "reconnect"
	case ModeSpectate:
		return "spectate"
	case ModeSpectateReplay:
		return "spectate_replay"
	case ModeTeardown:
		return "teardown"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Journal records live ledger records for later replay.
type Journal interface {
	Append(ctx context.Context, gameID uint64, records []*structpb.Struct) error
}

// Config wires a Director to its collaborators.
type Config struct {
	Subscriber ledger.Subscriber
	Fetcher    ledger.AdventurerFetcher
	Executor   ledger.Executor
	// Journal is optional.
	Journal Journal
	Logger  *zap.Logger
	Pacing  Pacing
	// RandomnessRequired prepends request_random to entropy-consuming actions.
	RandomnessRequired bool
	// Sleep defaults to Sleep.
	Sleep SleepFunc
	// OnExit is called when a session is torn down.
	OnExit func()
}

// Director owns the subscription lifecycle, the event sequencer and the
// reconciled game state.
type Director struct {
	cfg    Config
	logger *zap.Logger
	seq    *Sequencer[queued]

	// applyMu serializes event application between replay and the sequencer.
	applyMu sync.Mutex

	mu         sync.Mutex
	state      State
	listeners  []func(State)
	spectating bool
	replay     []*structpb.Struct
	sub        ledger.Subscription
	gen        uint64
	ready      bool
	pending    []*structpb.Struct
	journalCtx context.Context
}

// New creates a Director.
//
// Precondition: cfg.Subscriber, cfg.Fetcher, cfg.Executor and cfg.Logger must be non-nil.
// Postcondition: the returned Director is idle until Run and Subscribe are called.
func New(cfg Config) *Director {
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	d := &Director{
		cfg:        cfg,
		logger:     cfg.Logger,
		journalCtx: context.Background(),
	}
	d.seq = NewSequencer(d.applyQueued)
	return d
}

// queued is a live record tagged with the subscription generation it was
// accepted under.
type queued struct {
	raw *structpb.Struct
	gen uint64
}

func stamp(records []*structpb.Struct, gen uint64) []queued {
	out := make([]queued, 0, len(records))
	for _, r := range records {
		out = append(out, queued{raw: r, gen: gen})
	}
	return out
}

// applyQueued applies q unless its subscription has been replaced since it
// was queued.
func (d *Director) applyQueued(ctx context.Context, q queued) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()
	d.mu.Lock()
	stale := q.gen != d.gen
	d.mu.Unlock()
	if stale {
		d.logger.Debug("dropping record from a replaced subscription")
		return
	}
	d.process(ctx, q.raw, false)
}

// Run applies queued live events until ctx is cancelled.
func (d *Director) Run(ctx context.Context) error {
	return d.seq.Run(ctx)
}

// Sequencer exposes the live event queue.
func (d *Director) Sequencer() *Sequencer[queued] { return d.seq }

// OnChange registers fn to receive a state snapshot after every change.
// fn is called without internal locks held.
func (d *Director) OnChange(fn func(State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// State returns a snapshot of the reconciled state.
func (d *Director) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Clone()
}

// ActionFailed returns the number of failed batch submissions.
func (d *Director) ActionFailed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.ActionFailed
}

// SetSpectating toggles read-only observation.
func (d *Director) SetSpectating(spectating bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spectating = spectating
}

// Spectating reports whether the director is observing only.
func (d *Director) Spectating() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spectating
}

// ReplayEvents returns the events held for a fallen spectated adventurer.
func (d *Director) ReplayEvents() []*structpb.Struct {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.replay)
}

// SetEventQueue replaces the pending live queue with records, which are then
// applied with pacing. Records carrying no game event are skipped.
func (d *Director) SetEventQueue(records []*structpb.Struct) {
	d.mu.Lock()
	gen := d.gen
	d.mu.Unlock()
	d.seq.Replace(stamp(gameEvents(records), gen))
}

// mutate runs fn against the state under lock and notifies listeners.
func (d *Director) mutate(fn func(*State)) {
	d.mu.Lock()
	fn(&d.state)
	snapshot := d.state.Clone()
	listeners := slices.Clone(d.listeners)
	d.mu.Unlock()
	for _, l := range listeners {
		l(snapshot)
	}
}

// ProcessEvent applies one raw ledger record. Reconnecting records are
// applied instantly and without battle or loot side effects; live records
// are followed by their pacing delay.
//
// Postcondition: records carrying no known game event leave state unchanged.
func (d *Director) ProcessEvent(ctx context.Context, raw *structpb.Struct, reconnecting bool) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()
	d.process(ctx, raw, reconnecting)
}

func (d *Director) process(ctx context.Context, raw *structpb.Struct, reconnecting bool) {
	ev, ok := event.Normalize(raw)
	if !ok {
		d.logger.Debug("dropping record without game event")
		return
	}
	d.mutate(func(s *State) { s.apply(ev, reconnecting) })
	if reconnecting {
		return
	}
	if delay := d.cfg.Pacing.Delay(ev.Kind()); delay > 0 {
		if err := d.cfg.Sleep(ctx, delay); err != nil {
			d.logger.Debug("pacing interrupted", zap.String("kind", string(ev.Kind())), zap.Error(err))
		}
	}
}

func (d *Director) reconnect(ctx context.Context, records []*structpb.Struct) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()
	for _, raw := range gameEvents(records) {
		d.process(ctx, raw, true)
	}
}

func gameEvents(records []*structpb.Struct) []*structpb.Struct {
	out := make([]*structpb.Struct, 0, len(records))
	for _, r := range records {
		if event.IsGameEvent(r) {
			out = append(out, r)
		}
	}
	return out
}

// deliver returns the live callback bound to subscription generation gen.
func (d *Director) deliver(gameID, gen uint64) func([]*structpb.Struct) {
	return func(records []*structpb.Struct) {
		events := gameEvents(records)
		if len(events) == 0 {
			return
		}
		d.mu.Lock()
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		if !d.ready {
			d.pending = append(d.pending, events...)
			d.mu.Unlock()
			return
		}
		journalCtx := d.journalCtx
		d.mu.Unlock()

		d.seq.Append(stamp(events, gen)...)
		d.record(journalCtx, gameID, events)
	}
}

func (d *Director) record(ctx context.Context, gameID uint64, events []*structpb.Struct) {
	if d.cfg.Journal == nil || len(events) == 0 {
		return
	}
	if err := d.cfg.Journal.Append(ctx, gameID, events); err != nil {
		d.logger.Warn("journaling live events",
			zap.Uint64("game_id", gameID),
			zap.Int("records", len(events)),
			zap.Error(err),
		)
	}
}

// Subscribe cancels any active subscription, subscribes to gameID and
// reconciles the initial snapshot.
//
// Postcondition: live deliveries from the new subscription are queued only
// after the initial snapshot has been reconciled; deliveries from earlier
// subscriptions are dropped.
func (d *Director) Subscribe(ctx context.Context, gameID uint64) (Mode, error) {
	d.mu.Lock()
	old := d.sub
	d.sub = nil
	d.gen++
	gen := d.gen
	d.ready = false
	d.pending = nil
	d.replay = nil
	d.journalCtx = context.WithoutCancel(ctx)
	spectating := d.spectating
	d.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	d.reset(gameID)

	initial, sub, err := d.cfg.Subscriber.Subscribe(ctx, gameID, d.deliver(gameID, gen))
	if err != nil {
		return ModeTeardown, fmt.Errorf("subscribing to game %d: %w", gameID, err)
	}
	d.mu.Lock()
	if d.gen != gen {
		d.mu.Unlock()
		sub.Cancel()
		return ModeTeardown, fmt.Errorf("subscription to game %d superseded", gameID)
	}
	d.sub = sub
	d.mu.Unlock()

	log := d.logger.With(zap.Uint64("game_id", gameID), zap.Int("initial_records", len(initial)))

	var mode Mode
	switch {
	case spectating:
		mode, err = d.spectate(ctx, gameID, initial)
	case len(initial) == 0:
		mode = ModeFresh
		err = d.start(ctx, gameID)
	default:
		mode = ModeReconnect
		d.reconnect(ctx, initial)
	}
	if mode == ModeTeardown {
		log.Info("session torn down", zap.Error(err))
		return mode, err
	}

	d.mu.Lock()
	if d.gen == gen {
		d.ready = true
		pending := d.pending
		d.pending = nil
		journalCtx := d.journalCtx
		d.mu.Unlock()
		d.seq.Append(stamp(pending, gen)...)
		d.record(journalCtx, gameID, pending)
	} else {
		d.mu.Unlock()
	}

	log.Info("subscribed", zap.Stringer("mode", mode))
	return mode, err
}

func (d *Director) start(ctx context.Context, gameID uint64) error {
	calls := action.Compiler{GameID: gameID}.StartGame()
	if err := d.cfg.Executor.Execute(ctx, calls); err != nil {
		d.failed(err, "start_game")
		return fmt.Errorf("starting game %d: %w", gameID, err)
	}
	return nil
}

func (d *Director) spectate(ctx context.Context, gameID uint64, initial []*structpb.Struct) (Mode, error) {
	if len(initial) == 0 {
		d.teardown()
		return ModeTeardown, nil
	}
	adv, err := d.cfg.Fetcher.FetchAdventurer(ctx, gameID)
	if err != nil || adv == nil {
		d.teardown()
		if err == nil || errors.Is(err, ledger.ErrNotFound) {
			return ModeTeardown, nil
		}
		return ModeTeardown, fmt.Errorf("fetching spectated adventurer: %w", err)
	}
	if adv.Dead() {
		d.mu.Lock()
		d.replay = gameEvents(initial)
		d.mu.Unlock()
		return ModeSpectateReplay, nil
	}
	d.reconnect(ctx, initial)
	return ModeSpectate, nil
}

// teardown cancels the subscription, clears the session and calls OnExit.
func (d *Director) teardown() {
	d.mu.Lock()
	sub := d.sub
	d.sub = nil
	d.gen++
	d.ready = false
	d.pending = nil
	d.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
	d.reset(0)
	if d.cfg.OnExit != nil {
		d.cfg.OnExit()
	}
}

// reset clears the queue and the session state for gameID, keeping the
// failure counter. It waits for an in-flight apply so no record of the
// previous session lands in the new state.
func (d *Director) reset(gameID uint64) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()
	d.seq.Replace(nil)
	d.mutate(func(s *State) {
		failed := s.ActionFailed
		*s = State{GameID: gameID, ActionFailed: failed}
	})
}

// Close cancels the active subscription.
func (d *Director) Close() {
	d.mu.Lock()
	sub := d.sub
	d.sub = nil
	d.gen++
	d.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

func (d *Director) failed(err error, what string) {
	d.mutate(func(s *State) { s.ActionFailed++ })
	d.logger.Warn("batch submission failed", zap.String("action", what), zap.Error(err))
}

// ExecuteAction compiles a into a call batch against the current state and
// submits it.
//
// Postcondition: returns ErrSpectating without submitting while spectating;
// a failed submission increments ActionFailed and is not retried.
func (d *Director) ExecuteAction(ctx context.Context, a action.Action) error {
	d.mu.Lock()
	if d.spectating {
		d.mu.Unlock()
		return ErrSpectating
	}
	gameID := d.state.GameID
	in := action.Input{Action: a}
	if adv := d.state.Adventurer; adv != nil {
		in.Current = adv.Equipment
		in.BeastHealth = adv.BeastHealth
	}
	if prior := d.state.AdventurerState; prior != nil {
		in.Prior = prior.Equipment
	}
	d.mu.Unlock()

	if gameID == 0 {
		return ErrNoGame
	}
	compiler := action.Compiler{GameID: gameID, RandomnessRequired: d.cfg.RandomnessRequired}
	calls := compiler.Compile(in)
	if len(calls) == 0 {
		return nil
	}
	if err := d.cfg.Executor.Execute(ctx, calls); err != nil {
		d.failed(err, string(a.Type()))
		return fmt.Errorf("executing %s: %w", a.Type(), err)
	}
	d.logger.Debug("action submitted", zap.String("action", string(a.Type())), zap.Int("calls", len(calls)))
	return nil
}

// StageEquip moves a bag item onto the local adventurer. The change is
// committed by the next action as an implicit equip, or by an Equip action.
func (d *Director) StageEquip(id catalog.ItemID) error {
	var err error
	d.mutate(func(s *State) { err = s.stageEquip(id) })
	return err
}
