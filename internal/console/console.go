// Package console provides the interactive line-oriented front end of the
// director host: it dispatches commands to the director and renders state
// changes as they are reconciled.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/survivor/internal/director"
	"github.com/cory-johannsen/survivor/internal/game/action"
	"github.com/cory-johannsen/survivor/internal/game/catalog"
	"github.com/cory-johannsen/survivor/internal/game/command"
	"github.com/cory-johannsen/survivor/internal/game/event"
)

// Game is the slice of the director the console drives.
type Game interface {
	State() director.State
	ExecuteAction(ctx context.Context, a action.Action) error
	StageEquip(id catalog.ItemID) error
	ReplayEvents() []*structpb.Struct
	SetEventQueue(records []*structpb.Struct)
}

// Config wires a Console.
type Config struct {
	Game     Game
	Registry *command.Registry
	In       io.Reader
	Out      io.Writer
	Logger   *zap.Logger
	// Color enables ANSI styling.
	Color bool
	// AfterAction, when set, runs after every submitted action.
	AfterAction func(ctx context.Context)
}

// Console reads command lines and renders reconciled state.
type Console struct {
	cfg Config
	p   palette

	mu         sync.Mutex
	lastLog    int
	lastBattle int
}

// New creates a Console.
//
// Precondition: cfg.Game, cfg.Registry, cfg.In, cfg.Out and cfg.Logger must be non-nil.
func New(cfg Config) *Console {
	return &Console{cfg: cfg, p: palette(cfg.Color)}
}

// handlerFunc handles a command locally. It returns quit=true to end the session.
type handlerFunc func(c *Console, ctx context.Context, args []string) (quit bool, err error)

// localHandlers dispatches every command that does not compile into an action.
var localHandlers = map[string]handlerFunc{
	command.HandlerWear:   handleWear,
	command.HandlerStatus: handleStatus,
	command.HandlerReplay: handleReplay,
	command.HandlerHelp:   handleHelp,
	command.HandlerQuit:   handleQuit,
}

// LocalHandlers reports the handler ids the console dispatches locally.
func LocalHandlers() []string {
	out := make([]string, 0, len(localHandlers))
	for h := range localHandlers {
		out = append(out, h)
	}
	return out
}

func (c *Console) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.cfg.Out, s)
}

func (c *Console) writeLine(s string) {
	if s == "" {
		return
	}
	c.write(s + "\n")
}

func (c *Console) writeError(err error) {
	c.writeLine(c.p.Colorize(BrightRed, err.Error()))
}

func (c *Console) prompt() {
	c.write(c.p.Colorize(Bold, "> "))
}

// Watch renders exploration and battle entries that appeared since the last
// call. Register it with Director.OnChange.
func (c *Console) Watch(s director.State) {
	var lines []string

	c.mu.Lock()
	if len(s.ExploreLog) < c.lastLog {
		c.lastLog = 0
	}
	for _, ev := range s.ExploreLog[c.lastLog:] {
		lines = append(lines, c.p.renderEvent(ev))
	}
	c.lastLog = len(s.ExploreLog)

	if s.BattleSeq < c.lastBattle {
		c.lastBattle = 0
	}
	if s.BattleSeq != c.lastBattle && s.BattleEvent != nil && !event.IsExploreLog(s.BattleEvent.Kind()) {
		lines = append(lines, c.p.renderEvent(s.BattleEvent))
	}
	c.lastBattle = s.BattleSeq
	c.mu.Unlock()

	for _, l := range lines {
		c.writeLine(l)
	}
}

// Run reads and dispatches lines until quit, end of input, or ctx cancellation.
//
// Postcondition: Returns nil on quit or end of input, ctx.Err() on cancellation.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.cfg.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.cfg.Logger.Warn("reading console input", zap.Error(err))
		}
	}()

	c.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.Dispatch(ctx, line)
			if err != nil {
				c.writeError(err)
			}
			if quit {
				return nil
			}
			c.prompt()
		}
	}
}

// Dispatch executes one command line.
//
// Postcondition: Returns quit=true only for the quit command; errors are
// user-facing and never fatal to the session.
func (c *Console) Dispatch(ctx context.Context, line string) (bool, error) {
	if strings.TrimSpace(command.Parse(line).Command) == "" {
		return false, nil
	}
	cmd, args, ok := c.cfg.Registry.Lookup(line)
	if !ok {
		return false, fmt.Errorf("unknown command %q, type help", command.Parse(line).Command)
	}

	if command.IsAction(cmd.Handler) {
		a, err := command.ToAction(cmd, args)
		if err != nil {
			return false, err
		}
		return false, c.submit(ctx, a)
	}

	h, ok := localHandlers[cmd.Handler]
	if !ok {
		c.cfg.Logger.Error("command has no handler", zap.String("command", cmd.Name), zap.String("handler", cmd.Handler))
		return false, fmt.Errorf("%s is not available", cmd.Name)
	}
	return h(c, ctx, args)
}

func (c *Console) submit(ctx context.Context, a action.Action) error {
	err := c.cfg.Game.ExecuteAction(ctx, a)
	if c.cfg.AfterAction != nil {
		c.cfg.AfterAction(ctx)
	}
	switch {
	case errors.Is(err, director.ErrSpectating):
		return errors.New("you are spectating; actions are disabled")
	case errors.Is(err, director.ErrNoGame):
		return errors.New("no game is active")
	case err != nil:
		return fmt.Errorf("%s failed: %w", a.Type(), err)
	}
	return nil
}

func handleWear(c *Console, _ context.Context, args []string) (bool, error) {
	if len(args) != 1 {
		return false, errors.New("usage: wear <item_id>")
	}
	id, err := command.ParseItemID(args[0])
	if err != nil {
		return false, err
	}
	switch err := c.cfg.Game.StageEquip(id); {
	case errors.Is(err, director.ErrNotInBag):
		return false, fmt.Errorf("%s is not in your bag", itemName(id))
	case errors.Is(err, director.ErrNoAdventurer):
		return false, errors.New("no adventurer yet")
	case err != nil:
		return false, err
	}
	c.writeLine(fmt.Sprintf("Staged %s; it is equipped with your next action.", itemName(id)))
	return false, nil
}

func handleStatus(c *Console, _ context.Context, _ []string) (bool, error) {
	c.write(c.p.renderStatus(c.cfg.Game.State()))
	return false, nil
}

func handleReplay(c *Console, _ context.Context, _ []string) (bool, error) {
	records := c.cfg.Game.ReplayEvents()
	if len(records) == 0 {
		return false, errors.New("nothing to replay")
	}
	c.cfg.Game.SetEventQueue(records)
	c.writeLine(fmt.Sprintf("Replaying %d events.", len(records)))
	return false, nil
}

func handleHelp(c *Console, _ context.Context, _ []string) (bool, error) {
	c.write(c.cfg.Registry.Help())
	return false, nil
}

func handleQuit(c *Console, _ context.Context, _ []string) (bool, error) {
	c.writeLine("Farewell.")
	return true, nil
}
