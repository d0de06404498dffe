package director

import (
	"context"
	"time"

	"github.com/cory-johannsen/survivor/internal/game/event"
)

// Pacing holds the post-apply delay of each paced event kind during live play.
type Pacing struct {
	LevelUp     time.Duration
	Discovery   time.Duration
	Obstacle    time.Duration
	Attack      time.Duration
	BeastAttack time.Duration
	Flee        time.Duration
}

// DefaultPacing returns the live-play delays.
func DefaultPacing() Pacing {
	return Pacing{
		LevelUp:     time.Second,
		Discovery:   time.Second,
		Obstacle:    time.Second,
		Attack:      2 * time.Second,
		BeastAttack: 2 * time.Second,
		Flee:        time.Second,
	}
}

// Delay returns the pause after applying an event of kind k. Unpaced kinds return 0.
func (p Pacing) Delay(k event.Kind) time.Duration {
	switch k {
	case event.KindLevelUp:
		return p.LevelUp
	case event.KindDiscovery:
		return p.Discovery
	case event.KindObstacle:
		return p.Obstacle
	case event.KindAttack:
		return p.Attack
	case event.KindBeastAttack:
		return p.BeastAttack
	case event.KindFlee:
		return p.Flee
	default:
		return 0
	}
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
