// Package main provides the director host: it connects to the ledger gateway,
// reconciles one game's event stream and drives it from an interactive console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/cache"
	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/console"
	"github.com/cory-johannsen/survivor/internal/director"
	"github.com/cory-johannsen/survivor/internal/game/command"
	"github.com/cory-johannsen/survivor/internal/ledger"
	"github.com/cory-johannsen/survivor/internal/observability"
	"github.com/cory-johannsen/survivor/internal/server"
	"github.com/cory-johannsen/survivor/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults and environment)")
	gameID := flag.Uint64("game", 0, "game id to play or observe")
	spectate := flag.Bool("spectate", false, "observe the game without submitting actions")
	replay := flag.Bool("replay", false, "play back the journaled events of the game offline")
	color := flag.Bool("color", true, "use ANSI colors on the console")
	flag.Parse()

	if *gameID == 0 {
		log.Fatalf("-game is required")
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	client, conn, err := ledger.Dial(cfg.Ledger.Addr(), logger)
	if err != nil {
		logger.Fatal("dialing ledger gateway", zap.String("addr", cfg.Ledger.Addr()), zap.Error(err))
	}
	defer conn.Close()
	client.WithCallTimeout(cfg.Ledger.CallTimeout)

	var fetcher ledger.AdventurerFetcher = client
	var adventurers *cache.AdventurerCache
	if cfg.Cache.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Cache)
		if err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
		defer rdb.Close()
		adventurers = cache.NewAdventurerCache(rdb, client, cfg.Cache.TTL, logger)
		fetcher = adventurers
	}

	var journal *postgres.EventJournal
	if cfg.Director.Journal || *replay {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		journal = postgres.NewEventJournal(pool, logger)
	}

	lc := server.NewLifecycle(logger)
	exited := make(chan struct{})
	var exitOnce sync.Once

	dcfg := director.Config{
		Subscriber:         client,
		Fetcher:            fetcher,
		Executor:           client,
		Logger:             logger,
		Pacing:             director.Pacing(cfg.Director.Pacing),
		RandomnessRequired: cfg.Director.VRFEnabled,
		OnExit: func() {
			exitOnce.Do(func() { close(exited) })
		},
	}
	if journal != nil && cfg.Director.Journal && !*replay {
		dcfg.Journal = journal
	}
	d := director.New(dcfg)
	d.SetSpectating(*spectate || *replay)

	con := console.New(console.Config{
		Game:     d,
		Registry: command.DefaultRegistry(),
		In:       os.Stdin,
		Out:      os.Stdout,
		Logger:   logger,
		Color:    *color,
		AfterAction: func(ctx context.Context) {
			if adventurers == nil {
				return
			}
			if err := adventurers.Invalidate(ctx, *gameID); err != nil {
				logger.Warn("invalidating adventurer cache", zap.Error(err))
			}
		},
	})
	d.OnChange(con.Watch)

	lc.Add("director", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
		StopFn: d.Close,
	})
	lc.Add("console", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			glog := observability.ForGame(logger, *gameID, "replay")
			if *replay {
				records, err := journal.Load(ctx, *gameID)
				if err != nil {
					return fmt.Errorf("loading journal: %w", err)
				}
				glog.Info("replaying journal", zap.Int("records", len(records)))
				d.SetEventQueue(records)
				return con.Run(ctx)
			}

			mode, err := d.Subscribe(ctx, *gameID)
			glog = observability.ForGame(logger, *gameID, mode.String())
			if err != nil {
				return err
			}
			if mode == director.ModeTeardown {
				glog.Info("nothing to observe")
				return nil
			}
			if mode == director.ModeSpectateReplay {
				fmt.Fprintln(os.Stdout, "This adventurer has fallen. Type replay to watch their final moments.")
			}
			glog.Info("session ready", zap.Duration("startup", time.Since(start)))

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				select {
				case <-exited:
					cancel()
				case <-runCtx.Done():
				}
			}()
			if err := con.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	})

	if err := lc.Run(ctx); err != nil {
		logger.Error("director exited with error", zap.Error(err))
		os.Exit(1)
	}
}
