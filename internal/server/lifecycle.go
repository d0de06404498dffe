// Package server provides process lifecycle management for the director
// host: ordered startup, reverse-order shutdown and signal handling.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component.
type Service interface {
	// Start runs the service until ctx is cancelled or the service finishes.
	// Returning nil before cancellation means the service completed normally.
	Start(ctx context.Context) error
	// Stop releases the service's resources.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
// A nil StopFn is allowed.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

type exit struct {
	name string
	err  error
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger: logger,
	}
}

// Add registers a named service for lifecycle management.
// Services are started in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until SIGINT or SIGTERM arrives, ctx is
// cancelled, or any service returns. Services are then stopped in reverse
// order and Run waits for every Start call to return.
//
// Postcondition: Returns the first service failure, or nil on a clean shutdown.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan exit, len(services))
	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", ns.name))
			err := ns.service.Start(ctx)
			exits <- exit{name: ns.name, err: err}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var runErr error
	select {
	case ex := <-exits:
		switch {
		case ex.err == nil:
			l.logger.Info("service finished, shutting down", zap.String("service", ex.name))
		case errors.Is(ex.err, context.Canceled):
			l.logger.Info("service cancelled, shutting down", zap.String("service", ex.name))
		default:
			l.logger.Error("service failed, shutting down",
				zap.String("service", ex.name),
				zap.Error(ex.err),
				zap.Duration("uptime", time.Since(start)),
			)
			runErr = fmt.Errorf("service %s: %w", ex.name, ex.err)
		}
	case <-ctx.Done():
		l.logger.Info("shutdown requested", zap.Error(context.Cause(ctx)))
	}

	cancel()
	l.shutdown(services)
	wg.Wait()

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
