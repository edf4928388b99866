package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	qsync "github.com/quotesync/quotesync/internal/sync"
)

// DefaultInterval is the period between background sync cycles.
const DefaultInterval = 30 * time.Second

// Config holds configuration for the daemon.
type Config struct {
	// Interval between periodic sync cycles.
	Interval time.Duration

	// RunOnStart runs one cycle as soon as Start is called.
	RunOnStart bool

	// Inbox, when set, is started and stopped together with the daemon.
	Inbox *Inbox

	// OnCycle is called after every periodic or manual cycle.
	OnCycle func(qsync.CycleResult)

	// Logger for daemon activity
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:   DefaultInterval,
		RunOnStart: true,
		Logger:     slog.Default().With("component", "daemon"),
	}
}

// Daemon drives periodic sync cycles.
type Daemon struct {
	syncer qsync.Syncer
	config *Config

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a daemon with default configuration.
func New(syncer qsync.Syncer) (*Daemon, error) {
	return NewWithConfig(syncer, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(syncer qsync.Syncer, config *Config) (*Daemon, error) {
	if syncer == nil {
		return nil, fmt.Errorf("syncer cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", config.Interval)
	}
	if config.Logger == nil {
		config.Logger = slog.Default().With("component", "daemon")
	}

	return &Daemon{
		syncer: syncer,
		config: config,
	}, nil
}

// Start runs the daemon until ctx is cancelled or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.running = true
	d.cancel = cancel
	d.mu.Unlock()

	d.config.Logger.Info("starting daemon", "interval", d.config.Interval)

	if inbox := d.config.Inbox; inbox != nil {
		if err := inbox.Start(runCtx); err != nil {
			cancel()
			d.mu.Lock()
			d.running = false
			d.mu.Unlock()
			return fmt.Errorf("failed to start inbox: %w", err)
		}
		d.config.Logger.Info("watching inbox", "dir", inbox.Dir())
	}

	d.wg.Add(1)
	go d.tick(runCtx)

	<-runCtx.Done()
	d.config.Logger.Info("shutdown signal received")
	return d.Stop()
}

// Stop cancels the daemon and waits for in-flight work to finish.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	cancel := d.cancel
	d.mu.Unlock()

	cancel()
	d.wg.Wait()

	if inbox := d.config.Inbox; inbox != nil {
		if err := inbox.Stop(); err != nil {
			d.config.Logger.Warn("error closing inbox", "error", err)
		}
	}

	d.config.Logger.Info("daemon stopped")
	return nil
}

// IsRunning reports whether Start is active.
func (d *Daemon) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Trigger runs a sync cycle on the caller's goroutine.
func (d *Daemon) Trigger(ctx context.Context) qsync.CycleResult {
	result := d.syncer.RunCycle(ctx)
	d.report(result)
	return result
}

// tick runs the periodic sync loop.
func (d *Daemon) tick(ctx context.Context) {
	defer d.wg.Done()

	if d.config.RunOnStart {
		d.report(d.syncer.RunCycle(ctx))
	}

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			d.report(d.syncer.RunCycle(ctx))
		}
	}
}

func (d *Daemon) report(result qsync.CycleResult) {
	if result.Err != nil {
		d.config.Logger.Warn("sync cycle failed", "outcome", string(result.Outcome), "error", result.Err)
	}
	if d.config.OnCycle != nil {
		d.config.OnCycle(result)
	}
}
