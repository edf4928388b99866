package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/quotesync/quotesync/internal/category"
	"github.com/quotesync/quotesync/internal/merge"
	"github.com/quotesync/quotesync/internal/notify"
	"github.com/quotesync/quotesync/internal/remote"
	"github.com/quotesync/quotesync/internal/store"
)

// Config wires a syncer to its collaborators.
type Config struct {
	Store    *store.Store
	Index    *category.Index
	Remote   remote.Adapter
	Notifier notify.Notifier

	// Metrics is optional.
	Metrics *Metrics

	// Logger for sync activity (default: slog.Default()).
	Logger *slog.Logger
}

// syncer implements the Syncer interface.
type syncer struct {
	store    *store.Store
	index    *category.Index
	remote   remote.Adapter
	notifier notify.Notifier
	metrics  *Metrics
	logger   *slog.Logger

	inFlight atomic.Bool
	state    atomic.Int32
	last     atomic.Pointer[CycleResult]
}

// New creates a Syncer.
//
// Store and Remote are required. A nil Index is created over Store, a nil
// Notifier discards notices.
func New(cfg *Config) (Syncer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Remote == nil {
		return nil, fmt.Errorf("remote adapter cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	index := cfg.Index
	if index == nil {
		index = category.NewIndex(cfg.Store, logger)
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}

	return &syncer{
		store:    cfg.Store,
		index:    index,
		remote:   cfg.Remote,
		notifier: notifier,
		metrics:  cfg.Metrics,
		logger:   logger,
	}, nil
}

// State implements Syncer.State.
func (s *syncer) State() State {
	return State(s.state.Load())
}

// LastResult implements Syncer.LastResult.
func (s *syncer) LastResult() (CycleResult, bool) {
	r := s.last.Load()
	if r == nil {
		return CycleResult{}, false
	}
	return *r, true
}

// RunCycle implements Syncer.RunCycle.
func (s *syncer) RunCycle(ctx context.Context) CycleResult {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug("sync cycle already in flight, coalescing", "state", s.State().String())
		result := CycleResult{Outcome: OutcomeCoalesced, Started: time.Now()}
		s.metrics.observe(result)
		return result
	}
	defer s.inFlight.Store(false)

	result := CycleResult{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	log := s.logger.With("cycle", result.ID)

	s.run(ctx, log, &result)

	result.Duration = time.Since(result.Started)
	s.setState(StateIdle)
	s.last.Store(&result)
	s.metrics.observe(result)

	log.Info("sync cycle finished",
		"outcome", string(result.Outcome),
		"fetched", result.Fetched,
		"added", result.Added,
		"duration", result.Duration.Round(time.Millisecond))
	return result
}

func (s *syncer) run(ctx context.Context, log *slog.Logger, result *CycleResult) {
	s.setState(StateFetching)
	serverQuotes, err := s.remote.FetchRemote(ctx)
	if err != nil {
		s.setState(StateErrored)
		log.Warn("failed to fetch server quotes", "error", err)
		s.notifier.Announce(notify.Failure(notify.MsgFetchFailed))
		result.Outcome = OutcomeFetchFailed
		result.Err = err
		return
	}
	result.Fetched = len(serverQuotes)

	s.setState(StateMerging)
	decision := merge.Merge(s.store.Quotes(), serverQuotes)

	if decision.Changed {
		s.setState(StatePersisting)
		if err := s.store.Append(ctx, decision.ToAppend...); err != nil {
			s.setState(StateErrored)
			log.Error("failed to persist merged quotes", "error", err)
			s.notifier.Announce(notify.Failure(notify.MsgPersistFailed))
			result.Outcome = OutcomePersistFailed
			result.Err = err
			return
		}
		result.Added = len(decision.ToAppend)
		s.index.Refresh()

		s.setState(StateNotifying)
		s.notifier.Announce(notify.Info(notify.MsgQuotesUpdated))
	}

	s.setState(StatePushing)
	local := s.store.Quotes()
	if err := s.remote.PushLocal(ctx, local); err != nil {
		s.setState(StateErrored)
		log.Warn("failed to push local quotes", "error", err)
		s.notifier.Announce(notify.Failure(notify.MsgPushFailed))
		result.Outcome = OutcomePushFailed
		result.Err = err
		return
	}
	result.Pushed = len(local)
	result.Outcome = OutcomeCompleted
}

func (s *syncer) setState(st State) {
	s.state.Store(int32(st))
}
