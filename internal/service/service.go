// Package service exposes the user-level operations on a quote collection:
// adding, importing, exporting, browsing by category and synchronizing.
//
// A Service owns one store.Store, its category.Index and the sync engine
// bound to them. The CLI and the daemon both go through a Service so every
// mutation persists and refreshes the categories the same way.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/quotesync/quotesync/internal/category"
	"github.com/quotesync/quotesync/internal/notify"
	"github.com/quotesync/quotesync/internal/quote"
	"github.com/quotesync/quotesync/internal/remote"
	"github.com/quotesync/quotesync/internal/store"
	qsync "github.com/quotesync/quotesync/internal/sync"
)

var (
	// ErrNoQuotes is returned when no quote matches the selected category.
	ErrNoQuotes = errors.New("no quotes available")

	// ErrNoRemote is recorded in the CycleResult of Sync when the service
	// was built without a remote adapter.
	ErrNoRemote = errors.New("sync is not configured")
)

// Config wires a Service.
type Config struct {
	// Store is required.
	Store *store.Store

	// Remote enables Sync. Optional.
	Remote remote.Adapter

	// Notifier receives import and sync notices (default: discard).
	Notifier notify.Notifier

	// Metrics for the sync engine. Optional.
	Metrics *qsync.Metrics

	// Intn picks a random index in [0, n) (default: math/rand/v2).
	Intn func(n int) int

	// Logger (default: slog.Default())
	Logger *slog.Logger
}

// Service implements the quote operations.
type Service struct {
	store    *store.Store
	index    *category.Index
	syncer   qsync.Syncer
	notifier notify.Notifier
	intn     func(n int) int
	logger   *slog.Logger
}

// New creates a Service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	intn := cfg.Intn
	if intn == nil {
		intn = rand.IntN
	}

	s := &Service{
		store:    cfg.Store,
		index:    category.NewIndex(cfg.Store, logger),
		notifier: notifier,
		intn:     intn,
		logger:   logger,
	}

	if cfg.Remote != nil {
		syncer, err := qsync.New(&qsync.Config{
			Store:    cfg.Store,
			Index:    s.index,
			Remote:   cfg.Remote,
			Notifier: notifier,
			Metrics:  cfg.Metrics,
			Logger:   logger.With("component", "sync"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create syncer: %w", err)
		}
		s.syncer = syncer
	}

	return s, nil
}

// Syncer returns the sync engine, or nil when no remote is configured.
func (s *Service) Syncer() qsync.Syncer {
	return s.syncer
}

// Quotes returns a snapshot of the whole collection.
func (s *Service) Quotes() []quote.Quote {
	return s.store.Quotes()
}

// AddQuote appends one quote. Duplicates are allowed.
func (s *Service) AddQuote(ctx context.Context, text, cat string) (quote.Quote, error) {
	q, err := quote.New(text, cat)
	if err != nil {
		return quote.Quote{}, err
	}
	if err := s.store.Append(ctx, q); err != nil {
		return quote.Quote{}, fmt.Errorf("failed to add quote: %w", err)
	}
	s.index.Refresh()
	s.logger.Debug("quote added", "category", q.Category)
	return q, nil
}

// ImportQuotes appends every quote in a JSON array payload as is and returns
// how many were added.
func (s *Service) ImportQuotes(ctx context.Context, payload []byte) (int, error) {
	quotes, err := quote.Decode(payload)
	if err != nil {
		return 0, err
	}
	if err := s.store.Append(ctx, quotes...); err != nil {
		return 0, fmt.Errorf("failed to import quotes: %w", err)
	}
	s.index.Refresh()
	s.notifier.Announce(notify.Info(notify.MsgImported))
	s.logger.Info("imported quotes", "count", len(quotes))
	return len(quotes), nil
}

// ImportFile reads path and imports its contents.
func (s *Service) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read import file: %w", err)
	}
	return s.ImportQuotes(ctx, data)
}

// Export returns the collection as a pretty-printed JSON array.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	return quote.EncodePretty(s.store.Quotes())
}

// ExportFile writes the collection to quotes.json in dir and returns the path.
func (s *Service) ExportFile(_ context.Context, dir string) (string, error) {
	return quote.WriteFile(dir, s.store.Quotes())
}

// Categories returns the distinct categories in first-seen order.
func (s *Service) Categories() []string {
	return s.index.Refresh()
}

// SelectedCategory returns the active filter, "all" when none applies.
func (s *Service) SelectedCategory(ctx context.Context) (string, error) {
	return s.index.Selected(ctx)
}

// SelectCategory persists a new filter.
func (s *Service) SelectCategory(ctx context.Context, cat string) (string, error) {
	return s.index.Select(ctx, cat)
}

// Filtered returns the quotes in cat ("all" for every quote).
func (s *Service) Filtered(_ context.Context, cat string) ([]quote.Quote, error) {
	return category.Filter(s.store.Quotes(), cat), nil
}

// ShowRandom picks a random quote from the selected category and records it
// as the last viewed quote of the session.
func (s *Service) ShowRandom(ctx context.Context) (quote.Quote, error) {
	selected, err := s.index.Selected(ctx)
	if err != nil {
		return quote.Quote{}, err
	}

	candidates := category.Filter(s.store.Quotes(), selected)
	if len(candidates) == 0 {
		return quote.Quote{}, fmt.Errorf("category %q: %w", selected, ErrNoQuotes)
	}

	q := candidates[s.intn(len(candidates))]
	if err := s.store.SetLastViewed(ctx, q); err != nil {
		return quote.Quote{}, err
	}
	return q, nil
}

// Current returns the last viewed quote of the session, or a fresh random one
// when the session has none.
func (s *Service) Current(ctx context.Context) (quote.Quote, error) {
	q, ok, err := s.store.LastViewed(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	if ok {
		return q, nil
	}
	return s.ShowRandom(ctx)
}

// Sync runs one sync cycle.
func (s *Service) Sync(ctx context.Context) qsync.CycleResult {
	if s.syncer == nil {
		return qsync.CycleResult{Outcome: qsync.OutcomeFetchFailed, Err: ErrNoRemote}
	}
	return s.syncer.RunCycle(ctx)
}
