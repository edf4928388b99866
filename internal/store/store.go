// Package store provides the record store: the single writable owner of the
// quote collection.
//
// The store keeps quotes in insertion order and mirrors every mutation to a
// durable kv.Store. It also owns the two small pieces of browsing state that
// survive outside the collection: the selected category filter (durable) and
// the last viewed quote (session scoped).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quotesync/quotesync/internal/kv"
	"github.com/quotesync/quotesync/internal/quote"
)

// Storage keys.
const (
	KeyQuotes         = "quotes"
	KeySelectedFilter = "selectedCategory"
	KeyLastViewed     = "lastViewedQuote"
)

// Store is an ordered, persisted quote collection. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	quotes []quote.Quote

	durable kv.Store
	session kv.Store
	logger  *slog.Logger
}

// Load builds a Store from the durable kv.
//
// When nothing is persisted under KeyQuotes, or the persisted value cannot be
// decoded, the store starts from quote.Seed(). Both cases are treated the same
// and are not errors. A failing kv read is returned.
func Load(ctx context.Context, durable, session kv.Store, logger *slog.Logger) (*Store, error) {
	if durable == nil {
		return nil, fmt.Errorf("durable store cannot be nil")
	}
	if session == nil {
		session = kv.NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		durable: durable,
		session: session,
		logger:  logger,
	}

	raw, ok, err := durable.Get(ctx, KeyQuotes)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}

	if !ok {
		logger.Debug("no persisted quotes, using seed set")
		s.quotes = quote.Seed()
		return s, nil
	}

	quotes, err := quote.Decode([]byte(raw))
	if err != nil {
		logger.Debug("persisted quotes unreadable, using seed set", "error", err)
		s.quotes = quote.Seed()
		return s, nil
	}

	s.quotes = quotes
	logger.Debug("loaded quotes", "count", len(quotes))
	return s, nil
}

// Quotes returns a snapshot of the collection in insertion order.
func (s *Store) Quotes() []quote.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quote.Clone(s.quotes)
}

// Len returns the number of quotes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}

// Append adds quotes to the tail, preserving their order, and persists the
// collection. Readers never observe a partial append. If persisting fails the
// append is undone and the error returned, so the collection and the durable
// copy stay identical.
func (s *Store) Append(ctx context.Context, quotes ...quote.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := len(s.quotes)
	s.quotes = append(s.quotes, quotes...)

	if err := s.persistLocked(ctx); err != nil {
		s.quotes = s.quotes[:prev:prev]
		return err
	}

	s.logger.Debug("appended quotes", "added", len(quotes), "total", len(s.quotes))
	return nil
}

// Persist writes the full collection to the durable store.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := quote.Encode(s.quotes)
	if err != nil {
		return err
	}
	if err := s.durable.Set(ctx, KeyQuotes, string(data)); err != nil {
		return fmt.Errorf("failed to persist quotes: %w", err)
	}
	return nil
}

// SelectedFilter returns the persisted category filter, or "" if none was saved.
func (s *Store) SelectedFilter(ctx context.Context) (string, error) {
	v, _, err := s.durable.Get(ctx, KeySelectedFilter)
	if err != nil {
		return "", fmt.Errorf("failed to read selected filter: %w", err)
	}
	return v, nil
}

// SetSelectedFilter persists the category filter.
func (s *Store) SetSelectedFilter(ctx context.Context, filter string) error {
	if err := s.durable.Set(ctx, KeySelectedFilter, filter); err != nil {
		return fmt.Errorf("failed to save selected filter: %w", err)
	}
	return nil
}

// LastViewed returns the quote last shown in this session. ok is false when
// the session has none or the stored value cannot be decoded.
func (s *Store) LastViewed(ctx context.Context) (quote.Quote, bool, error) {
	raw, ok, err := s.session.Get(ctx, KeyLastViewed)
	if err != nil {
		return quote.Quote{}, false, fmt.Errorf("failed to read last viewed quote: %w", err)
	}
	if !ok {
		return quote.Quote{}, false, nil
	}

	var q quote.Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		s.logger.Debug("ignoring unreadable last viewed quote", "error", err)
		return quote.Quote{}, false, nil
	}
	return q, true, nil
}

// SetLastViewed records q as the quote last shown in this session.
func (s *Store) SetLastViewed(ctx context.Context, q quote.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal last viewed quote: %w", err)
	}
	if err := s.session.Set(ctx, KeyLastViewed, string(data)); err != nil {
		return fmt.Errorf("failed to save last viewed quote: %w", err)
	}
	return nil
}
