// Package category derives the category set from the record store and keeps
// the selected filter consistent with it.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quotesync/quotesync/internal/quote"
	"github.com/quotesync/quotesync/internal/store"
)

// All is the filter value that matches every category.
const All = "all"

// Categories returns the distinct lowercase categories of quotes in first-seen
// order. It is recomputed on every call.
func Categories(quotes []quote.Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]string, 0)

	for _, q := range quotes {
		c := quote.NormalizeCategory(q.Category)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}

// RestoreFilter returns persisted if it is one of categories, else All. An
// unset filter is All even when some quote has an empty category.
func RestoreFilter(categories []string, persisted string) string {
	if persisted == "" || persisted == All {
		return All
	}
	for _, c := range categories {
		if c == persisted {
			return persisted
		}
	}
	return All
}

// Filter returns the quotes whose category matches selected, ignoring case.
// All matches every quote.
func Filter(quotes []quote.Quote, selected string) []quote.Quote {
	if selected == All {
		return quote.Clone(quotes)
	}

	want := quote.NormalizeCategory(selected)
	var out []quote.Quote
	for _, q := range quotes {
		if quote.NormalizeCategory(q.Category) == want {
			out = append(out, q)
		}
	}
	return out
}

// Index is the category view of a store.
type Index struct {
	store  *store.Store
	logger *slog.Logger

	mu   sync.RWMutex
	last []string
}

// NewIndex creates an Index over s.
func NewIndex(s *store.Store, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{store: s, logger: logger}
	idx.Refresh()
	return idx
}

// Refresh recomputes the categories from the store and returns them.
func (i *Index) Refresh() []string {
	cats := Categories(i.store.Quotes())

	i.mu.Lock()
	i.last = cats
	i.mu.Unlock()

	i.logger.Debug("categories refreshed", "count", len(cats))
	return append([]string(nil), cats...)
}

// Last returns the categories computed by the most recent Refresh.
func (i *Index) Last() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]string(nil), i.last...)
}

// Selected returns the persisted filter, falling back to All when it no longer
// names an existing category.
func (i *Index) Selected(ctx context.Context) (string, error) {
	persisted, err := i.store.SelectedFilter(ctx)
	if err != nil {
		return "", err
	}
	return RestoreFilter(Categories(i.store.Quotes()), persisted), nil
}

// Select persists a new filter. The value is lowercased and must be All or an
// existing category.
func (i *Index) Select(ctx context.Context, filter string) (string, error) {
	filter = quote.NormalizeCategory(filter)
	if filter == "" {
		return "", &quote.ValidationError{Field: "category"}
	}
	if RestoreFilter(Categories(i.store.Quotes()), filter) != filter {
		return "", fmt.Errorf("unknown category %q: %w", filter, quote.ErrValidation)
	}

	if err := i.store.SetSelectedFilter(ctx, filter); err != nil {
		return "", err
	}
	return filter, nil
}
