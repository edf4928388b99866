package category

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/quotesync/quotesync/internal/kv"
	"github.com/quotesync/quotesync/internal/quote"
	"github.com/quotesync/quotesync/internal/store"
)

func TestCategories(t *testing.T) {
	quotes := []quote.Quote{
		{Text: "a", Category: "life"},
		{Text: "b", Category: "Life"},
		{Text: "c", Category: "motivation"},
	}

	got := Categories(quotes)
	want := []string{"life", "motivation"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}

	if got := Categories(nil); len(got) != 0 {
		t.Errorf("Categories(nil) = %v, want empty", got)
	}
}

func TestRestoreFilter(t *testing.T) {
	cats := []string{"life", "motivation", ""}

	tests := []struct {
		persisted string
		want      string
	}{
		{"all", "all"},
		{"life", "life"},
		{"extinct-category", "all"},
		{"", "all"},
		{"Life", "all"},
	}

	for _, tt := range tests {
		t.Run(tt.persisted, func(t *testing.T) {
			if got := RestoreFilter(cats, tt.persisted); got != tt.want {
				t.Errorf("RestoreFilter(%q) = %q, want %q", tt.persisted, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	quotes := []quote.Quote{
		{Text: "a", Category: "life"},
		{Text: "b", Category: "Life"},
		{Text: "c", Category: "motivation"},
	}

	if got := Filter(quotes, All); len(got) != 3 {
		t.Errorf("Filter(all) len = %d, want 3", len(got))
	}
	if got := Filter(quotes, "LIFE"); len(got) != 2 {
		t.Errorf("Filter(LIFE) len = %d, want 2", len(got))
	}
	if got := Filter(quotes, "unknown"); len(got) != 0 {
		t.Errorf("Filter(unknown) len = %d, want 0", len(got))
	}
}

func newIndex(t *testing.T) (*Index, *store.Store) {
	t.Helper()

	s, err := store.Load(context.Background(), kv.NewMemory(), kv.NewMemory(), nil)
	if err != nil {
		t.Fatalf("store.Load() failed: %v", err)
	}
	return NewIndex(s, nil), s
}

func TestIndex_RefreshTracksStore(t *testing.T) {
	idx, s := newIndex(t)

	if got := idx.Last(); len(got) != 3 {
		t.Fatalf("seed categories = %v, want 3", got)
	}

	if err := s.Append(context.Background(), quote.Quote{Text: "Test quote", Category: "wisdom"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	got := idx.Refresh()
	if got[len(got)-1] != "wisdom" {
		t.Errorf("Refresh() = %v, want wisdom last", got)
	}
}

func TestIndex_SelectAndRestore(t *testing.T) {
	ctx := context.Background()
	idx, s := newIndex(t)

	if got, _ := idx.Selected(ctx); got != All {
		t.Errorf("Selected() with nothing saved = %q, want all", got)
	}

	if got, err := idx.Select(ctx, "Motivation"); err != nil || got != "motivation" {
		t.Fatalf("Select() = %q, %v", got, err)
	}
	if got, _ := idx.Selected(ctx); got != "motivation" {
		t.Errorf("Selected() = %q, want motivation", got)
	}

	if _, err := idx.Select(ctx, "nope"); !errors.Is(err, quote.ErrValidation) {
		t.Errorf("Select(nope) error = %v, want validation error", err)
	}

	// A filter persisted for a category that no longer exists falls back to all.
	if err := s.SetSelectedFilter(ctx, "extinct-category"); err != nil {
		t.Fatalf("SetSelectedFilter() failed: %v", err)
	}
	if got, _ := idx.Selected(ctx); got != All {
		t.Errorf("Selected() = %q, want all", got)
	}
}
