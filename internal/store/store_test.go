package store

import (
	"context"
	"errors"
	"testing"

	"github.com/quotesync/quotesync/internal/kv"
	"github.com/quotesync/quotesync/internal/quote"
)

// failingKV wraps a Memory store and fails writes when failSet is true.
type failingKV struct {
	*kv.Memory
	failSet bool
	failGet bool
}

var errStorage = errors.New("storage unavailable")

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStorage
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStorage
	}
	return f.Memory.Set(ctx, key, value)
}

func loadStore(t *testing.T, durable kv.Store) *Store {
	t.Helper()

	s, err := Load(context.Background(), durable, kv.NewMemory(), nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}

func persisted(t *testing.T, durable kv.Store) []quote.Quote {
	t.Helper()

	raw, ok, err := durable.Get(context.Background(), KeyQuotes)
	if err != nil || !ok {
		t.Fatalf("nothing persisted: ok %v, err %v", ok, err)
	}
	quotes, err := quote.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("persisted value unreadable: %v", err)
	}
	return quotes
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		stored  *string
		wantLen int
	}{
		{name: "nothing persisted", stored: nil, wantLen: 3},
		{name: "malformed value", stored: ptr(`[{"text":`), wantLen: 3},
		{name: "not an array", stored: ptr(`{"text":"A"}`), wantLen: 3},
		{name: "persisted quotes", stored: ptr(`[{"text":"A","category":"life"}]`), wantLen: 1},
		{name: "persisted empty collection", stored: ptr(`[]`), wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			durable := kv.NewMemory()
			if tt.stored != nil {
				_ = durable.Set(context.Background(), KeyQuotes, *tt.stored)
			}

			s := loadStore(t, durable)
			if s.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(context.Background(), nil, nil, nil); err == nil {
		t.Error("Load() with nil durable store should fail")
	}

	durable := &failingKV{Memory: kv.NewMemory(), failGet: true}
	if _, err := Load(context.Background(), durable, nil, nil); !errors.Is(err, errStorage) {
		t.Errorf("Load() error = %v, want %v", err, errStorage)
	}
}

func TestAppend_PreservesOrderAndPersists(t *testing.T) {
	durable := kv.NewMemory()
	s := loadStore(t, durable)

	added := []quote.Quote{
		{Text: "X", Category: "life"},
		{Text: "Y", Category: "server-sync"},
	}
	if err := s.Append(context.Background(), added...); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	got := s.Quotes()
	if len(got) != 5 {
		t.Fatalf("Len = %d, want 5", len(got))
	}
	if got[3] != added[0] || got[4] != added[1] {
		t.Errorf("tail = %+v, want %+v", got[3:], added)
	}
	if got[0] != quote.Seed()[0] {
		t.Errorf("existing quotes were reordered: %+v", got[0])
	}

	if n := len(persisted(t, durable)); n != 5 {
		t.Errorf("persisted %d quotes, want 5", n)
	}
}

func TestAppend_AllowsDuplicates(t *testing.T) {
	s := loadStore(t, kv.NewMemory())
	dup := quote.Seed()[0]

	if err := s.Append(context.Background(), dup); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

func TestAppend_RollsBackOnPersistFailure(t *testing.T) {
	durable := &failingKV{Memory: kv.NewMemory()}
	s := loadStore(t, durable)
	durable.failSet = true

	err := s.Append(context.Background(), quote.Quote{Text: "lost", Category: "x"})
	if !errors.Is(err, errStorage) {
		t.Fatalf("Append() error = %v, want %v", err, errStorage)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d after failed append, want 3", s.Len())
	}

	// The store stays usable once storage recovers.
	durable.failSet = false
	if err := s.Append(context.Background(), quote.Quote{Text: "kept", Category: "x"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	got := s.Quotes()
	if len(got) != 4 || got[3].Text != "kept" {
		t.Errorf("Quotes() = %+v", got)
	}
}

func TestQuotes_ReturnsSnapshot(t *testing.T) {
	s := loadStore(t, kv.NewMemory())

	snap := s.Quotes()
	snap[0].Text = "changed"

	if s.Quotes()[0].Text == "changed" {
		t.Error("Quotes() must return a copy")
	}
}

func TestSelectedFilter(t *testing.T) {
	ctx := context.Background()
	durable := kv.NewMemory()
	s := loadStore(t, durable)

	if got, err := s.SelectedFilter(ctx); err != nil || got != "" {
		t.Errorf("SelectedFilter() = %q, %v; want empty", got, err)
	}
	if err := s.SetSelectedFilter(ctx, "life"); err != nil {
		t.Fatalf("SetSelectedFilter() failed: %v", err)
	}

	// The filter survives a restart of the store.
	reloaded := loadStore(t, durable)
	if got, _ := reloaded.SelectedFilter(ctx); got != "life" {
		t.Errorf("SelectedFilter() after reload = %q, want life", got)
	}
}

func TestLastViewed(t *testing.T) {
	ctx := context.Background()
	session := kv.NewMemory()
	s, err := Load(ctx, kv.NewMemory(), session, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if _, ok, _ := s.LastViewed(ctx); ok {
		t.Error("new session should have no last viewed quote")
	}

	want := quote.Quote{Text: "A", Category: "life"}
	if err := s.SetLastViewed(ctx, want); err != nil {
		t.Fatalf("SetLastViewed() failed: %v", err)
	}
	if got, ok, _ := s.LastViewed(ctx); !ok || got != want {
		t.Errorf("LastViewed() = %+v, %v", got, ok)
	}

	_ = session.Set(ctx, KeyLastViewed, "{broken")
	if _, ok, err := s.LastViewed(ctx); ok || err != nil {
		t.Errorf("unreadable last viewed = ok %v, err %v; want absent", ok, err)
	}

	_ = session.Clear()
	if _, ok, _ := s.LastViewed(ctx); ok {
		t.Error("last viewed quote survived end of session")
	}
}

func ptr(s string) *string { return &s }
