package quote

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		want     Quote
		wantErr  bool
		errField string
	}{
		{
			name:     "valid quote",
			text:     "Test quote",
			category: "Wisdom",
			want:     Quote{Text: "Test quote", Category: "wisdom"},
		},
		{
			name:     "trims both fields",
			text:     "  spaced  ",
			category: "  Life ",
			want:     Quote{Text: "spaced", Category: "life"},
		},
		{
			name:     "empty text",
			text:     "   ",
			category: "life",
			wantErr:  true,
			errField: "text",
		},
		{
			name:     "empty category",
			text:     "something",
			category: "",
			wantErr:  true,
			errField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.text, tt.category)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("New() error = %T, want *ValidationError", err)
				}
				if verr.Field != tt.errField {
					t.Errorf("Field = %q, want %q", verr.Field, tt.errField)
				}
				if !errors.Is(err, ErrValidation) {
					t.Error("error does not match ErrValidation")
				}
				return
			}
			if got != tt.want {
				t.Errorf("New() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a, b Quote
		want bool
	}{
		{"identical", Quote{"A", "life"}, Quote{"A", "life"}, true},
		{"category case differs", Quote{"A", "Life"}, Quote{"A", "life"}, true},
		{"text whitespace differs", Quote{" A ", "life"}, Quote{"A", "life"}, true},
		{"text case differs", Quote{"a", "life"}, Quote{"A", "life"}, false},
		{"category differs", Quote{"A", "life"}, Quote{"A", "server-sync"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equivalent(tt.a, tt.b); got != tt.want {
				t.Errorf("Equivalent(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDisplayCategory(t *testing.T) {
	a := Quote{Text: "A", Category: "Life"}
	b := Quote{Text: "A", Category: "life"}

	if a.DisplayCategory() != "Life" || b.DisplayCategory() != "Life" {
		t.Errorf("DisplayCategory = %q, %q; want Life", a.DisplayCategory(), b.DisplayCategory())
	}
	if a.Category == b.Category {
		t.Error("stored categories should keep their own case")
	}
	if got := Capitalize(""); got != "" {
		t.Errorf("Capitalize(\"\") = %q", got)
	}
	if got := Capitalize("éclat"); got != "Éclat" {
		t.Errorf("Capitalize(éclat) = %q", got)
	}
}

func TestSeed(t *testing.T) {
	seed := Seed()
	if len(seed) != 3 {
		t.Fatalf("len(Seed()) = %d, want 3", len(seed))
	}

	seed[0].Text = "mutated"
	if Seed()[0].Text == "mutated" {
		t.Error("Seed() must return a fresh copy")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantLen int
		wantErr error
	}{
		{"array of quotes", `[{"text":"A","category":"life"},{"text":"B","category":"x"}]`, 2, nil},
		{"empty array", `[]`, 0, nil},
		{"missing fields kept verbatim", `[{"text":"only text"}]`, 1, nil},
		{"object", `{"not":"an array"}`, 0, ErrFormat},
		{"null", `null`, 0, ErrFormat},
		{"string", `"quotes"`, 0, ErrFormat},
		{"malformed", `[{"text":`, 0, ErrDecode},
		{"non-object element", `[1, 2]`, 0, ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestEncodeNil(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil) failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", data)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	quotes := []Quote{{Text: "A", Category: "life"}}

	path, err := WriteFile(dir, quotes)
	if err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if filepath.Base(path) != ExportFilename {
		t.Errorf("filename = %s, want %s", filepath.Base(path), ExportFilename)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "\n  {\n    \"text\": \"A\"") {
		t.Errorf("export is not 2-space indented:\n%s", data)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if len(got) != 1 || got[0] != quotes[0] {
		t.Errorf("ReadFile() = %+v, want %+v", got, quotes)
	}
}
