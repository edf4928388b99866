// Package quote provides the record type shared by every quotesync component.
package quote

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quote is a single text/category pair.
//
// Quotes carry no identity. Two quotes are the same quote when their keys are
// equal (see Key), which is how the merge engine deduplicates server records.
type Quote struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Key is the structural identity of a quote: trimmed text and lowercase category.
type Key struct {
	Text     string
	Category string
}

// New builds a quote from user input.
//
// The text is trimmed and the category trimmed and lowercased. Either field
// being empty after trimming yields a *ValidationError.
func New(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = NormalizeCategory(category)

	if text == "" {
		return Quote{}, &ValidationError{Field: "text"}
	}
	if category == "" {
		return Quote{}, &ValidationError{Field: "category"}
	}

	return Quote{Text: text, Category: category}, nil
}

// Key returns the structural identity used for equivalence.
func (q Quote) Key() Key {
	return Key{
		Text:     strings.TrimSpace(q.Text),
		Category: NormalizeCategory(q.Category),
	}
}

// Equivalent reports whether a and b are the same quote.
// Text is compared after trimming, category case-insensitively.
func Equivalent(a, b Quote) bool {
	return a.Key() == b.Key()
}

// DisplayCategory returns the category in display form ("life" -> "Life").
func (q Quote) DisplayCategory() string {
	return Capitalize(NormalizeCategory(q.Category))
}

// NormalizeCategory trims and lowercases a category name.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Seed returns a fresh copy of the collection used when nothing has been
// persisted yet.
func Seed() []Quote {
	return []Quote{
		{Text: "Life is what happens when you're busy making other plans.", Category: "life"},
		{Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "motivation"},
		{Text: "To be yourself in a world that is constantly trying to make you something else is the greatest accomplishment.", Category: "inspiration"},
	}
}

// Clone returns a copy of quotes that shares no backing array with the input.
func Clone(quotes []Quote) []Quote {
	if quotes == nil {
		return nil
	}
	out := make([]Quote, len(quotes))
	copy(out, quotes)
	return out
}
