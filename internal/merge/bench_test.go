package merge

import (
	"fmt"
	"testing"

	"github.com/quotesync/quotesync/internal/quote"
)

func makeQuotes(n int, category string) []quote.Quote {
	quotes := make([]quote.Quote, n)
	for i := range quotes {
		quotes[i] = quote.Quote{Text: fmt.Sprintf("quote %d", i), Category: category}
	}
	return quotes
}

// BenchmarkMerge_1000Local benchmarks a typical cycle: a large local
// collection and a small server snapshot that is already present.
func BenchmarkMerge_1000Local(b *testing.B) {
	local := makeQuotes(1000, "life")
	remote := makeQuotes(5, "life")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if r := Merge(local, remote); r.Changed {
			b.Fatal("snapshot should already be present")
		}
	}
}

// BenchmarkMerge_10000Local benchmarks the same cycle with 10000 local quotes.
func BenchmarkMerge_10000Local(b *testing.B) {
	local := makeQuotes(10000, "life")
	remote := makeQuotes(5, "server-sync")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if r := Merge(local, remote); len(r.ToAppend) != 5 {
			b.Fatalf("ToAppend = %d, want 5", len(r.ToAppend))
		}
	}
}
