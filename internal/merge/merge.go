// Package merge reconciles the local collection with a server snapshot.
//
// The policy is additive: server quotes are appended when no equivalent quote
// exists locally, and nothing local is ever updated or removed. Local presence
// wins over re-insertion; server presence wins over absence.
package merge

import "github.com/quotesync/quotesync/internal/quote"

// Result is the decision set produced by Merge.
type Result struct {
	// ToAppend holds the server quotes to add, in server order.
	ToAppend []quote.Quote

	// Changed is true when ToAppend is non-empty.
	Changed bool
}

// Merge computes which remote quotes must be appended to local.
//
// A remote quote is kept when no quote equivalent to it exists in local or
// earlier in the result, so a snapshot carrying the same quote twice adds it
// once. Neither input is modified.
func Merge(local, remote []quote.Quote) Result {
	seen := make(map[quote.Key]struct{}, len(local)+len(remote))
	for _, q := range local {
		seen[q.Key()] = struct{}{}
	}

	var toAppend []quote.Quote
	for _, q := range remote {
		k := q.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		toAppend = append(toAppend, q)
	}

	return Result{
		ToAppend: toAppend,
		Changed:  len(toAppend) > 0,
	}
}
