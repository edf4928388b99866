package merge_test

import (
	"fmt"

	"github.com/quotesync/quotesync/internal/merge"
	"github.com/quotesync/quotesync/internal/quote"
)

func ExampleMerge() {
	local := []quote.Quote{{Text: "X", Category: "life"}}
	remote := []quote.Quote{
		{Text: "X", Category: "Life"},
		{Text: "Y", Category: "server-sync"},
	}

	r := merge.Merge(local, remote)
	fmt.Println(r.Changed, r.ToAppend)
	fmt.Println(len(local) + len(r.ToAppend))
	// Output:
	// true [{Y server-sync}]
	// 2
}
