// Package browse accumulates catalog listing pages for local browsing.
package browse

import (
	"github.com/aniwatch/aniwatch-server/catalog"
)

// DefaultMaxPages bounds how many catalog pages one browsing session
// may accumulate.
const DefaultMaxPages = 20

// Accumulator is an append-unique reducer over successive catalog
// pages: records are kept in arrival order, de-duplicated by id, and
// accumulation stops at a fixed page cap so memory stays bounded.
type Accumulator struct {
	maxPages int
	pages    int
	seen     map[int64]bool
	records  []catalog.Anime
	more     bool
}

func NewAccumulator(maxPages int) *Accumulator {
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	return &Accumulator{
		maxPages: maxPages,
		seen:     make(map[int64]bool),
		more:     true,
	}
}

// Add appends one page of records, skipping ids already present.
// hasNext is the catalog's has-next-page flag.
func (a *Accumulator) Add(records []catalog.Anime, hasNext bool) {
	if a.pages >= a.maxPages {
		a.more = false
		return
	}
	a.pages++
	for _, r := range records {
		if a.seen[r.ID] {
			continue
		}
		a.seen[r.ID] = true
		a.records = append(a.records, r)
	}
	a.more = hasNext && a.pages < a.maxPages
}

// Records returns the accumulated sequence in arrival order.
func (a *Accumulator) Records() []catalog.Anime {
	return a.records
}

// HasMore reports whether another page may be requested: false once
// the catalog is exhausted or the page cap is reached.
func (a *Accumulator) HasMore() bool {
	return a.more
}

// NextPage is the next catalog page number to request.
func (a *Accumulator) NextPage() int {
	return a.pages + 1
}

// Len returns the number of accumulated records.
func (a *Accumulator) Len() int {
	return len(a.records)
}
