// Package ledger counts how often each style category was assigned during
// one user session.
//
// A Ledger is owned by exactly one session. It does no locking; the session
// store serializes access per session.
package ledger

import (
	"sort"

	"github.com/okian/stylepulse/internal/domain/catalog"
)

// Entry is one row of a ledger, used for charts and JSON.
type Entry struct {
	Category catalog.Category `json:"category"`
	Count    int              `json:"count"`
}

// Ledger maps category to a positive occurrence count. The zero value is an
// empty, ready-to-use ledger.
type Ledger struct {
	counts map[catalog.Category]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{counts: make(map[catalog.Category]int)}
}

// FromSnapshot rebuilds a ledger from a previously taken snapshot.
// Non-positive counts are dropped since a ledger never stores them.
func FromSnapshot(snap map[catalog.Category]int) *Ledger {
	l := New()
	for c, n := range snap {
		if n > 0 {
			l.counts[c] = n
		}
	}
	return l
}

// Record increments the count for category by one.
func (l *Ledger) Record(category catalog.Category) {
	if l.counts == nil {
		l.counts = make(map[catalog.Category]int)
	}
	l.counts[category]++
}

// Snapshot returns a copy of the current counts.
func (l *Ledger) Snapshot() map[catalog.Category]int {
	out := make(map[catalog.Category]int, len(l.counts))
	for c, n := range l.counts {
		out[c] = n
	}
	return out
}

// Count returns the count for category, zero when never recorded.
func (l *Ledger) Count(category catalog.Category) int {
	return l.counts[category]
}

// Len returns the number of distinct categories recorded.
func (l *Ledger) Len() int {
	return len(l.counts)
}

// Total returns the sum of all counts.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Empty reports whether nothing was recorded yet.
func (l *Ledger) Empty() bool {
	return len(l.counts) == 0
}

// Entries returns the ledger as rows sorted by category name.
func (l *Ledger) Entries() []Entry {
	entries := make([]Entry, 0, len(l.counts))
	for c, n := range l.counts {
		entries = append(entries, Entry{Category: c, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Category < entries[j].Category })
	return entries
}
