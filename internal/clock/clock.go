// Package clock provides the exchange's notion of wall-clock time and the
// per-book monotonic id allocator (spec component C1).
package clock

import "time"

// stockfighterLayout matches the timestamp shape real Stockfighter (and
// disorderBook) clients expect: millisecond precision, UTC, literal "Z".
const stockfighterLayout = "2006-01-02T15:04:05.000Z"

// Now returns the current instant formatted the way the exchange stamps
// orders, fills, trades and quotes.
func Now() string {
	return time.Now().UTC().Format(stockfighterLayout)
}

// IDAllocator hands out strictly increasing order ids within one book.
// It carries no lock of its own: the book's critical section already
// serializes every call, per spec.md §5.
type IDAllocator struct {
	next uint64
}

// Next returns the next id and advances the counter.
func (a *IDAllocator) Next() uint64 {
	id := a.next
	a.next++
	return id
}
