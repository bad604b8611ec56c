// Package registry implements the (venue, stock) -> Book collection with a
// creation cap (spec component C7). Grounded on the teacher's
// engine.Engine.Books map (internal/engine/engine.go), generalized from a
// fixed set of asset types known at startup to venues and stocks created
// lazily on first reference.
package registry

import (
	"errors"
	"sync"

	"obex/internal/matching"
)

// ErrTooManyBooks is returned when creating a book would push the total
// count past the configured cap (spec.md §4.6).
var ErrTooManyBooks = errors.New("too many books: exceeds configured maximum (see command line options)")

// BookFactory constructs a new Book for (venue, stock); the registry
// injects the event sink so matching never has to know about eventbus.
type BookFactory func(venue, stock string) *matching.Book

// Registry is the collection of every book ever referenced. Creation is
// globally serialized to enforce the cap atomically; lookups of an
// already-created book are cheap, read-mostly operations.
type Registry struct {
	mu      sync.Mutex
	maxBook int // 0 = unlimited
	factory BookFactory
	venues  map[string]map[string]*matching.Book
}

// New constructs a registry. maxBooks of 0 disables the cap.
func New(maxBooks int, factory BookFactory) *Registry {
	return &Registry{
		maxBook: maxBooks,
		factory: factory,
		venues:  make(map[string]map[string]*matching.Book),
	}
}

// Ensure returns the book for (venue, stock), creating it (and its venue
// entry, if needed) when this is the first reference. Creation fails with
// ErrTooManyBooks if the cap would be exceeded.
func (r *Registry) Ensure(venue, stock string) (*matching.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stocks, venueExists := r.venues[venue]
	if venueExists {
		if book, ok := stocks[stock]; ok {
			return book, nil
		}
	}

	if r.maxBook > 0 && r.count()+1 > r.maxBook {
		return nil, ErrTooManyBooks
	}

	if !venueExists {
		stocks = make(map[string]*matching.Book)
		r.venues[venue] = stocks
	}
	book := r.factory(venue, stock)
	stocks[stock] = book
	return book, nil
}

// count returns the total number of books across every venue. Called with
// mu held.
func (r *Registry) count() int {
	n := 0
	for _, stocks := range r.venues {
		n += len(stocks)
	}
	return n
}

// HasVenue reports whether venue has been referenced at least once.
func (r *Registry) HasVenue(venue string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.venues[venue]
	return ok
}

// Venues lists every venue referenced so far.
func (r *Registry) Venues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.venues))
	for v := range r.venues {
		out = append(out, v)
	}
	return out
}

// Stocks lists every stock symbol referenced on venue. ok is false if the
// venue has never been referenced.
func (r *Registry) Stocks(venue string) (symbols []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stocks, exists := r.venues[venue]
	if !exists {
		return nil, false
	}
	out := make([]string, 0, len(stocks))
	for s := range stocks {
		out = append(out, s)
	}
	return out, true
}

// Books returns every book on venue, used by the "all orders for account
// on venue" façade endpoint which must scan every stock.
func (r *Registry) Books(venue string) []*matching.Book {
	r.mu.Lock()
	defer r.mu.Unlock()
	stocks, ok := r.venues[venue]
	if !ok {
		return nil
	}
	out := make([]*matching.Book, 0, len(stocks))
	for _, b := range stocks {
		out = append(out, b)
	}
	return out
}

// Count returns the total number of books currently registered, exported
// for the metrics gauge (SPEC_FULL.md §7.1).
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count()
}
