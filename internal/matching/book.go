// Package matching implements the central limit order book and matching
// algorithm (spec components C3–C5): the per-book order and price-level
// records, the two price-ordered ladders, the matching algorithm and its
// four order-type semantics, the trade tape, the quote cache, and
// cancellation. This is THE CORE per spec.md §1.
package matching

import (
	"sync"

	"github.com/tidwall/btree"

	"obex/internal/clock"
	"obex/internal/ledger"
)

// Book is one (venue, stock) central limit order book. All mutating
// operations (Admit, Cancel) and the reads that must be consistent with
// them are serialized through mu, making the book a serial critical
// section per spec.md §5. Different books carry independent locks and may
// progress in parallel.
type Book struct {
	Venue string
	Stock string

	mu sync.Mutex

	ids    clock.IDAllocator
	orders []*Order // indexed by id; append-only, never deleted

	accountIndex map[string][]uint64 // account -> order ids, admission order

	bids *btree.BTreeG[*priceLevel] // best = highest price
	asks *btree.BTreeG[*priceLevel] // best = lowest price

	bidDepth uint64 // cumulative remaining qty across every bid level
	askDepth uint64 // cumulative remaining qty across every ask level

	positions *ledger.Ledger
	trades    []Trade
	quote     Quote

	sink EventSink
}

// New constructs an empty book for (venue, stock). sink may be nil, in
// which case events are discarded (handy for unit tests that only care
// about book state).
func New(venue, stock string, sink EventSink) *Book {
	if sink == nil {
		sink = noopSink{}
	}
	b := &Book{
		Venue:        venue,
		Stock:        stock,
		accountIndex: make(map[string][]uint64),
		bids:         btree.NewBTreeG(func(a, b *priceLevel) bool { return a.price > b.price }),
		asks:         btree.NewBTreeG(func(a, b *priceLevel) bool { return a.price < b.price }),
		positions:    ledger.New(),
		sink:         sink,
	}
	b.quote = Quote{Venue: venue, Stock: stock, Timestamp: clock.Now()}
	return b
}

// Admit validates and matches a new order against the book, per the
// admission contract and matching algorithm of spec.md §4.4.1/§4.4.2.
func (b *Book) Admit(req AdmitRequest) (OrderStatus, error) {
	if req.Qty == 0 {
		return OrderStatus{}, ErrBadValue
	}
	if req.Type != Market && req.Price < 1 {
		return OrderStatus{}, ErrBadValue
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ts := clock.Now()
	order := &Order{
		ID:          b.ids.Next(),
		Venue:       b.Venue,
		Stock:       b.Stock,
		Account:     req.Account,
		Side:        req.Side,
		Type:        req.Type,
		Price:       req.Price,
		OriginalQty: req.Qty,
		Remaining:   req.Qty,
		Submitted:   ts,
	}
	b.orders = append(b.orders, order)
	b.accountIndex[req.Account] = append(b.accountIndex[req.Account], order.ID)

	if req.Type == FillOrKill && !b.canFullyFill(order) {
		// Pre-check failed: the entire execution is undone by never having
		// started it. Zero fills, no mutation to book/positions/tape.
		order.close()
		return order.Status(), nil
	}

	b.match(order, ts)

	switch req.Type {
	case Limit:
		if order.Remaining > 0 {
			b.rest(order)
			order.Open = true
		} else {
			order.close()
		}
	default: // Market, ImmediateOrCancel, FillOrKill
		order.close()
	}

	b.refreshQuote()
	return order.Status(), nil
}

// match runs the central matching loop (spec.md §4.4.2 steps 1-4) for an
// order that has already passed the FoK pre-check (if applicable),
// consuming the opposite ladder while it crosses.
func (b *Book) match(incoming *Order, ts string) {
	opp, _ := b.ladders(incoming.Side)

	for incoming.Remaining > 0 {
		lvl, ok := opp.Min()
		if !ok {
			return
		}
		if !admissible(incoming, lvl.price) {
			return
		}

		restingID, ok := lvl.front()
		if !ok {
			// Empty level left dangling; drop it and keep going.
			opp.Delete(lvl)
			continue
		}
		resting := b.orders[restingID]

		tradeQty := min(incoming.Remaining, resting.Remaining)
		tradePrice := lvl.price

		incoming.addFill(tradePrice, tradeQty, ts)
		resting.addFill(tradePrice, tradeQty, ts)

		var buyer, seller string
		if incoming.Side == Buy {
			buyer, seller = incoming.Account, resting.Account
		} else {
			buyer, seller = resting.Account, incoming.Account
		}
		b.positions.ApplyTrade(buyer, seller, tradePrice, tradeQty)

		b.trades = append(b.trades, Trade{
			Buyer: buyer, Seller: seller, Price: tradePrice, Qty: tradeQty,
			Timestamp: ts, Aggressor: incoming.Side,
		})
		b.quote.HasLast = true
		b.quote.LastPrice = tradePrice
		b.quote.LastSize = tradeQty
		b.quote.LastTimestamp = ts

		lvl.reduce(tradeQty)
		b.reduceDepth(resting.Side, tradeQty)

		b.sink.Fill(b.Venue, b.Stock, incoming.Account, incoming.Status(), Fill{Price: tradePrice, Qty: tradeQty, Timestamp: ts}, incoming.Remaining)
		b.sink.Fill(b.Venue, b.Stock, resting.Account, resting.Status(), Fill{Price: tradePrice, Qty: tradeQty, Timestamp: ts}, resting.Remaining)

		if resting.Remaining == 0 {
			resting.close()
			lvl.dropFront()
			if lvl.isEmpty() {
				opp.Delete(lvl)
			}
		}
	}
}

// canFullyFill is the fill-or-kill pre-check (spec.md §4.4.2 step 5): the
// maximum achievable fill against the current opposite ladder, scanned
// level by level in price priority without mutating anything.
func (b *Book) canFullyFill(order *Order) bool {
	opp, _ := b.ladders(order.Side)
	var achievable uint64
	opp.Scan(func(lvl *priceLevel) bool {
		if !admissible(order, lvl.price) {
			return false
		}
		achievable += lvl.sumRemaining()
		return achievable < order.OriginalQty
	})
	return achievable >= order.OriginalQty
}

// admissible implements spec.md §4.4.2 step 2's crossing predicate.
func admissible(incoming *Order, bestPrice int64) bool {
	if incoming.Type == Market {
		return true
	}
	if incoming.Side == Buy {
		return bestPrice <= incoming.Price
	}
	return bestPrice >= incoming.Price
}

// rest inserts a limit order's unfilled remainder into its own ladder,
// establishing time priority by appending to the level's queue.
func (b *Book) rest(order *Order) {
	_, own := b.ladders(order.Side)
	lvl, ok := own.Get(&priceLevel{price: order.Price})
	if !ok {
		lvl = newPriceLevel(order.Price)
		own.Set(lvl)
	}
	lvl.append(order.ID, order.Remaining)
	b.growDepth(order.Side, order.Remaining)
}

// ladders returns (opposite, own) ladder for a given side: a buy order's
// opposite is the ask ladder and its own resting side is the bid ladder.
func (b *Book) ladders(side Side) (opp, own *btree.BTreeG[*priceLevel]) {
	if side == Buy {
		return b.asks, b.bids
	}
	return b.bids, b.asks
}

func (b *Book) growDepth(side Side, qty uint64) {
	if side == Buy {
		b.bidDepth += qty
	} else {
		b.askDepth += qty
	}
}

func (b *Book) reduceDepth(side Side, qty uint64) {
	if side == Buy {
		b.bidDepth -= qty
	} else {
		b.askDepth -= qty
	}
}

// refreshQuote recomputes the bid/ask/size/depth fields from the top of
// book plus the incrementally maintained depth counters (spec.md §4.4.3).
// Last-trade fields are untouched here; they are set directly by match
// and persist across non-trading mutations.
func (b *Book) refreshQuote() {
	b.quote.Timestamp = clock.Now()

	if lvl, ok := b.bids.Min(); ok {
		b.quote.HasBid = true
		b.quote.BidPrice = lvl.price
		b.quote.BidSize = lvl.sumRemaining()
	} else {
		b.quote.HasBid = false
		b.quote.BidPrice = 0
		b.quote.BidSize = 0
	}
	b.quote.BidDepth = b.bidDepth

	if lvl, ok := b.asks.Min(); ok {
		b.quote.HasAsk = true
		b.quote.AskPrice = lvl.price
		b.quote.AskSize = lvl.sumRemaining()
	} else {
		b.quote.HasAsk = false
		b.quote.AskPrice = 0
		b.quote.AskSize = 0
	}
	b.quote.AskDepth = b.askDepth

	b.sink.QuoteChanged(b.Venue, b.Stock, b.quote)
}

// Cancel implements the cancellation contract of spec.md §4.4.4.
func (b *Book) Cancel(id uint64) (OrderStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.order(id)
	if !ok {
		return OrderStatus{}, ErrNoSuchOrder
	}
	if !order.Open {
		// Idempotent: return the unchanged status, no trades, no quote change.
		return order.Status(), nil
	}

	_, own := b.ladders(order.Side)
	if lvl, ok := own.Get(&priceLevel{price: order.Price}); ok {
		if lvl.removeByID(order.ID, order.Remaining) {
			b.reduceDepth(order.Side, order.Remaining)
			if lvl.isEmpty() {
				own.Delete(lvl)
			}
		}
	}
	order.close()
	b.refreshQuote()
	return order.Status(), nil
}

// order looks up an order by id, reporting whether it exists.
func (b *Book) order(id uint64) (*Order, bool) {
	if id >= uint64(len(b.orders)) {
		return nil, false
	}
	return b.orders[id], true
}

// GetStatus returns the order's current snapshot (spec.md §4.4.5).
func (b *Book) GetStatus(id uint64) (OrderStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.order(id)
	if !ok {
		return OrderStatus{}, ErrNoSuchOrder
	}
	return order.Status(), nil
}

// AccountFromOrderID returns the owning account of an order, or ok=false
// if the id is unknown.
func (b *Book) AccountFromOrderID(id uint64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.order(id)
	if !ok {
		return "", false
	}
	return order.Account, true
}

// GetAllOrders returns every order ever submitted by account on this
// book, in admission order (spec.md §4.4.5 — an expensive read, gated by
// a façade-level flag).
func (b *Book) GetAllOrders(account string) []OrderStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := b.accountIndex[account]
	out := make([]OrderStatus, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.orders[id].Status())
	}
	return out
}

// GetQuote returns the cached quote snapshot.
func (b *Book) GetQuote() Quote {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quote
}

// GetBook returns both ladders as outward-facing depth arrays, each
// sorted by the ladder's natural best-first order (spec.md §4.4.5).
func (b *Book) GetBook() (bids, asks []DepthLevel) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids.Scan(func(lvl *priceLevel) bool {
		bids = append(bids, DepthLevel{Price: lvl.price, Qty: lvl.sumRemaining(), Side: Buy})
		return true
	})
	b.asks.Scan(func(lvl *priceLevel) bool {
		asks = append(asks, DepthLevel{Price: lvl.price, Qty: lvl.sumRemaining(), Side: Sell})
		return true
	})
	return bids, asks
}

// Positions returns a snapshot of every account with recorded activity on
// this book, used by the scoreboard façade endpoint (SPEC_FULL.md §6.3).
func (b *Book) Positions() []ledger.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positions.All()
}

// Position returns one account's snapshot on this book.
func (b *Book) Position(account string) ledger.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positions.Snapshot(account)
}

// LastPrice returns the book's last trade price and whether one has
// occurred yet, used to compute NAV.
func (b *Book) LastPrice() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quote.LastPrice, b.quote.HasLast
}

// invariantsHold is a debug-build assertion helper for the universal
// properties of spec.md §8 (share and cash conservation). It is wired
// from tests, not from production request paths, per spec.md §7: release
// builds must never crash on an invariant violation.
func (b *Book) invariantsHold() bool {
	return b.positions.ShareSum() == 0 && b.positions.CashSum() == 0
}
