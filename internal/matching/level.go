package matching

// priceLevel is the time-ordered queue of open order ids at one (side,
// price) (spec component C4). It holds ids rather than order pointers —
// per the design note on cyclic references, the book's id-indexed order
// vector is the single owner of Order values; a level is just an index.
//
// remaining is a running sum of the Remaining quantity of every order
// currently queued here, maintained incrementally so quote refresh never
// has to re-scan a level's full order list (spec.md §4.4.3).
type priceLevel struct {
	price     int64
	ids       []uint64
	remaining uint64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price}
}

// append adds an order id to the back of the queue, preserving admission
// (time) order.
func (lvl *priceLevel) append(id uint64, qty uint64) {
	lvl.ids = append(lvl.ids, id)
	lvl.remaining += qty
}

// front returns the oldest id in the level without removing it.
func (lvl *priceLevel) front() (uint64, bool) {
	if len(lvl.ids) == 0 {
		return 0, false
	}
	return lvl.ids[0], true
}

// reduce shrinks the cached remaining-sum without touching the id queue.
// The matcher calls it on every fill against the front order, whether that
// fill consumes the order partially or fully.
func (lvl *priceLevel) reduce(qty uint64) {
	lvl.remaining -= qty
}

// dropFront removes the oldest id, used when the front order is fully
// consumed by a match (remove-first, spec.md §4.3).
func (lvl *priceLevel) dropFront() {
	lvl.ids = lvl.ids[1:]
}

// removeByID removes an arbitrary order id from the level (remove-by-
// identity, spec.md §4.3, used by cancellation) and shrinks remaining by
// qty. Reports whether the id was present.
func (lvl *priceLevel) removeByID(id uint64, qty uint64) bool {
	for i, cand := range lvl.ids {
		if cand == id {
			lvl.ids = append(lvl.ids[:i], lvl.ids[i+1:]...)
			lvl.remaining -= qty
			return true
		}
	}
	return false
}

func (lvl *priceLevel) isEmpty() bool {
	return len(lvl.ids) == 0
}

// sumRemaining is the cached sum-of-remaining-quantities operation C4
// exposes.
func (lvl *priceLevel) sumRemaining() uint64 {
	return lvl.remaining
}
