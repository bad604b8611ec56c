package matching

import "errors"

// Sentinel errors the façade maps one-for-one to the status-code taxonomy
// of spec.md §7, generalizing the teacher's own named sentinels
// (ErrNotEnoughLiquidity, ErrRejection in engine/orderbook.go).
var (
	// ErrBadValue is returned for a non-positive quantity or a missing/
	// non-positive limit price on a non-market order.
	ErrBadValue = errors.New("illegal value: quantity and non-market price must be positive")

	// ErrNoSuchOrder is returned when an order id is unknown to the book.
	ErrNoSuchOrder = errors.New("no such order for that venue/stock combination")
)
