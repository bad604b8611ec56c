package matching

// Order is the book's immutable-identity, mutable-fill-history order
// record (spec component C3). Every field but Remaining, Fills and Open
// is fixed at admission.
type Order struct {
	ID          uint64
	Venue       string
	Stock       string
	Account     string
	Side        Side
	Type        OrderType
	Price       int64 // limit price; ignored semantically for Market
	OriginalQty uint64
	Submitted   string

	Remaining uint64
	Fills     []Fill
	Open      bool
}

// addFill records an execution against this order: decrements Remaining
// and appends to the fill history. It never validates qty against
// Remaining — the matching loop is the only caller and never overfills.
func (o *Order) addFill(price int64, qty uint64, timestamp string) {
	o.Remaining -= qty
	o.Fills = append(o.Fills, Fill{Price: price, Qty: qty, Timestamp: timestamp})
}

// close marks the order no longer resting in any price level.
func (o *Order) close() {
	o.Open = false
}

// TotalFilled returns original minus remaining, the amount executed so far.
func (o *Order) TotalFilled() uint64 {
	return o.OriginalQty - o.Remaining
}

// OrderStatus is the dictionary-shaped snapshot view spec.md §4.3 asks for.
// It is a plain copy — mutating it never affects the live Order.
type OrderStatus struct {
	ID          uint64
	Venue       string
	Stock       string
	Account     string
	Side        Side
	Type        OrderType
	Price       int64
	OriginalQty uint64
	Remaining   uint64
	TotalFilled uint64
	Open        bool
	Submitted   string
	Fills       []Fill
}

// Status returns a snapshot of the order suitable for handing to a façade
// or an event subscriber.
func (o *Order) Status() OrderStatus {
	fills := make([]Fill, len(o.Fills))
	copy(fills, o.Fills)
	return OrderStatus{
		ID:          o.ID,
		Venue:       o.Venue,
		Stock:       o.Stock,
		Account:     o.Account,
		Side:        o.Side,
		Type:        o.Type,
		Price:       o.Price,
		OriginalQty: o.OriginalQty,
		Remaining:   o.Remaining,
		TotalFilled: o.TotalFilled(),
		Open:        o.Open,
		Submitted:   o.Submitted,
		Fills:       fills,
	}
}
