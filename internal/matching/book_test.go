package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func admit(t *testing.T, b *Book, account string, side Side, typ OrderType, qty uint64, price int64) OrderStatus {
	t.Helper()
	status, err := b.Admit(AdmitRequest{Account: account, Side: side, Type: typ, Qty: qty, Price: price})
	require.NoError(t, err)
	return status
}

func TestLimitOrderRestsWhenNoCross(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	status := admit(t, b, "acct-a", Buy, Limit, 100, 500)
	assert.True(t, status.Open)
	assert.Equal(t, uint64(100), status.Remaining)
	assert.Empty(t, status.Fills)

	quote := b.GetQuote()
	assert.True(t, quote.HasBid)
	assert.Equal(t, int64(500), quote.BidPrice)
	assert.Equal(t, uint64(100), quote.BidSize)
	assert.False(t, quote.HasAsk)
}

func TestCrossingLimitTradesAtRestingPrice(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "seller", Sell, Limit, 100, 500)
	buy := admit(t, b, "buyer", Buy, Limit, 100, 600)

	require.Len(t, buy.Fills, 1)
	assert.Equal(t, int64(500), buy.Fills[0].Price, "aggressor pays the resting order's price")
	assert.False(t, buy.Open)
	assert.Equal(t, uint64(0), buy.Remaining)

	quote := b.GetQuote()
	assert.True(t, quote.HasLast)
	assert.Equal(t, int64(500), quote.LastPrice)
	assert.False(t, quote.HasBid)
	assert.False(t, quote.HasAsk)
}

func TestMarketOrderSweepsMultipleLevels(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "s1", Sell, Limit, 50, 500)
	admit(t, b, "s2", Sell, Limit, 50, 510)

	buy := admit(t, b, "buyer", Buy, Market, 80, 0)
	require.Len(t, buy.Fills, 2)
	assert.Equal(t, int64(500), buy.Fills[0].Price)
	assert.Equal(t, uint64(50), buy.Fills[0].Qty)
	assert.Equal(t, int64(510), buy.Fills[1].Price)
	assert.Equal(t, uint64(30), buy.Fills[1].Qty)
	assert.False(t, buy.Open)
	assert.Equal(t, uint64(80), buy.TotalFilled)
}

func TestImmediateOrCancelDiscardsUnfilledRemainder(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "seller", Sell, Limit, 20, 500)
	ioc := admit(t, b, "buyer", Buy, ImmediateOrCancel, 50, 500)

	assert.Equal(t, uint64(20), ioc.TotalFilled)
	assert.Equal(t, uint64(30), ioc.Remaining)
	assert.False(t, ioc.Open, "unfilled IoC remainder is discarded, not resting")

	bids, _ := b.GetBook()
	assert.Empty(t, bids)
}

func TestFillOrKillRejectsWhenInsufficientLiquidity(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "seller", Sell, Limit, 20, 500)
	fok := admit(t, b, "buyer", Buy, FillOrKill, 50, 500)

	assert.Empty(t, fok.Fills)
	assert.Equal(t, uint64(0), fok.TotalFilled)
	assert.False(t, fok.Open)

	quote := b.GetQuote()
	assert.False(t, quote.HasLast, "a killed FoK must leave no trade behind")

	bids, asks := b.GetBook()
	assert.Empty(t, bids)
	require.Len(t, asks, 1)
	assert.Equal(t, uint64(20), asks[0].Qty, "the resting ask must be untouched by the failed FoK")
}

func TestFillOrKillExecutesAtomicallyAcrossLevels(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "s1", Sell, Limit, 20, 500)
	admit(t, b, "s2", Sell, Limit, 30, 510)

	fok := admit(t, b, "buyer", Buy, FillOrKill, 50, 510)
	assert.Equal(t, uint64(50), fok.TotalFilled)
	require.Len(t, fok.Fills, 2)
}

func TestPriceTimePriority(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	first := admit(t, b, "first", Buy, Limit, 10, 500)
	admit(t, b, "second", Buy, Limit, 10, 500)

	sell := admit(t, b, "seller", Sell, Limit, 10, 500)
	require.Len(t, sell.Fills, 1)

	status, err := b.GetStatus(first.ID)
	require.NoError(t, err)
	assert.False(t, status.Open, "the earlier-queued order at the same price must be filled first")
}

func TestCancelIsIdempotent(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	order := admit(t, b, "acct", Buy, Limit, 10, 500)

	first, err := b.Cancel(order.ID)
	require.NoError(t, err)
	assert.False(t, first.Open)

	second, err := b.Cancel(order.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "cancelling an already-closed order changes nothing")
}

func TestCancelUnknownOrderFails(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)
	_, err := b.Cancel(999)
	assert.ErrorIs(t, err, ErrNoSuchOrder)
}

func TestAdmitRejectsBadValues(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	_, err := b.Admit(AdmitRequest{Account: "a", Side: Buy, Type: Limit, Qty: 0, Price: 100})
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = b.Admit(AdmitRequest{Account: "a", Side: Buy, Type: Limit, Qty: 10, Price: 0})
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = b.Admit(AdmitRequest{Account: "a", Side: Buy, Type: Market, Qty: 10, Price: 0})
	assert.NoError(t, err, "market orders never require a price")
}

func TestShareAndCashConservation(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "seller", Sell, Limit, 100, 500)
	admit(t, b, "buyer", Buy, Limit, 60, 510)
	admit(t, b, "buyer2", Buy, Market, 40, 0)

	assert.True(t, b.invariantsHold(), "every trade moves shares and cash symmetrically between two accounts")
}

func TestQuoteDepthTracksMultipleOrdersAtSameLevel(t *testing.T) {
	b := New("TESTEX", "FOOBAR", nil)

	admit(t, b, "a1", Buy, Limit, 10, 500)
	admit(t, b, "a2", Buy, Limit, 15, 500)
	admit(t, b, "a3", Buy, Limit, 5, 490)

	quote := b.GetQuote()
	assert.Equal(t, uint64(25), quote.BidSize, "top-of-book size sums every order at the best price")
	assert.Equal(t, uint64(30), quote.BidDepth, "depth sums every resting bid across all price levels")
}
