package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obex/internal/auth"
	"obex/internal/matching"
	"obex/internal/metrics"
	"obex/internal/registry"
)

func newTestServer(t *testing.T, excess bool) *httptest.Server {
	t.Helper()
	factory := registry.BookFactory(func(venue, stock string) *matching.Book {
		return matching.New(venue, stock, nil)
	})
	reg := registry.New(0, factory)
	gate := &auth.Gate{}
	m := metrics.New(prometheus.NewRegistry())
	srv := New(reg, gate, m, excess, zerolog.Nop())
	return httptest.NewServer(srv.Router())
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body map[string]any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHeartbeat(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ob/api/heartbeat")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out heartbeatResponse
	decodeJSON(t, resp, &out)
	assert.True(t, out.OK)
}

func TestAdmitRestsLimitOrder(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp := postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account":   "acct-a",
		"direction": "buy",
		"orderType": "limit",
		"qty":       10,
		"price":     500,
	})
	assert.Equal(t, 200, resp.StatusCode)

	var out orderResponse
	decodeJSON(t, resp, &out)
	assert.True(t, out.OK)
	assert.True(t, out.Open)
	assert.Equal(t, "buy", out.Direction)
	assert.Equal(t, uint64(10), out.Qty)
}

func TestAdmitCrossAndPriceImprovement(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "seller", "direction": "sell", "orderType": "limit", "qty": 10, "price": 500,
	})
	resp := postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "buyer", "direction": "buy", "orderType": "limit", "qty": 10, "price": 600,
	})

	var out orderResponse
	decodeJSON(t, resp, &out)
	require.Len(t, out.Fills, 1)
	assert.Equal(t, int64(500), out.Fills[0].Price)
	assert.False(t, out.Open)
}

func TestAdmitMissingFieldReturns400(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp := postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"direction": "buy", "orderType": "limit", "qty": 10, "price": 500,
	})
	assert.Equal(t, 400, resp.StatusCode)

	var out errorResponse
	decodeJSON(t, resp, &out)
	assert.False(t, out.OK)
}

func TestAdmitURLMismatchReturns400(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp := postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "a", "direction": "buy", "orderType": "limit", "qty": 10, "price": 500,
		"stock": "OTHERSTOCK",
	})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestStatusAndCancel(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp := postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "a", "direction": "buy", "orderType": "limit", "qty": 10, "price": 500,
	})
	var order orderResponse
	decodeJSON(t, resp, &order)

	statusResp, err := http.Get(ts.URL + "/ob/api/venues/TESTEX/stocks/FOOBAR/orders/0")
	require.NoError(t, err)
	var status orderResponse
	decodeJSON(t, statusResp, &status)
	assert.True(t, status.Open)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/ob/api/venues/TESTEX/stocks/FOOBAR/orders/0", nil)
	cancelResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var cancelled orderResponse
	decodeJSON(t, cancelResp, &cancelled)
	assert.False(t, cancelled.Open)
}

func TestUnknownOrderReturns404(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ob/api/venues/TESTEX/stocks/FOOBAR/orders/999")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestAllOrdersDisabledByDefault(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ob/api/venues/TESTEX/accounts/acct-a/orders")
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestAllOrdersEnabledWhenExcess(t *testing.T) {
	ts := newTestServer(t, true)
	defer ts.Close()

	postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "acct-a", "direction": "buy", "orderType": "limit", "qty": 10, "price": 500,
	})

	resp, err := http.Get(ts.URL + "/ob/api/venues/TESTEX/accounts/acct-a/orders")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out ordersResponse
	decodeJSON(t, resp, &out)
	assert.Len(t, out.Orders, 1)
}

func TestVenuesAndStocksListing(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "a", "direction": "buy", "orderType": "limit", "qty": 10, "price": 500,
	})

	resp, err := http.Get(ts.URL + "/ob/api/venues")
	require.NoError(t, err)
	var venues venuesResponse
	decodeJSON(t, resp, &venues)
	require.Len(t, venues.Venues, 1)
	assert.Equal(t, "TESTEX Exchange", venues.Venues[0].Name)

	resp, err = http.Get(ts.URL + "/ob/api/venues/TESTEX/stocks")
	require.NoError(t, err)
	var stocks stocksResponse
	decodeJSON(t, resp, &stocks)
	require.Len(t, stocks.Symbols, 1)
	assert.Equal(t, "FOOBAR Inc", stocks.Symbols[0].Name)
}

func TestScoreboardReportsNoActivityBeforeFirstTrade(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	postJSON(t, ts, "/ob/api/venues/TESTEX/stocks/FOOBAR/orders", map[string]any{
		"account": "a", "direction": "buy", "orderType": "limit", "qty": 10, "price": 500,
	})

	resp, err := http.Get(ts.URL + "/ob/api/venues/TESTEX/stocks/FOOBAR/scores")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
