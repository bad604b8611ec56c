package httpapi

import (
	"obex/internal/ledger"
	"obex/internal/matching"
)

// The wire shapes below mirror the real Stockfighter / disorderBook JSON
// contract (confirmed against original_source/disorderBook_main.py and
// original_source/tests/book_vs_other.py's field list), not an invention
// of this façade.

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func errResp(msg string) errorResponse { return errorResponse{OK: false, Error: msg} }

type heartbeatResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type venueHeartbeatResponse struct {
	OK    bool   `json:"ok"`
	Venue string `json:"venue"`
}

type venueListing struct {
	Name  string `json:"name"`
	Venue string `json:"venue"`
	State string `json:"state"`
}

type venuesResponse struct {
	OK     bool           `json:"ok"`
	Venues []venueListing `json:"venues"`
}

type symbolListing struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type stocksResponse struct {
	OK      bool            `json:"ok"`
	Symbols []symbolListing `json:"symbols"`
}

type depthLevelDTO struct {
	Price int64  `json:"price"`
	Qty   uint64 `json:"qty"`
	IsBuy bool   `json:"isBuy"`
}

type bookResponse struct {
	OK     bool            `json:"ok"`
	Venue  string          `json:"venue"`
	Symbol string          `json:"symbol"`
	Bids   []depthLevelDTO `json:"bids"`
	Asks   []depthLevelDTO `json:"asks"`
	Ts     string          `json:"ts"`
}

func depthDTOs(levels []matching.DepthLevel, isBuy bool) []depthLevelDTO {
	out := make([]depthLevelDTO, 0, len(levels))
	for _, l := range levels {
		out = append(out, depthLevelDTO{Price: l.Price, Qty: l.Qty, IsBuy: isBuy})
	}
	return out
}

type quoteResponse struct {
	OK        bool   `json:"ok"`
	Venue     string `json:"venue"`
	Symbol    string `json:"symbol"`
	Bid       int64  `json:"bid,omitempty"`
	BidSize   uint64 `json:"bidSize,omitempty"`
	BidDepth  uint64 `json:"bidDepth,omitempty"`
	Ask       int64  `json:"ask,omitempty"`
	AskSize   uint64 `json:"askSize,omitempty"`
	AskDepth  uint64 `json:"askDepth,omitempty"`
	Last      int64  `json:"last,omitempty"`
	LastSize  uint64 `json:"lastSize,omitempty"`
	LastTrade string `json:"lastTrade,omitempty"`
	Ts        string `json:"ts"`
}

func quoteDTO(venue, symbol string, q matching.Quote) quoteResponse {
	resp := quoteResponse{OK: true, Venue: venue, Symbol: symbol, Ts: q.Timestamp}
	if q.HasBid {
		resp.Bid = q.BidPrice
		resp.BidSize = q.BidSize
		resp.BidDepth = q.BidDepth
	}
	if q.HasAsk {
		resp.Ask = q.AskPrice
		resp.AskSize = q.AskSize
		resp.AskDepth = q.AskDepth
	}
	if q.HasLast {
		resp.Last = q.LastPrice
		resp.LastSize = q.LastSize
		resp.LastTrade = q.LastTimestamp
	}
	return resp
}

type fillDTO struct {
	Price int64  `json:"price"`
	Qty   uint64 `json:"qty"`
	Ts    string `json:"ts"`
}

// orderResponse is the shape of a single order result: the response to
// admit, cancel and status, and one entry of an orders listing.
type orderResponse struct {
	OK          bool      `json:"ok"`
	Venue       string    `json:"venue"`
	Symbol      string    `json:"symbol"`
	Direction   string    `json:"direction"`
	OriginalQty uint64    `json:"originalQty"`
	Qty         uint64    `json:"qty"`
	Price       int64     `json:"price"`
	OrderType   string    `json:"orderType"`
	ID          uint64    `json:"id"`
	Account     string    `json:"account"`
	Ts          string    `json:"ts"`
	Fills       []fillDTO `json:"fills"`
	TotalFilled uint64    `json:"totalFilled"`
	Open        bool      `json:"open"`
}

func orderDTO(s matching.OrderStatus) orderResponse {
	fills := make([]fillDTO, 0, len(s.Fills))
	for _, f := range s.Fills {
		fills = append(fills, fillDTO{Price: f.Price, Qty: f.Qty, Ts: f.Timestamp})
	}
	return orderResponse{
		OK: true, Venue: s.Venue, Symbol: s.Stock, Direction: s.Side.String(),
		OriginalQty: s.OriginalQty, Qty: s.Remaining, Price: s.Price,
		OrderType: s.Type.String(), ID: s.ID, Account: s.Account, Ts: s.Submitted,
		Fills: fills, TotalFilled: s.TotalFilled, Open: s.Open,
	}
}

type ordersResponse struct {
	OK     bool            `json:"ok"`
	Venue  string          `json:"venue"`
	Symbol string          `json:"symbol,omitempty"`
	Orders []orderResponse `json:"orders"`
}

func ordersDTO(venue, symbol string, statuses []matching.OrderStatus) ordersResponse {
	orders := make([]orderResponse, 0, len(statuses))
	for _, s := range statuses {
		orders = append(orders, orderDTO(s))
	}
	return ordersResponse{OK: true, Venue: venue, Symbol: symbol, Orders: orders}
}

// scoreRow is one line of the plain-text scoreboard (SPEC_FULL.md §6.3).
type scoreRow struct {
	pos ledger.Position
	nav int64
}
