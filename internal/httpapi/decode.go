package httpapi

import (
	"encoding/json"

	"obex/internal/matching"
)

// admitBody mirrors the incoming POST shape for order admission (confirmed
// against original_source/disorderBook_main.py's make_order: venue and
// stock/symbol are optional, defaulting to the URL's values, but when
// present must agree with them).
type admitBody struct {
	Account   string          `json:"account"`
	Venue     string          `json:"venue"`
	Stock     string          `json:"stock"`
	Symbol    string          `json:"symbol"`
	Price     int64           `json:"price"`
	Qty       json.RawMessage `json:"qty"`
	Direction string          `json:"direction"`
	OrderType string          `json:"orderType"`
	Type      string          `json:"type"`
}

// decodeAdmitRequest parses and validates an order-admission body, applying
// original_source/disorderBook_main.py's make_order precedence: bad-json,
// then url-mismatch (venue/stock, defaulting to the URL when absent from
// the body), then the remaining missing-field / bad-type / bad-value checks.
func decodeAdmitRequest(body []byte, urlVenue, urlStock string) (matching.AdmitRequest, string, error) {
	var raw admitBody
	if err := json.Unmarshal(body, &raw); err != nil {
		return matching.AdmitRequest{}, "", errBadJSON()
	}

	stock := raw.Stock
	if stock == "" {
		stock = raw.Symbol
	}
	if stock == "" {
		stock = urlStock
	}
	venue := raw.Venue
	if venue == "" {
		venue = urlVenue
	}
	if venue != urlVenue || stock != urlStock {
		return matching.AdmitRequest{}, "", errURLMismatch()
	}

	if raw.Account == "" {
		return matching.AdmitRequest{}, "", errMissingField("account")
	}
	if raw.Direction == "" {
		return matching.AdmitRequest{}, "", errMissingField("direction")
	}
	if len(raw.Qty) == 0 {
		return matching.AdmitRequest{}, "", errMissingField("qty")
	}

	var side matching.Side
	switch raw.Direction {
	case "buy":
		side = matching.Buy
	case "sell":
		side = matching.Sell
	default:
		return matching.AdmitRequest{}, "", errBadValue("direction")
	}

	otype := raw.OrderType
	if otype == "" {
		otype = raw.Type
	}
	if otype == "" {
		otype = "limit"
	}
	var kind matching.OrderType
	switch otype {
	case "limit":
		kind = matching.Limit
	case "market":
		kind = matching.Market
	case "immediate-or-cancel":
		kind = matching.ImmediateOrCancel
	case "fill-or-kill":
		kind = matching.FillOrKill
	default:
		return matching.AdmitRequest{}, "", errBadValue("orderType")
	}

	var qtySigned int64
	if err := json.Unmarshal(raw.Qty, &qtySigned); err != nil {
		return matching.AdmitRequest{}, "", errBadType("qty")
	}
	if qtySigned <= 0 {
		return matching.AdmitRequest{}, "", errBadValue("qty")
	}

	if kind != matching.Market && raw.Price <= 0 {
		return matching.AdmitRequest{}, "", errBadValue("price")
	}

	return matching.AdmitRequest{
		Account: raw.Account,
		Side:    side,
		Type:    kind,
		Qty:     uint64(qtySigned),
		Price:   raw.Price,
	}, raw.Account, nil
}
