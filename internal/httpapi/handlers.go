package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"obex/internal/auth"
	"obex/internal/matching"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusAndMessage(err)
	writeJSON(w, status, errResp(msg))
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, heartbeatResponse{OK: true, Error: ""})
}

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	venues := s.reg.Venues()
	sort.Strings(venues)
	out := make([]venueListing, 0, len(venues))
	for _, v := range venues {
		out = append(out, venueListing{Name: v + " Exchange", Venue: v, State: "open"})
	}
	writeJSON(w, 200, venuesResponse{OK: true, Venues: out})
}

func (s *Server) handleVenueHeartbeat(w http.ResponseWriter, r *http.Request) {
	venue := mux.Vars(r)["venue"]
	if !s.reg.HasVenue(venue) {
		writeError(w, errNoSuchVenue(venue))
		return
	}
	writeJSON(w, 200, venueHeartbeatResponse{OK: true, Venue: venue})
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	venue := mux.Vars(r)["venue"]
	symbols, ok := s.reg.Stocks(venue)
	if !ok {
		writeError(w, errNoSuchVenue(venue))
		return
	}
	sort.Strings(symbols)
	out := make([]symbolListing, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, symbolListing{Symbol: sym, Name: sym + " Inc"})
	}
	writeJSON(w, 200, stocksResponse{OK: true, Symbols: out})
}

func (s *Server) ensureBook(w http.ResponseWriter, venue, stock string) (bool, *matching.Book) {
	book, err := s.reg.Ensure(venue, stock)
	if err != nil {
		s.metrics.RecordRejection("book_limit")
		writeError(w, errBookLimit())
		return false, nil
	}
	s.metrics.SetBooksOpen(s.reg.Count())
	return true, book
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	venue, stock := vars["venue"], vars["stock"]
	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}
	bids, asks := book.GetBook()
	writeJSON(w, 200, bookResponse{
		OK: true, Venue: venue, Symbol: stock,
		Bids: depthDTOs(bids, true), Asks: depthDTOs(asks, false),
		Ts: nowField(book),
	})
}

// nowField surfaces the book's quote timestamp for the depth snapshot,
// matching disorderBook's practice of stamping every response.
func nowField(book *matching.Book) string {
	return book.GetQuote().Timestamp
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	venue, stock := vars["venue"], vars["stock"]
	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}
	writeJSON(w, 200, quoteDTO(venue, stock, book.GetQuote()))
}

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	venue, stock := vars["venue"], vars["stock"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errBadJSON())
		return
	}
	req, account, apiErr := decodeAdmitRequest(body, venue, stock)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	if err := s.gate.Authorize(account, apiKeyFromHeaders(r)); err != nil {
		writeError(w, authToAPIError(err))
		return
	}

	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}

	status, err := book.Admit(req)
	if err != nil {
		s.metrics.RecordRejection("bad_value")
		writeError(w, errBadValue("qty/price"))
		return
	}
	s.metrics.RecordAdmit(req.Type, req.Side, len(status.Fills))
	writeJSON(w, 200, orderDTO(status))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	venue, stock := vars["venue"], vars["stock"]
	id, perr := strconv.ParseUint(vars["id"], 10, 64)
	if perr != nil {
		writeError(w, errNoSuchOrder())
		return
	}

	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}

	account, found := book.AccountFromOrderID(id)
	if !found {
		writeError(w, errNoSuchOrder())
		return
	}
	if err := s.gate.Authorize(account, apiKeyFromHeaders(r)); err != nil {
		writeError(w, authToAPIError(err))
		return
	}

	status, err := book.GetStatus(id)
	if err != nil {
		writeError(w, errNoSuchOrder())
		return
	}
	writeJSON(w, 200, orderDTO(status))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	venue, stock := vars["venue"], vars["stock"]
	id, perr := strconv.ParseUint(vars["id"], 10, 64)
	if perr != nil {
		writeError(w, errNoSuchOrder())
		return
	}

	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}

	account, found := book.AccountFromOrderID(id)
	if !found {
		writeError(w, errNoSuchOrder())
		return
	}
	if err := s.gate.Authorize(account, apiKeyFromHeaders(r)); err != nil {
		writeError(w, authToAPIError(err))
		return
	}

	before, _ := book.GetStatus(id)
	status, err := book.Cancel(id)
	if err != nil {
		writeError(w, errNoSuchOrder())
		return
	}
	if before.Open && !status.Open {
		s.metrics.RecordCancel()
	}
	writeJSON(w, 200, orderDTO(status))
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	if !s.excess {
		writeError(w, errDisabled())
		return
	}
	vars := mux.Vars(r)
	venue, account := vars["venue"], vars["account"]

	if err := s.gate.Authorize(account, apiKeyFromHeaders(r)); err != nil {
		writeError(w, authToAPIError(err))
		return
	}

	var all []matching.OrderStatus
	for _, book := range s.reg.Books(venue) {
		all = append(all, book.GetAllOrders(account)...)
	}
	writeJSON(w, 200, ordersDTO(venue, "", all))
}

func (s *Server) handleAllOrdersForStock(w http.ResponseWriter, r *http.Request) {
	if !s.excess {
		writeError(w, errDisabled())
		return
	}
	vars := mux.Vars(r)
	venue, account, stock := vars["venue"], vars["account"], vars["stock"]

	if err := s.gate.Authorize(account, apiKeyFromHeaders(r)); err != nil {
		writeError(w, authToAPIError(err))
		return
	}

	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}
	writeJSON(w, 200, ordersDTO(venue, stock, book.GetAllOrders(account)))
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	venue, stock := vars["venue"], vars["stock"]
	if !s.reg.HasVenue(venue) {
		http.Error(w, "no such venue/stock", http.StatusNotFound)
		return
	}
	symbols, _ := s.reg.Stocks(venue)
	found := false
	for _, sym := range symbols {
		if sym == stock {
			found = true
			break
		}
	}
	if !found {
		http.Error(w, "no such venue/stock", http.StatusNotFound)
		return
	}

	ok, book := s.ensureBook(w, venue, stock)
	if !ok {
		return
	}
	quote := book.GetQuote()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !quote.HasLast {
		w.Write([]byte("<pre>No trading activity yet.</pre>"))
		return
	}
	rows := book.Positions()
	scores := make([]scoreRow, 0, len(rows))
	for _, pos := range rows {
		scores = append(scores, scoreRow{pos: pos, nav: pos.NAV(quote.LastPrice)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].nav > scores[j].nav })
	w.Write(renderScoreboard(venue, stock, quote, scores, s.gate.Enabled()))
}

// renderScoreboard mirrors original_source/disorderBook_main.py's scores():
// USD and NAV are whole dollars (cents floor-divided by 100, "$"-prefixed),
// and the current price is rendered to two decimal places.
func renderScoreboard(venue, stock string, quote matching.Quote, scores []scoreRow, authed bool) []byte {
	buf := []byte(fmt.Sprintf("<pre>%s %s\nCurrent price: %s\n\n", venue, stock, formatDollarsAndCents(quote.LastPrice)))
	buf = append(buf, "Account         USD         Shares     Pos.min    Pos.max    NAV\n"...)
	for _, row := range scores {
		p := row.pos
		if authed {
			buf = append(buf, fmt.Sprintf("%-15s [hidden]    [hidden]   %-10d %-10d $%d\n",
				p.Account, p.Min, p.Max, floorDiv100(row.nav))...)
		} else {
			buf = append(buf, fmt.Sprintf("%-15s $%-10d %-10d %-10d %-10d $%d\n",
				p.Account, floorDiv100(p.Cash), p.Shares, p.Min, p.Max, floorDiv100(row.nav))...)
		}
	}
	buf = append(buf, "</pre>"...)
	return buf
}

// floorDiv100 divides cents by 100 rounding toward negative infinity,
// matching Python's "//" operator used throughout the original scoreboard.
func floorDiv100(cents int64) int64 {
	q := cents / 100
	if cents%100 != 0 && cents < 0 {
		q--
	}
	return q
}

// formatDollarsAndCents renders cents as "$D.CC", matching the original's
// "${:.2f}".format(currentprice / 100).
func formatDollarsAndCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// apiKeyFromHeaders extracts the API key from the request's headers via
// auth.KeyFromHeaders, preferring the Starfighter spelling over the legacy
// Stockfighter one (spec.md §4.7).
func apiKeyFromHeaders(r *http.Request) string {
	return auth.KeyFromHeaders(r.Header.Get)
}

func authToAPIError(err error) error {
	if errors.Is(err, auth.ErrNoAPIKey) {
		return errNoAPIKey()
	}
	return errAuthFailure()
}
