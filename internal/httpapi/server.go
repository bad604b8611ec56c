// Package httpapi is the external HTTP façade (spec component, "deliberately
// out of scope" per spec.md §1 but promoted to real code in SPEC_FULL.md
// §2/F1): URL routing, JSON envelope encode/decode, and status-code
// mapping around the matching engine. It owns no trading logic of its
// own — every handler is a thin adapter over registry.Registry,
// matching.Book and auth.Gate.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"obex/internal/auth"
	"obex/internal/metrics"
	"obex/internal/registry"
)

// Server bundles the façade's dependencies. It holds no mutable state of
// its own beyond what Registry/Gate/Metrics already own.
type Server struct {
	reg     *registry.Registry
	gate    *auth.Gate
	metrics *metrics.Metrics
	excess  bool
	log     zerolog.Logger
}

// New constructs the façade. excess toggles the all-orders endpoints that
// can return an unbounded amount of data (spec.md §6).
func New(reg *registry.Registry, gate *auth.Gate, m *metrics.Metrics, excess bool, log zerolog.Logger) *Server {
	return &Server{reg: reg, gate: gate, metrics: m, excess: excess, log: log}
}

// Router builds the gorilla/mux router exposing every route of spec.md §6
// plus the SPEC_FULL.md additions (scoreboard, metrics).
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.loggingMiddleware)

	api := r.PathPrefix("/ob/api").Subrouter()
	api.HandleFunc("/heartbeat", s.handleHeartbeat).Methods(http.MethodGet)
	api.HandleFunc("/venues", s.handleVenues).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/heartbeat", s.handleVenueHeartbeat).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/stocks", s.handleStocks).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/stocks/{stock}", s.handleOrderBook).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/stocks/{stock}/quote", s.handleQuote).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/stocks/{stock}/orders", s.handleAdmit).Methods(http.MethodPost)
	api.HandleFunc("/venues/{venue}/stocks/{stock}/orders/{id}", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/stocks/{stock}/orders/{id}", s.handleCancel).Methods(http.MethodDelete)
	api.HandleFunc("/venues/{venue}/stocks/{stock}/orders/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/venues/{venue}/accounts/{account}/orders", s.handleAllOrders).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/accounts/{account}/stocks/{stock}/orders", s.handleAllOrdersForStock).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venue}/stocks/{stock}/scores", s.handleScores).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}
