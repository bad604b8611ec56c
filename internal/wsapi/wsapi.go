// Package wsapi is the websocket market-data transport (spec component F2):
// it subscribes to the event bus on behalf of each connection and frames
// quote/execution events as JSON, mirroring Stockfighter's tickertape and
// executions streams. Grounded on the teacher's worker-pool/tomb lifecycle
// (internal/worker.go, internal/net/server.go), generalized from a fixed
// pool of TCP workers to one goroutine per websocket connection.
package wsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"obex/internal/eventbus"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server runs the websocket listener as its own HTTP server on a separate
// port, matching disorderBook's --ws-port flag (SPEC_FULL.md §7.3).
type Server struct {
	bus *eventbus.Bus
	log zerolog.Logger
}

// New constructs a websocket transport fed by bus.
func New(bus *eventbus.Bus, log zerolog.Logger) *Server {
	return &Server{bus: bus, log: log}
}

// Run serves the websocket endpoints until ctx is cancelled.
func (s *Server) Run(ctx context.Context, port int) error {
	r := mux.NewRouter()
	r.HandleFunc("/ob/api/ws/{account}/venues/{venue}/tickertape/stocks/{stock}", s.handleTickertape)
	r.HandleFunc("/ob/api/ws/{account}/venues/{venue}/tickertape", s.handleTickertapeVenue)
	r.HandleFunc("/ob/api/ws/{account}/venues/{venue}/executions/stocks/{stock}", s.handleExecutions)
	r.HandleFunc("/ob/api/ws/{account}/venues/{venue}/executions", s.handleExecutionsVenue)

	httpSrv := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleTickertape(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.stream(w, r, eventbus.Topic{Venue: vars["venue"], Stock: vars["stock"]})
}

func (s *Server) handleTickertapeVenue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.stream(w, r, eventbus.Topic{Venue: vars["venue"]})
}

func (s *Server) handleExecutions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.stream(w, r, eventbus.Topic{Venue: vars["venue"], Stock: vars["stock"], Account: vars["account"]})
}

func (s *Server) handleExecutionsVenue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.stream(w, r, eventbus.Topic{Venue: vars["venue"], Account: vars["account"]})
}

// wireEvent is the JSON frame sent over a connection. Exactly one of
// Quote/Fill is populated, matching the shape of the underlying
// eventbus.Event.
type wireEvent struct {
	OK     bool        `json:"ok"`
	Venue  string      `json:"venue"`
	Symbol string      `json:"symbol"`
	Quote  interface{} `json:"quote,omitempty"`
	Fill   interface{} `json:"fill,omitempty"`
}

// stream upgrades the connection, subscribes to topic, and relays every
// event as a JSON text frame until the client disconnects.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, topic eventbus.Topic) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id, events := s.bus.Subscribe(topic)
	defer s.bus.Unsubscribe(id)

	go drainReads(conn)

	for ev := range events {
		frame := eventFrame(ev)
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		data, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// drainReads discards client frames; Stockfighter's streams are
// server-to-client only, but the connection must still be read to notice
// client-initiated closes per gorilla/websocket's documented contract.
func drainReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func eventFrame(ev eventbus.Event) wireEvent {
	frame := wireEvent{OK: true, Venue: ev.Venue, Symbol: ev.Stock}
	switch ev.Kind {
	case eventbus.QuoteEvent:
		frame.Quote = ev.Quote
	case eventbus.FillEvent:
		frame.Fill = struct {
			Account string      `json:"account"`
			Order   interface{} `json:"order"`
			Price   int64       `json:"price"`
			Qty     uint64      `json:"qty"`
		}{Account: ev.Account, Order: ev.Status, Price: ev.Fill.Price, Qty: ev.Fill.Qty}
	}
	return frame
}
