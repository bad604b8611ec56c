// Package eventbus implements the topic-addressed pub/sub fan-out of
// execution and quote events to market-data subscribers (spec component
// C6). It is grounded on the teacher's worker-pool/tomb lifecycle pattern
// (internal/worker.go, internal/server.go) generalized from a fixed TCP
// connection pool into an arbitrary number of per-topic subscriptions.
package eventbus

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"obex/internal/matching"
)

// Topic addresses one of the four fan-out shapes of spec.md §4.5.
type Topic struct {
	Venue   string
	Stock   string // "" for venue-wide topics
	Account string // "" for stock-wide topics
}

// EventKind distinguishes the two event shapes carried over the bus.
type EventKind int

const (
	FillEvent EventKind = iota
	QuoteEvent
)

// Event is a single fan-out message. Exactly one of Fill/Quote fields is
// populated, selected by Kind.
type Event struct {
	ID      string
	Kind    EventKind
	Venue   string
	Stock   string
	Account string // set for FillEvent; empty for QuoteEvent

	Status      matching.OrderStatus
	Fill        matching.Fill
	StandingQty uint64

	Quote matching.Quote
}

// DefaultBufferSize is each subscriber's bounded channel capacity. A slow
// subscriber never blocks the matching critical section: once full, the
// oldest undelivered event for that subscriber is dropped to make room
// (spec.md §4.5/§5).
const DefaultBufferSize = 64

type subscription struct {
	id    string
	topic Topic
	ch    chan Event
}

// Bus is a multi-producer, multi-consumer event bus. Publication never
// blocks the caller: each subscriber channel accepts synchronously into a
// bounded buffer, evicting its own oldest entry on overflow.
type Bus struct {
	bufSize int
	log     zerolog.Logger
	t       *tomb.Tomb

	subscribe   chan subscription
	unsubscribe chan string
	publish     chan Event
}

// New constructs a bus supervised by t. Call Run to start its dispatch
// loop; closing t stops delivery and closes every subscriber channel.
func New(t *tomb.Tomb, bufSize int, log zerolog.Logger) *Bus {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Bus{
		bufSize:     bufSize,
		log:         log,
		t:           t,
		subscribe:   make(chan subscription),
		unsubscribe: make(chan string),
		publish:     make(chan Event, 256),
	}
}

// Run starts the bus's dispatch loop as a tomb-supervised goroutine. The
// loop itself never touches a book's critical section — it only owns the
// subscriber registry and per-subscriber delivery.
func (b *Bus) Run() {
	b.t.Go(func() error {
		subs := make(map[string]map[string]subscription) // topic key -> id -> sub
		for {
			select {
			case <-b.t.Dying():
				for _, byID := range subs {
					for _, s := range byID {
						close(s.ch)
					}
				}
				return nil
			case s := <-b.subscribe:
				key := topicKey(s.topic)
				if subs[key] == nil {
					subs[key] = make(map[string]subscription)
				}
				subs[key][s.id] = s
			case id := <-b.unsubscribe:
				for key, byID := range subs {
					if s, ok := byID[id]; ok {
						close(s.ch)
						delete(byID, id)
						if len(byID) == 0 {
							delete(subs, key)
						}
					}
				}
			case ev := <-b.publish:
				for _, key := range topicsFor(ev) {
					for _, s := range subs[key] {
						deliver(s.ch, ev, b.log)
					}
				}
			}
		}
	})
}

// deliver is a non-blocking send that drops the oldest queued event for
// this subscriber when its buffer is full, per the bounded-buffer-with-
// drop-oldest discipline of spec.md §4.5.
func deliver(ch chan Event, ev Event, log zerolog.Logger) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
		log.Debug().Msg("subscriber buffer full, dropping oldest event")
	default:
	}
	select {
	case ch <- ev:
	default:
		// Raced with another publisher; give up silently rather than block.
	}
}

// Subscribe registers interest in one topic and returns an id (for later
// Unsubscribe) and the channel events arrive on.
func (b *Bus) Subscribe(topic Topic) (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, b.bufSize)
	select {
	case b.subscribe <- subscription{id: id, topic: topic, ch: ch}:
	case <-b.t.Dying():
		close(ch)
	}
	return id, ch
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id string) {
	select {
	case b.unsubscribe <- id:
	case <-b.t.Dying():
	}
}

// Fill satisfies matching.EventSink: it fans a trade out to the four
// matching topics (spec.md §4.4.6).
func (b *Bus) Fill(venue, stock, account string, status matching.OrderStatus, fill matching.Fill, standingQty uint64) {
	ev := Event{
		ID: uuid.New().String(), Kind: FillEvent,
		Venue: venue, Stock: stock, Account: account,
		Status: status, Fill: fill, StandingQty: standingQty,
	}
	b.publishNonBlocking(ev)
}

// QuoteChanged satisfies matching.EventSink.
func (b *Bus) QuoteChanged(venue, stock string, q matching.Quote) {
	ev := Event{ID: uuid.New().String(), Kind: QuoteEvent, Venue: venue, Stock: stock, Quote: q}
	b.publishNonBlocking(ev)
}

// publishNonBlocking hands the event to the dispatch loop without ever
// suspending the caller — publication must not block the matching
// critical section (spec.md §5). The publish channel is generously
// buffered; if it is ever full we drop the event rather than stall.
func (b *Bus) publishNonBlocking(ev Event) {
	select {
	case b.publish <- ev:
	default:
		b.log.Warn().Str("venue", ev.Venue).Str("stock", ev.Stock).Msg("event bus saturated, dropping event")
	}
}

func topicKey(t Topic) string {
	return t.Venue + "\x00" + t.Stock + "\x00" + t.Account
}

// topicsFor returns the topic keys an event fans out to: (venue),
// (venue,stock), (venue,account), (venue,stock,account) — but only the
// ones meaningful for this event (quote events carry no account).
func topicsFor(ev Event) []string {
	keys := []string{
		topicKey(Topic{Venue: ev.Venue}),
		topicKey(Topic{Venue: ev.Venue, Stock: ev.Stock}),
	}
	if ev.Account != "" {
		keys = append(keys,
			topicKey(Topic{Venue: ev.Venue, Account: ev.Account}),
			topicKey(Topic{Venue: ev.Venue, Stock: ev.Stock, Account: ev.Account}),
		)
	}
	return keys
}
