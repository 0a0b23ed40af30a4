package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EventType is the SSE event name written on the wire.
type EventType string

const (
	EventQuoteCreated       EventType = "quote.created"
	EventQuoteStatusChanged EventType = "quote.status_changed"
	EventQuoteRepriced      EventType = "quote.repriced"
	EventQuoteArchived      EventType = "quote.archived"
)

const clientBuffer = 64

// QuoteEvent is the payload broadcast to SSE clients. Amounts are domestic.
type QuoteEvent struct {
	Event       EventType       `json:"event"`
	QuoteNumber string          `json:"quoteNumber"`
	CustomerID  int             `json:"customerId"`
	Status      string          `json:"status"`
	PricingMode *string         `json:"pricingMode,omitempty"`
	Total       decimal.Decimal `json:"total"`
	IsArchived  bool            `json:"isArchived"`
	CreatedBy   string          `json:"createdBy"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Subscription narrows the events a client receives. Zero values match all.
type Subscription struct {
	CustomerID  int
	QuoteNumber string
}

func (s Subscription) matches(ev *QuoteEvent) bool {
	if s.CustomerID != 0 && ev.CustomerID != s.CustomerID {
		return false
	}
	if s.QuoteNumber != "" && ev.QuoteNumber != s.QuoteNumber {
		return false
	}
	return true
}

// Message is one encoded event queued for a client.
type Message struct {
	Event EventType
	Data  []byte
}

// Client is a connected stream.
type Client struct {
	ID     string
	Sub    Subscription
	Events chan Message
}

// Hub fans quote events out to the connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a client that receives the events matching sub.
func (h *Hub) Register(clientID string, sub Subscription) *Client {
	c := &Client{ID: clientID, Sub: sub, Events: make(chan Message, clientBuffer)}

	h.mu.Lock()
	h.clients[clientID] = c
	total := len(h.clients)
	h.mu.Unlock()

	log.Info().
		Str("client_id", clientID).
		Int("customer_id", sub.CustomerID).
		Str("quote_number", sub.QuoteNumber).
		Int("total_clients", total).
		Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	c, ok := h.clients[clientID]
	if ok {
		close(c.Events)
		delete(h.clients, clientID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		log.Info().Str("client_id", clientID).Int("total_clients", total).Msg("SSE client disconnected")
	}
}

// Broadcast delivers event to every matching client and returns how many
// received it. A client whose buffer is full misses the event.
func (h *Hub) Broadcast(event *QuoteEvent) int {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("quote_number", event.QuoteNumber).Msg("Failed to marshal quote event")
		return 0
	}
	msg := Message{Event: event.Event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		if !c.Sub.matches(event) {
			continue
		}
		select {
		case c.Events <- msg:
			delivered++
		default:
			log.Warn().Str("client_id", c.ID).Str("event", string(event.Event)).Msg("SSE client buffer full, dropping event")
		}
	}
	return delivered
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
