package sse

import (
	"time"

	"github.com/valvequote/quote_api/internal/models"
)

// QuoteNotifier is the interface services use to emit quote events.
type QuoteNotifier interface {
	NotifyQuoteCreated(q *models.Quote)
	NotifyQuoteStatusChanged(q *models.Quote)
	NotifyQuoteRepriced(q *models.Quote)
	NotifyQuoteArchived(q *models.Quote)
}

// HubNotifier implements QuoteNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyQuoteCreated(q *models.Quote) {
	n.emit(EventQuoteCreated, q)
}

func (n *HubNotifier) NotifyQuoteStatusChanged(q *models.Quote) {
	n.emit(EventQuoteStatusChanged, q)
}

func (n *HubNotifier) NotifyQuoteRepriced(q *models.Quote) {
	n.emit(EventQuoteRepriced, q)
}

func (n *HubNotifier) NotifyQuoteArchived(q *models.Quote) {
	n.emit(EventQuoteArchived, q)
}

func (n *HubNotifier) emit(eventType EventType, q *models.Quote) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(quoteToEvent(eventType, q, n.now()))
}

func quoteToEvent(eventType EventType, q *models.Quote, at time.Time) *QuoteEvent {
	ev := &QuoteEvent{
		Event:       eventType,
		QuoteNumber: q.QuoteNumber,
		CustomerID:  q.CustomerID,
		Status:      string(q.Status),
		Total:       q.Total,
		IsArchived:  q.IsArchived,
		CreatedBy:   q.CreatedBy,
		Timestamp:   at,
	}
	if q.PricingMode != nil {
		mode := string(*q.PricingMode)
		ev.PricingMode = &mode
	}
	return ev
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyQuoteCreated(q *models.Quote)       {}
func (n *NopNotifier) NotifyQuoteStatusChanged(q *models.Quote) {}
func (n *NopNotifier) NotifyQuoteRepriced(q *models.Quote)      {}
func (n *NopNotifier) NotifyQuoteArchived(q *models.Quote)      {}
