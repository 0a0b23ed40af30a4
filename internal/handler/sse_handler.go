package handler

import (
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/sse"
	"github.com/valvequote/quote_api/internal/utils"
)

// SSEHandler streams quote events to connected dashboards.
type SSEHandler struct {
	hub          *sse.Hub
	pingInterval time.Duration
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, pingInterval: 30 * time.Second}
}

// Stream handles GET /v1/admin/sse?token=<jwt>[&customerId=][&quoteNumber=]
// EventSource cannot set headers, so the JWT travels as a query parameter.
func (h *SSEHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Error(c, 401, "UNAUTHORIZED", "Missing token query parameter")
		return
	}
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	sub := sse.Subscription{QuoteNumber: c.Query("quoteNumber")}
	if v := c.Query("customerId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 1 {
			utils.Error(c, 400, "INVALID_CUSTOMER_ID", "Invalid customer ID")
			return
		}
		sub.CustomerID = id
	}

	clientID := "quotes-" + uuid.New().String()[:8]

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := h.hub.Register(clientID, sub)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("email", claims.Email).Msg("Quote SSE stream started")

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(string(msg.Event), string(msg.Data))
			return true
		case <-ping.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
