package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

const (
	eventBuffer = 64
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
)

// ChangeFeed is satisfied by the store
type ChangeFeed interface {
	Subscribe(buffer int) (<-chan ports.ChangeEvent, func())
}

// EventHandler streams store change events over a websocket
type EventHandler struct {
	feed     ChangeFeed
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewEventHandler creates a new event handler. An empty origins list accepts
// any origin.
func NewEventHandler(feed ChangeFeed, allowedOrigins []string, logger *logger.Logger) *EventHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &EventHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
		logger: logger.WithComponent("events"),
	}
}

// Stream handles the change event websocket
// @Summary Stream store changes
// @Description Upgrade to a websocket that receives one JSON change event per store mutation
// @Tags events
// @Success 101 {object} ports.ChangeEvent
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) Stream(c echo.Context) error {
	// Subscribe first so no change made after the handshake is missed
	events, cancel := h.feed.Subscribe(eventBuffer)
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warnw("Websocket upgrade failed", "error", err, "ip", c.RealIP())
		return nil
	}
	defer conn.Close()

	h.logger.Infow("Event stream opened", "ip", c.RealIP())
	defer h.logger.Infow("Event stream closed", "ip", c.RealIP())

	// The read loop only services control frames and notices disconnects
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debugw("Event write failed", "error", err)
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
