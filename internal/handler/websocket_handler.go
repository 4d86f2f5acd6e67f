// internal/handler/websocket_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"label-service/internal/model"
	"label-service/internal/utils"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	statusWait   = 30 * time.Second
)

// StatusSource reports the status of every configured printer
type StatusSource interface {
	Status(ctx context.Context) map[string]*model.PrinterStatus
}

// WebSocketHandler streams printer status snapshots and job events
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	status      StatusSource
	eventBus    *EventBus
	events      <-chan model.Event
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a handler forwarding every bus event to connected clients
func NewWebSocketHandler(status StatusSource, eventBus *EventBus, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	handler := &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		connections: NewConnectionManager(),
		status:      status,
		eventBus:    eventBus,
		events:      eventBus.Subscribe(),
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}

	go handler.forwardEvents()

	return handler
}

// originChecker allows same-host requests, requests without an Origin header
// and the configured origins
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin] {
			return true
		}

		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// HandleStatusStream upgrades the request and streams events
// @Summary Printer status stream
// @Description WebSocket sending a status snapshot on connect, then job events and periodic snapshots
// @Tags Status
// @Router /ws/status [get]
func (h *WebSocketHandler) HandleStatusStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Status stream client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	go h.handleClientWrite(client)
	go h.handleClientRead(client)
	go h.sendSnapshot(client)
}

// Close stops forwarding and disconnects every client
func (h *WebSocketHandler) Close() {
	h.eventBus.Unsubscribe(h.events)
	h.connections.CloseAll()
}

// forwardEvents broadcasts bus events until the subscription closes
func (h *WebSocketHandler) forwardEvents() {
	for event := range h.events {
		message, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to encode event", zap.Error(err))
			continue
		}
		h.connections.Broadcast(message)
	}
}

// sendSnapshot queries every printer and sends the result to one client
func (h *WebSocketHandler) sendSnapshot(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWait)
	defer cancel()

	h.sendEvent(client, model.Event{
		Type:      model.EventTypeStatus,
		Status:    h.status.Status(ctx),
		Timestamp: time.Now().UTC(),
	})
}

func (h *WebSocketHandler) sendEvent(client *Client, event interface{}) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.Error(err))
		return
	}

	if !h.connections.Enqueue(client, message) {
		h.logger.Debug("Dropped message for client", zap.String("client_id", client.ID))
	}
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
		h.logger.Info("Status stream client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			return
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.logger.Warn("Failed to parse WebSocket message",
				zap.Error(err),
				zap.String("client_id", client.ID),
			)
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Error("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleClientMessage handles incoming client messages
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "refresh":
		go h.sendSnapshot(client)
	case "ping":
		h.sendEvent(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now().UTC(),
		})
	default:
		h.logger.Warn("Unknown message type",
			zap.String("type", message.Type),
			zap.String("client_id", client.ID),
		)
	}
}
