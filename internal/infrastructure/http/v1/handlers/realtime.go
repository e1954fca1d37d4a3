package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	appctx "vendra/internal/core/context"
	"vendra/internal/core/id"
	"vendra/internal/domain/realtime"
	"vendra/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured in production
	},
}

// inboundMessage is a client-to-server dashboard frame.
type inboundMessage struct {
	Type     string `json:"type"`
	SellerID string `json:"sellerId,omitempty"`
}

const (
	inboundSubscribe   = "subscribe"
	inboundUnsubscribe = "unsubscribe"
	inboundPing        = "ping"
)

// RealtimeHandler handles dashboard WebSocket connections.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new realtime handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Dashboard handles WebSocket connections from dashboard clients.
// GET /ws/dashboard
// Sellers are auto-subscribed to their own room; admins subscribe
// explicitly to the seller rooms they watch.
func (h *RealtimeHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	user := appctx.GetUser(ctx)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(ctx, "websocket upgrade failed", "error", err, "ip", c.ClientIP())
		return
	}

	client := &realtime.Client{
		ID:          uuid.New().String(),
		IsAdmin:     user.IsAdmin,
		Send:        make(chan []byte, 64),
		ConnectedAt: time.Now(),
	}
	if parsed, err := id.Parse(user.UserID); err == nil {
		client.UserID = parsed
	}
	if user.SellerID != "" {
		if parsed, err := id.Parse(user.SellerID); err == nil {
			client.SellerID = parsed
		}
	}

	detached := appctx.Detach(ctx)
	h.hub.Register(detached, client)

	if !client.IsAdmin && !id.IsNil(client.SellerID) {
		if err := h.hub.Subscribe(detached, client, client.SellerID); err == nil {
			h.hub.PublishSnapshot(detached, client.SellerID)
		}
	}

	go h.writePump(detached, client, conn)
	h.readPump(detached, client, conn)
}

// readPump consumes subscription commands until the connection drops.
func (h *RealtimeHandler) readPump(ctx context.Context, client *realtime.Client, conn *websocket.Conn) {
	defer func() {
		h.hub.Unregister(ctx, client)
		conn.Close()
	}()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn(ctx, "dashboard websocket read error",
					"error", err, "client_id", client.ID)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn(ctx, "unparseable dashboard message",
				"error", err, "client_id", client.ID)
			continue
		}

		switch msg.Type {
		case inboundSubscribe:
			h.handleSubscribe(ctx, client, msg.SellerID)
		case inboundUnsubscribe:
			if sellerID, err := id.Parse(msg.SellerID); err == nil {
				h.hub.Unsubscribe(client, sellerID)
			}
		case inboundPing:
			h.send(client, &realtime.Message{Type: realtime.MsgTypePong, Timestamp: time.Now().Unix()})
		default:
			logger.Warn(ctx, "unknown dashboard message type",
				"type", msg.Type, "client_id", client.ID)
		}
	}
}

func (h *RealtimeHandler) handleSubscribe(ctx context.Context, client *realtime.Client, rawSellerID string) {
	sellerID, err := id.Parse(rawSellerID)
	if err != nil {
		h.sendError(client, "invalid sellerId")
		return
	}
	if err := h.hub.Subscribe(ctx, client, sellerID); err != nil {
		h.sendError(client, err.Error())
		return
	}
	h.hub.PublishSnapshot(ctx, sellerID)
}

// writePump drains the client's send channel to the socket.
func (h *RealtimeHandler) writePump(ctx context.Context, client *realtime.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn(ctx, "dashboard websocket write failed",
					"error", err, "client_id", client.ID)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *RealtimeHandler) send(client *realtime.Client, msg *realtime.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

func (h *RealtimeHandler) sendError(client *realtime.Client, reason string) {
	h.send(client, &realtime.Message{
		Type:      realtime.MsgTypeError,
		Timestamp: time.Now().Unix(),
		Data:      gin.H{"reason": reason},
	})
}
