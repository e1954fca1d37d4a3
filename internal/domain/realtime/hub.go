// Package realtime fans dashboard updates out to websocket subscribers.
// Subscribers join per-seller rooms; delivery is best effort and a slow
// client never blocks a publish.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	appctx "vendra/internal/core/context"
	"vendra/internal/core/id"
	"vendra/pkg/logger"
)

// Message is a single outbound frame.
type Message struct {
	Type      string `json:"type"`
	SellerID  string `json:"sellerId,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

const (
	MsgTypeSnapshot = "snapshot"
	MsgTypeError    = "error"
	MsgTypePong     = "pong"
)

// Client is a connected dashboard session. Send is drained by the
// connection's write pump; frames are dropped when it backs up.
type Client struct {
	ID          string
	UserID      id.ID
	SellerID    id.ID
	IsAdmin     bool
	Send        chan []byte
	ConnectedAt time.Time
}

// Observer receives hub gauge and counter events for instrumentation.
type Observer interface {
	ClientConnected()
	ClientDisconnected()
	BroadcastSent(subscribers int)
	BroadcastDropped()
	TickObserved(duration time.Duration)
}

// Snapshotter builds the per-seller payload pushed into a room.
type Snapshotter interface {
	Snapshot(ctx context.Context, sellerID id.ID) (any, error)
}

// Hub tracks clients and their room subscriptions. A room is identified by
// seller id; one client may subscribe to many rooms (admins) or only its
// own (sellers).
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]map[id.ID]struct{}
	rooms   map[id.ID]map[*Client]struct{}

	snapshotter Snapshotter
	observer    Observer
}

// NewHub creates a Hub. snapshotter and observer may be nil; without a
// snapshotter the periodic tick is a no-op.
func NewHub(snapshotter Snapshotter, observer Observer) *Hub {
	return &Hub{
		clients:     make(map[*Client]map[id.ID]struct{}),
		rooms:       make(map[id.ID]map[*Client]struct{}),
		snapshotter: snapshotter,
		observer:    observer,
	}
}

// Register adds a connected client with no subscriptions yet.
func (h *Hub) Register(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c] = make(map[id.ID]struct{})
	h.mu.Unlock()

	logger.Info(ctx, "dashboard client connected",
		"client_id", c.ID,
		"user_id", c.UserID,
		"is_admin", c.IsAdmin)
	if h.observer != nil {
		h.observer.ClientConnected()
	}
}

// Unregister removes a client from every room and closes its send channel.
// Safe to call more than once.
func (h *Hub) Unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	subs, ok := h.clients[c]
	if ok {
		for sellerID := range subs {
			h.dropFromRoom(sellerID, c)
		}
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	logger.Info(ctx, "dashboard client disconnected", "client_id", c.ID)
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
}

// Subscribe joins the client to a seller room. Non-admin clients may only
// join their own room.
func (h *Hub) Subscribe(ctx context.Context, c *Client, sellerID id.ID) error {
	if !c.IsAdmin && c.SellerID != sellerID {
		return ErrRoomForbidden
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.clients[c]
	if !ok {
		return ErrClientGone
	}
	subs[sellerID] = struct{}{}
	room, ok := h.rooms[sellerID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[sellerID] = room
	}
	room[c] = struct{}{}
	return nil
}

// Unsubscribe removes the client from a seller room.
func (h *Hub) Unsubscribe(c *Client, sellerID id.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.clients[c]; ok {
		delete(subs, sellerID)
	}
	h.dropFromRoom(sellerID, c)
}

// dropFromRoom must be called with mu held.
func (h *Hub) dropFromRoom(sellerID id.ID, c *Client) {
	room, ok := h.rooms[sellerID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, sellerID)
	}
}

// Publish sends a message to every subscriber of the seller's room.
// Clients whose send buffer is full are skipped.
func (h *Hub) Publish(ctx context.Context, sellerID id.ID, msg *Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Error(ctx, "marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	room := h.rooms[sellerID]
	sent := 0
	for c := range room {
		select {
		case c.Send <- payload:
			sent++
		default:
			if h.observer != nil {
				h.observer.BroadcastDropped()
			}
		}
	}
	h.mu.RUnlock()

	if sent > 0 && h.observer != nil {
		h.observer.BroadcastSent(sent)
	}
}

// SetSnapshotter installs the snapshot source after construction. The hub
// and the services it notifies reference each other, so wiring is
// two-phase: hub first, then the feed over the built services.
func (h *Hub) SetSnapshotter(s Snapshotter) {
	h.mu.Lock()
	h.snapshotter = s
	h.mu.Unlock()
}

func (h *Hub) getSnapshotter() Snapshotter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotter
}

// PublishSnapshot builds and publishes a fresh snapshot for one seller.
// Rooms with no subscribers are skipped without touching storage.
func (h *Hub) PublishSnapshot(ctx context.Context, sellerID id.ID) {
	snapshotter := h.getSnapshotter()
	if snapshotter == nil || h.SubscriberCount(sellerID) == 0 {
		return
	}
	data, err := snapshotter.Snapshot(ctx, sellerID)
	if err != nil {
		logger.Warn(ctx, "snapshot build failed", "seller_id", sellerID, "error", err)
		return
	}
	h.Publish(ctx, sellerID, &Message{
		Type:      MsgTypeSnapshot,
		SellerID:  sellerID.String(),
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

// SellerChanged pushes a snapshot asynchronously after a data change.
// It satisfies the change-notifier hooks of the metrics and distribution
// services; the caller's request must not wait on the fan-out.
func (h *Hub) SellerChanged(ctx context.Context, sellerID id.ID) {
	detached := appctx.Detach(ctx)
	go h.PublishSnapshot(detached, sellerID)
}

// ActiveRooms returns seller ids that currently have subscribers.
func (h *Hub) ActiveRooms() []id.ID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]id.ID, 0, len(h.rooms))
	for sellerID := range h.rooms {
		ids = append(ids, sellerID)
	}
	return ids
}

// SubscriberCount returns the number of clients in a seller's room.
func (h *Hub) SubscriberCount(sellerID id.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sellerID])
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run pushes periodic snapshots to all active rooms until ctx is done.
// Sellers without subscribers cost nothing per tick.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info(ctx, "realtime hub started", "tick_interval", interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "realtime hub stopped")
			return
		case <-ticker.C:
			start := time.Now()
			for _, sellerID := range h.ActiveRooms() {
				h.PublishSnapshot(ctx, sellerID)
			}
			if h.observer != nil {
				h.observer.TickObserved(time.Since(start))
			}
		}
	}
}

// Hub subscription errors.
var (
	ErrRoomForbidden = &HubError{Code: "ROOM_FORBIDDEN", Message: "not allowed to subscribe to this seller"}
	ErrClientGone    = &HubError{Code: "CLIENT_GONE", Message: "client is not registered"}
)

// HubError represents a hub subscription error.
type HubError struct {
	Code    string
	Message string
}

func (e *HubError) Error() string {
	return e.Message
}
