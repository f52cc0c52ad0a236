package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries balance pushes between instances so a user connected
// to instance A still hears about a redemption processed on instance B.
const redisChannel = "points_events"

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// snapshot returns the clients for one user, or every client when userID is
// nil. Callers deliver outside the lock; unregistering from inside a
// delivery loop while holding mu would deadlock against Run.
func (h *Hub) snapshot(userID *uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if userID != nil {
		return append([]*Client(nil), h.clients[*userID]...)
	}
	var all []*Client
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	return all
}

// deliver pushes raw bytes to each client. A full Send buffer means the
// reader is gone or stuck; the client is kicked and Run closes its channel.
func (h *Hub) deliver(targets []*Client, data []byte) {
	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func encodePush(msg dto.PointsPushMessage) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "points_update",
		"data": msg,
	})
	return data
}

// Broadcast sends a balance-affecting announcement to ALL connected clients.
func (h *Hub) Broadcast(msg dto.PointsPushMessage) {
	h.dispatch("*", nil, encodePush(msg))
}

// Send pushes to every device one user has open, here and on other instances.
func (h *Hub) Send(userID uuid.UUID, msg dto.PointsPushMessage) {
	h.dispatch(userID.String(), &userID, encodePush(msg))
}

// dispatch routes through Redis when available so each instance, this one
// included, delivers via its subscription exactly once. Without Redis, or
// when the publish fails, the push goes straight to local clients.
func (h *Hub) dispatch(target string, userID *uuid.UUID, data []byte) {
	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_user_id": target,
			"message":        json.RawMessage(data),
		})
		err := h.rdb.Publish(context.Background(), redisChannel, payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("Hub", "Redis publish failed, delivering locally only", map[string]interface{}{
			"error":  err.Error(),
			"target": target,
		})
	}
	h.deliver(h.snapshot(userID), data)
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes; each delivers to the users it holds locally
	// and ignores the rest. target_user_id "*" means broadcast.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			h.deliver(h.snapshot(nil), payload.Message)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliver(h.snapshot(&uid), payload.Message)
	}
}
