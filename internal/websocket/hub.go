package websocket

import (
	"encoding/json"
	"sync"

	"github.com/vendsight/vendsight-backend/pkg/logger"
)

// Hub tracks connected dashboard sessions per user and fans import
// progress out to them. A user may have several tabs open, so each
// user id maps to a list of clients.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			if list, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(list))
				for _, c := range list {
					if c != client {
						newList = append(newList, c)
					}
				}
				removed = len(newList) < len(list)
				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
			}
			// ReadPump and SendToUser can both unregister the same
			// client; only the call that removed it closes the channel
			if removed {
				close(client.Send)
			}
			h.mu.Unlock()
			if removed {
				logger.Debug("WebSocket client unregistered", map[string]interface{}{
					"user_id": client.UserID,
				})
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser delivers a JSON payload to every open session of the user.
// Slow sessions are disconnected rather than blocking the sender.
func (h *Hub) SendToUser(userID uint, payload interface{}) {
	message, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode WebSocket payload", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userID] {
		select {
		case client.Send <- message:
		default:
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}
