// Package ws broadcasts task lifecycle events to connected websocket
// clients so dashboards can follow the work queue live.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskguardian/internal/models"
	"taskguardian/pkg/logger"
)

// Event is a task lifecycle notification. Action is one of "created",
// "status_changed", "assigned", "deleted".
type Event struct {
	Action string      `json:"action"`
	Task   models.Task `json:"task"`
}

// Client is one websocket subscriber. The mutex serializes writes,
// which the websocket connection does not allow concurrently.
type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

// Hub fans events out to all registered clients.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Events     chan Event
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Events:     make(chan Event, 64),
	}
}

// Publish queues an event without blocking the request that caused it;
// if the buffer is full the event is dropped and logged.
func (h *Hub) Publish(action string, task models.Task) {
	select {
	case h.Events <- Event{Action: action, Task: task}:
	default:
		logger.SystemLogger.Warn("Dropping task event, hub buffer full",
			zap.String("action", action),
			zap.Int("task_id", task.ID),
		)
	}
}

// Run owns the client set; it must be the only goroutine touching it.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case event := <-h.Events:
			payload, err := json.Marshal(event)
			if err != nil {
				logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
				continue
			}
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, payload)
				client.Mu.Unlock()
				if err != nil {
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
