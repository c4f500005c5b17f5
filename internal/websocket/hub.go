// Package websocket streams calculation job progress to connected browsers.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Message type constants
const (
	TypeConnection  = "connection"
	TypeJobStatus   = "job:status"
	TypeJobProgress = "job:progress"
	TypeJobComplete = "job:complete"
	TypeJobError    = "job:error"
)

// ClientGauge tracks the connected client count. Satisfied by
// prometheus.Gauge.
type ClientGauge interface {
	Inc()
	Dec()
}

type noopGauge struct{}

func (noopGauge) Inc() {}
func (noopGauge) Dec() {}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger
	gauge  ClientGauge

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithClientGauge reports the connected client count to the given gauge
func WithClientGauge(gauge ClientGauge) HubOption {
	return func(h *Hub) {
		if gauge != nil {
			h.gauge = gauge
		}
	}
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		gauge:      noopGauge{},
		quit:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start starts the hub's main loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()
			h.gauge.Inc()

			h.logger.Info("client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			connMsg, err := json.Marshal(map[string]interface{}{
				"type": TypeConnection,
				"data": map[string]interface{}{
					"status":    "connected",
					"client_id": client.id,
				},
				"timestamp": time.Now().Format(time.RFC3339),
			})
			if err == nil {
				select {
				case client.send <- connMsg:
				default:
					h.logger.Warn("connection message dropped, client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()
				h.gauge.Dec()

				h.logger.Info("client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
					h.messagesSent++
				default:
					// Slow consumer, drop the connection
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						close(client.send)
						delete(h.clients, client)
						h.gauge.Dec()
					}
					h.mu.Unlock()
					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
		}
	}
}

// BroadcastJobStatus sends a job status change to all connected clients
func (h *Hub) BroadcastJobStatus(jobID, status string) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeJobStatus,
		"data": map[string]interface{}{
			"job_id": jobID,
			"status": status,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// BroadcastJobProgress sends a per-store progress update
func (h *Hub) BroadcastJobProgress(jobID, storeID string, completed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}
	h.broadcastJSON(map[string]interface{}{
		"type": TypeJobProgress,
		"data": map[string]interface{}{
			"job_id":     jobID,
			"store_id":   storeID,
			"completed":  completed,
			"total":      total,
			"percentage": percentage,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// BroadcastJobComplete sends a completion notice with the store count
func (h *Hub) BroadcastJobComplete(jobID string, stores int) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeJobComplete,
		"data": map[string]interface{}{
			"job_id": jobID,
			"stores": stores,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// BroadcastJobError sends a failure notice
func (h *Hub) BroadcastJobError(jobID, message string) {
	h.broadcastJSON(map[string]interface{}{
		"type": TypeJobError,
		"data": map[string]interface{}{
			"job_id":  jobID,
			"message": message,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Hub) broadcastJSON(message map[string]interface{}) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("error marshaling message", slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- jsonData:
	default:
		h.logger.Warn("broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		h.gauge.Dec()
	}
}
