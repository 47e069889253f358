package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"ai-lawmatch-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const caseChannelPrefix = "triage_events:"

// CaseEvent is one progress update pushed to clients watching a case.
type CaseEvent struct {
	Type      string                 `json:"type"`
	CaseId    uuid.UUID              `json:"case_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewCaseEvent(eventType string, caseId uuid.UUID, data map[string]interface{}) CaseEvent {
	return CaseEvent{
		Type:      eventType,
		CaseId:    caseId,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Hub fans triage progress events out to websocket clients. Events travel
// through Redis pub/sub so any instance can serve the watcher regardless of
// which instance handled the triage turn.
type Hub struct {
	// Watching clients map: CaseID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

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
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.CaseID] = append(h.clients[client.CaseID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"case_id": client.CaseID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.CaseID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.CaseID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.CaseID]) == 0 {
					delete(h.clients, client.CaseID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish pushes a case event to every watcher. With Redis available the
// event goes through the per-case channel so other instances deliver it too;
// without Redis delivery stays local.
func (h *Hub) Publish(ctx context.Context, event CaseEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal case event", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		channel := fmt.Sprintf("%s%s", caseChannelPrefix, event.CaseId)
		if err := h.rdb.Publish(ctx, channel, data).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{
				"case_id": event.CaseId,
				"error":   err.Error(),
			})
			h.deliverLocal(event.CaseId, data)
		}
		return
	}

	h.deliverLocal(event.CaseId, data)
}

func (h *Hub) deliverLocal(caseId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[caseId]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Stalled reader: hand the client to Run, which removes it and
			// closes Send exactly once.
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"case_id": caseId})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.PSubscribe(ctx, caseChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		caseIdStr := msg.Channel[len(caseChannelPrefix):]
		caseId, err := uuid.Parse(caseIdStr)
		if err != nil {
			log.Printf("Redis channel parse error: %v", err)
			continue
		}
		h.deliverLocal(caseId, []byte(msg.Payload))
	}
}
