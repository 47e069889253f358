package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(caseId uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[caseId])
}

func TestPublishDeliversToWatchers(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	caseId := uuid.New()
	client := &Client{Hub: hub, CaseID: caseId, Send: make(chan []byte, 4)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.clientCount(caseId) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish(context.Background(), NewCaseEvent("triage_started", caseId, nil))

	select {
	case frame := <-client.Send:
		assert.Contains(t, string(frame), "triage_started")
	case <-time.After(time.Second):
		t.Fatal("expected a delivered event frame")
	}
}

func TestPublishToStalledClientUnregistersWithoutPanic(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	caseId := uuid.New()
	client := &Client{Hub: hub, CaseID: caseId, Send: make(chan []byte, 1)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.clientCount(caseId) == 1
	}, time.Second, 5*time.Millisecond)

	// Fill the buffer so the next delivery hits the full-buffer branch.
	client.Send <- []byte("stale")

	hub.Publish(context.Background(), NewCaseEvent("message_received", caseId, nil))

	require.Eventually(t, func() bool {
		return hub.clientCount(caseId) == 0
	}, time.Second, 5*time.Millisecond)

	// Send is closed exactly once, by Run; the queued frame stays readable.
	frame, open := <-client.Send
	assert.True(t, open)
	assert.Equal(t, "stale", string(frame))
	_, open = <-client.Send
	assert.False(t, open)

	// Later publishes for the case are a no-op, not a panic.
	hub.Publish(context.Background(), NewCaseEvent("triage_completed", caseId, nil))
}
