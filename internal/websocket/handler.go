package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from a case watcher. The snapshot is an
// initial_state event queued before any live event so late joiners see the
// current status first.
func ServeWs(hub *Hub, c *websocket.Conn, caseID uuid.UUID, snapshot []byte) {
	client := &Client{Hub: hub, Conn: c, CaseID: caseID, Send: make(chan []byte, 256)}
	if len(snapshot) > 0 {
		client.Send <- snapshot
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
