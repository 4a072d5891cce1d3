package ws

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type joinPayload struct {
	StoreID uuid.UUID `json:"store_id"`
}

// ReadPump consumes client frames until the connection drops. The only
// client-to-server events are join_store and leave_store; everything else
// is ignored to keep the connection alive for pings.
func (c *Client) ReadPump(hub *Hub) {
	defer func() {
		hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		var payload joinPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.StoreID == uuid.Nil {
			continue
		}

		switch msg.Event {
		case "join_store":
			hub.JoinStore(c, payload.StoreID)
		case "leave_store":
			hub.LeaveStore(c, payload.StoreID)
		}
	}
}

// WritePump drains the send channel onto the wire. Exits when the hub
// closes the channel or a write fails.
func (c *Client) WritePump() {
	for payload := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
