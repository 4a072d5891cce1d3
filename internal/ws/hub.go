package ws

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Message is the envelope for every frame on the socket, both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents one connected subscriber. Room membership is owned by
// the hub goroutine; handlers only touch Send and Conn.
type Client struct {
	Conn     *websocket.Conn
	Send     chan []byte
	Username string

	rooms map[uuid.UUID]struct{}
}

func NewClient(conn *websocket.Conn, username string) *Client {
	return &Client{
		Conn:     conn,
		Send:     make(chan []byte, 32),
		Username: username,
		rooms:    make(map[uuid.UUID]struct{}),
	}
}

type roomChange struct {
	client  *Client
	storeID uuid.UUID
	join    bool
}

type storeMessage struct {
	storeIDs []uuid.UUID
	payload  []byte
}

// Hub fans out domain events to clients subscribed to store rooms. A
// single run loop owns all state, so per-client delivery order matches
// the order events arrive at the hub.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	rooms      chan roomChange
	broadcast  chan storeMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(chan roomChange),
		broadcast:  make(chan storeMessage, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Printf("WS client connected: %s (total %d)", client.Username, len(h.clients))

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			log.Printf("WS client disconnected: %s (total %d)", client.Username, len(h.clients))

		case change := <-h.rooms:
			if _, ok := h.clients[change.client]; !ok {
				continue
			}
			if change.join {
				change.client.rooms[change.storeID] = struct{}{}
			} else {
				delete(change.client.rooms, change.storeID)
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.inAny(msg.storeIDs) {
					continue
				}
				select {
				case client.Send <- msg.payload:
				default:
					// Slow consumer, drop it. The client resyncs via
					// the polling endpoint on reconnect.
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

func (c *Client) inAny(storeIDs []uuid.UUID) bool {
	for _, id := range storeIDs {
		if _, ok := c.rooms[id]; ok {
			return true
		}
	}
	return false
}

// JoinStore subscribes the client to a store room.
func (h *Hub) JoinStore(client *Client, storeID uuid.UUID) {
	h.rooms <- roomChange{client: client, storeID: storeID, join: true}
}

// LeaveStore unsubscribes the client from a store room.
func (h *Hub) LeaveStore(client *Client, storeID uuid.UUID) {
	h.rooms <- roomChange{client: client, storeID: storeID, join: false}
}

// BroadcastToStores delivers an event to every client subscribed to at
// least one of the given rooms. A client in both rooms of a transfer
// receives a single copy.
func (h *Hub) BroadcastToStores(storeIDs []uuid.UUID, event string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("WS marshal error for %s: %v", event, err)
		return
	}
	payload, err := json.Marshal(Message{Event: event, Data: raw})
	if err != nil {
		log.Printf("WS marshal error for %s: %v", event, err)
		return
	}
	h.broadcast <- storeMessage{storeIDs: storeIDs, payload: payload}
}

// BroadcastToStore delivers an event to a single store room.
func (h *Hub) BroadcastToStore(storeID uuid.UUID, event string, data interface{}) {
	h.BroadcastToStores([]uuid.UUID{storeID}, event, data)
}
