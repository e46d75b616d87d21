package chat

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection inside a conversation room.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	Room   string
	UserID string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans messages out to every connection in a room.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.Room]; conns != nil {
				if conns[c] {
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and closes every client send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues data for every connection in the room.
func (h *Hub) Broadcast(room string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data}:
	case <-h.done:
	}
}

// Subscription is an in-process room listener with no websocket behind it.
type Subscription struct {
	C      <-chan []byte
	hub    *Hub
	client *Client
}

// Cancel detaches the subscription; the hub closes C.
func (s *Subscription) Cancel() {
	select {
	case s.hub.unregister <- s.client:
	case <-s.hub.done:
	}
}

// Subscribe attaches an in-process consumer to a room. Callers must Cancel
// when done or the hub keeps a slot for them until Stop.
func (h *Hub) Subscribe(room string) *Subscription {
	c := &Client{Send: make(chan []byte, 256), Room: room}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
	return &Subscription{C: c.Send, hub: h, client: c}
}
