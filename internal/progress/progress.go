// Package progress streams batch extract/convert progress events to
// connected clients over a websocket, for the "serve" subcommand.
package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one JSON message broadcast to every connected client.
type Event struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	File  string `json:"file,omitempty"`
	Err   string `json:"err,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans out Events to every currently connected websocket
// client, dropping an event for any client whose send buffer is full
// rather than blocking the worker pool that's feeding it.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewBroadcaster creates an empty Broadcaster ready to accept connections.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*client]struct{})}
}

// Handler upgrades an HTTP request to a websocket and registers the
// connection to receive future Publish calls until it disconnects.
func (b *Broadcaster) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("progress: upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan Event, 64)}

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	go b.writeLoop(c)
	go b.readLoop(c)
}

func (b *Broadcaster) readLoop(c *client) {
	defer b.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) writeLoop(c *client) {
	defer c.conn.Close()
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			b.remove(c)
			return
		}
	}
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

// Publish broadcasts ev to every connected client, dropping it for any
// client whose send buffer is full instead of blocking the caller.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.send <- ev:
		default:
			log.Printf("progress: client send buffer full, dropping event for index %d", ev.Index)
		}
	}
}

// MarshalEvent renders an Event the same way the wire format does; the
// package's tests use it to check the JSON shape.
func MarshalEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
