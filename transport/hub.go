// Package transport carries the simulation's publish/subscribe telemetry
// bus and inbound command stream over WebSocket, grounded on the
// teacher's server/websocket.go Server/Client hub.
package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/engine"
	"github.com/Polymythic/LLMsubmarineBridgeSimulator/metrics"
)

// Frame is the outbound envelope for one telemetry publish (§6's
// tick:* topics), mirroring the teacher's ServerMessage{Type,Data}.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// CommandEnvelope is the inbound wire shape for one command-topic message
// (§6), mirroring the teacher's ClientMessage{Type,Data}.
type CommandEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	clientSendBuffer = 100 // §9 design note: subscriber bounded queues of size 100
	pongWait         = 60 * time.Second
	pingInterval     = 54 * time.Second
	writeWait        = 10 * time.Second
)

func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == originURL.Host {
		return true
	}
	return strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" || originURL.Host == "127.0.0.1"
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// Client is one connected station's WebSocket session.
type Client struct {
	id   int
	conn *websocket.Conn
	send chan Frame
	hub  *Hub
}

// Hub fans out Core.Publish telemetry to every connected station and
// forwards inbound commands to Core.SubmitCommand, grounded on the
// teacher's Server{clients,register,unregister,broadcast}/Run().
type Hub struct {
	core *engine.Core

	mu         sync.RWMutex
	clients    map[int]*Client
	nextID     int
	register   chan *Client
	unregister chan *Client
	broadcast  chan Frame
}

func NewHub(core *engine.Core) *Hub {
	return &Hub{
		core:       core,
		clients:    make(map[int]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Frame, 256),
	}
}

// SetCore binds the Core the hub forwards inbound commands to. Needed
// because engine.NewCore takes hub.Publish as a constructor argument, so the
// hub must exist before the Core it serves; main wires them together in
// two steps.
func (h *Hub) SetCore(core *engine.Core) {
	h.core = core
}

// Publish satisfies engine.PublishFunc; wire it in as Core's Publish field.
func (h *Hub) Publish(topic string, data any) {
	select {
	case h.broadcast <- Frame{Type: topic, Data: data}:
	default:
		log.Printf("transport: broadcast queue full, dropping %s frame", topic)
	}
	metrics.TelemetryBroadcastQueueDepth.Set(float64(len(h.broadcast)))
}

// Run drives the hub's single-writer register/unregister/broadcast loop
// until stop is closed, grounded on the teacher's Server.Run().
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			h.mu.Lock()
			for _, c := range h.clients {
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()

		case frame := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				trySend(c.send, frame)
			}
			h.mu.RUnlock()
		}
	}
}

// trySend enqueues frame, dropping the oldest queued frame first if the
// subscriber's buffer is full (§5: "bounded per-subscriber queues that
// drop the oldest message when full").
func trySend(ch chan Frame, frame Frame) {
	select {
	case ch <- frame:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- frame:
	default:
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and starts
// its read/write pumps, grounded on the teacher's HandleWebSocket.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.mu.Unlock()

	c := &Client{id: id, conn: conn, send: make(chan Frame, clientSendBuffer), hub: h}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env CommandEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: read error: %v", err)
			}
			break
		}
		c.handleCommand(env)
	}
}

// handleCommand submits the decoded command and, if the handler rejects
// it, writes a human-readable error frame back to this connection only
// (§7 kind 1: "surface a human-readable string to the originating
// connection").
func (c *Client) handleCommand(env CommandEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("transport: panic handling %s: %v", env.Type, r)
		}
	}()

	reply := make(chan error, 1)
	c.hub.core.SubmitCommand(engine.Command{Topic: env.Type, Payload: env.Data, Reply: reply})

	select {
	case err := <-reply:
		if err != nil {
			trySend(c.send, Frame{Type: "error", Data: map[string]any{"topic": env.Type, "message": err.Error()}})
		}
	case <-time.After(2 * time.Second):
		// Tick executor didn't process this command in time (queue
		// congestion); don't block the read pump waiting forever.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
