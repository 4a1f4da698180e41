package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/polyspin/backend/internal/physics"
	"github.com/polyspin/backend/internal/sim"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Client is one renderer watching a scene.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	id         string
	sceneToken string
	send       chan []byte
}

// Hub tracks renderer connections grouped into one room per scene.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // scene token -> client id -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed once Run returns
	manager    *sim.Manager
	mu         sync.RWMutex
}

func NewHub(m *sim.Manager) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		manager:    m,
	}
}

// Message is the envelope for everything sent over the socket.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Run serves register and unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			if _, exists := h.rooms[client.sceneToken]; !exists {
				h.rooms[client.sceneToken] = make(map[string]*Client)
			}
			h.rooms[client.sceneToken][client.id] = client
			size := len(h.rooms[client.sceneToken])
			h.mu.Unlock()
			log.Printf("[WS] Viewer %s joined scene %s (room_size=%d)", client.id, client.sceneToken, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				h.removeLocked(client)
				log.Printf("[WS] Viewer %s left scene %s", client.id, client.sceneToken)
			}
			h.mu.Unlock()
		}
	}
}

// join hands c to Run. It reports false when the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave hands c to Run, or returns at once when the hub has stopped and
// already closed every client.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) removeLocked(c *Client) {
	delete(h.clients, c.id)
	if room, exists := h.rooms[c.sceneToken]; exists {
		delete(room, c.id)
		if len(room) == 0 {
			delete(h.rooms, c.sceneToken)
		}
	}
	close(c.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.removeLocked(c)
	}
}

// CloseScene disconnects every viewer of a scene.
func (h *Hub) CloseScene(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.rooms[token] {
		h.removeLocked(c)
	}
}

func (h *Hub) RoomSize(token string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[token])
}

// BroadcastToScene sends a message to every viewer of a scene.
func (h *Hub) BroadcastToScene(token string, message interface{}) {
	if h.RoomSize(token) == 0 {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[token] {
		select {
		case client.send <- data:
		default:
			// A slow renderer just misses frames.
			log.Printf("[WS] Send buffer full for viewer %s in scene %s, dropping message", client.id, token)
		}
	}
}

// BroadcastFrame implements sim.FrameSink.
func (h *Hub) BroadcastFrame(f sim.Frame) {
	h.BroadcastToScene(f.Token, outbound{Type: "frame", Data: f})
}

// HandleWebSocket upgrades a renderer connection for the scene in the path.
func HandleWebSocket(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		scene, err := h.manager.Get(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "scene not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			hub:        h,
			conn:       conn,
			id:         "VIEW_" + generateID(8),
			sceneToken: token,
			send:       make(chan []byte, sendBuffer),
		}
		if data, err := json.Marshal(outbound{Type: "frame", Data: scene.Frame()}); err == nil {
			client.send <- data
		}

		if !h.join(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for viewer %s: %v", c.id, err)
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

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for viewer %s: %v", c.id, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage processes renderer input. Clicks mirror the mouse handling
// of the browser demos; step advances a paused scene by one tick.
func (c *Client) handleMessage(msg Message) {
	scene, err := c.hub.manager.Get(c.sceneToken)
	if err != nil {
		c.sendError("scene not found")
		return
	}

	switch msg.Type {
	case "click":
		var p physics.Vec2
		if err := json.Unmarshal(msg.Data, &p); err != nil || !p.IsFinite() {
			c.sendError("click needs finite x and y")
			return
		}
		res, err := scene.Click(p, c.hub.manager.Config().MaxShapesPerScene)
		if errors.Is(err, sim.ErrSceneFull) {
			c.sendError(err.Error())
			return
		}
		if err != nil {
			c.sendError("could not add shape")
			return
		}
		evType := sim.EventShapeAdded
		if res.Action == sim.ActionRemoved {
			evType = sim.EventShapeRemoved
		}
		c.hub.manager.Publish(sim.SceneEvent{Type: evType, SceneToken: c.sceneToken, ShapeID: res.ShapeID, Point: &p})
		c.sendJSON(outbound{Type: "click_result", Data: res})

	case "step":
		c.hub.BroadcastFrame(scene.Step())

	case "frame":
		c.sendJSON(outbound{Type: "frame", Data: scene.Frame()})

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Dropped reply for viewer %s (buffer full)", c.id)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
