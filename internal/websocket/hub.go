package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// Workflow events pushed to connected dashboards. The payload mirrors what
// the REST API would return for the same change, so a client can patch its
// view without refetching.
const (
	EventProjectMoved  = "project.department_changed"
	EventStatusChanged = "history.status_changed"
)

// Event is the wire format every broadcast uses.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin enforcement happens at the CORS layer in front.
		return true
	},
}

// Client is one subscribed connection. Outbound events are buffered; a client
// that cannot keep up is dropped rather than allowed to stall the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans workflow events out to every subscriber.
type Hub struct {
	mu         sync.Mutex
	clients    map[*Client]struct{}
	events     chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		events:     make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Publish queues a workflow event for broadcast. It never blocks the caller:
// the transition coordinator must not wait on slow dashboard connections, so
// when the queue is full the event is dropped.
func (h *Hub) Publish(name string, data interface{}) {
	payload, err := json.Marshal(Event{Name: name, Data: data})
	if err != nil {
		log.Printf("websocket: dropping unmarshalable %s event: %v", name, err)
		return
	}
	select {
	case h.events <- payload:
	default:
		log.Printf("websocket: event queue full, dropping %s", name)
	}
}

// Run owns the client set. Register, unregister and fan-out all pass through
// here so the map is only touched from one goroutine plus the mutex-guarded
// fan-out below.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case payload := <-h.events:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer: cut it loose.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (c *Client) writeLoop() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// readLoop discards inbound frames; the socket is push-only. Reading is still
// required so close and ping frames are processed.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: read error: %v", err)
			}
			return
		}
	}
}

// ServeWs upgrades an authenticated request to a subscription. Browsers
// cannot set headers on websocket handshakes, so the JWT arrives as a query
// parameter instead of a bearer header.
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	// Any authenticated role may subscribe; events carry nothing the REST API
	// does not already expose to every role.
	if _, ok := claims["role"].(string); !ok {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	hub.register <- client
	go client.writeLoop()
	go client.readLoop()
}
