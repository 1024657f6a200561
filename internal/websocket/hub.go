package eventws

import (
	"context"
	"encoding/json"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/yamenzk/personal-trainer/internal/models"
	"go.uber.org/zap"
)

// Hub fans device events out to every socket the device has open.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *envelope
	done       chan struct{}
	logger     *zap.Logger
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	deviceID string
	send     chan []byte
}

type envelope struct {
	deviceID string
	event    models.Event
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *envelope, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, deviceID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		deviceID: deviceID,
		send:     make(chan []byte, 32),
	}
}

// Run delivers events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			return nil
		case client := <-h.register:
			set, ok := h.clients[client.deviceID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.deviceID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.deviceID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.deviceID)
			}
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for a device. It never blocks; events are dropped
// when the queue is full or the hub has stopped.
func (h *Hub) Publish(deviceID string, event models.Event) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	select {
	case h.broadcast <- &envelope{deviceID: deviceID, event: event}:
	case <-h.done:
	default:
		h.logger.Warn("event hub queue full, dropping event",
			zap.String("device_id", deviceID),
			zap.String("type", event.Type))
	}
}

func (h *Hub) deliver(message *envelope) {
	encoded, err := json.Marshal(message.event)
	if err != nil {
		h.logger.Error("event hub encode event", zap.Error(err))
		return
	}

	set, ok := h.clients[message.deviceID]
	if !ok {
		return
	}
	for client := range set {
		select {
		case client.send <- encoded:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, message.deviceID)
	}
}

// ReadPump keeps the socket open until the peer goes away. Events only flow
// server to client, so incoming frames are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
