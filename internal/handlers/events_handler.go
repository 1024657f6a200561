package handlers

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	eventws "github.com/yamenzk/personal-trainer/internal/websocket"
)

type EventsHandler struct {
	hub *eventws.Hub
}

func NewEventsHandler(hub *eventws.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// WebSocketAuth runs after the device middleware and only admits upgrades.
func (h *EventsHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	deviceID, ok := c.Locals("device_id").(string)
	if !ok || deviceID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown device"})
	}
	return c.Next()
}

func (h *EventsHandler) HandleWebSocket(conn *websocket.Conn) {
	deviceID, _ := conn.Locals("device_id").(string)
	client := eventws.NewClient(h.hub, conn, deviceID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}
