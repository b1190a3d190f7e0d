package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// DefaultKioskID is used when a client connects without naming a kiosk.
const DefaultKioskID = "default"

func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		kioskID := c.Query("kiosk_id")
		if kioskID == "" {
			kioskID = DefaultKioskID
		}

		client := &Client{
			hub:     hub,
			conn:    c,
			kioskID: kioskID,
			send:    make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
