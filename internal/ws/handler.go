package ws

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UpgradeRequired rejects plain HTTP requests on websocket routes.
func UpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler serves one live connection: register with the hub, answer any
// inbound frame with a pong, unregister on read error or disconnect.
func Handler(hub *Hub, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := hub.Register(conn)
		defer hub.Unregister(client)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			logger.Debug("websocket message received", zap.ByteString("data", data))
			hub.SendDirect(client, NewPong())
		}
	})
}
