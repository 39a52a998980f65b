package server

import (
	"errors"
	"log/slog"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles GET /api/v1/ws, the per-user notification stream.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("notification socket rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
			if errors.Is(err, notifications.ErrConnectionLimit) {
				msg = websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
			}
			_ = conn.WriteMessage(websocket.CloseMessage, msg)
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return models.NewAppError(fiber.StatusServiceUnavailable, "Notifications are unavailable")
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
