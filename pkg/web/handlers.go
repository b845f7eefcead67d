package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/reachy-mirror/pkg/hub"
)

// handleStatus returns the current pipeline snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.pipeline.Status())
}

// handleCalibrate zeroes the hip-sway signal at the operator's current
// pose. Fails with 409 when no pose has been computed yet.
func (s *Server) handleCalibrate(c *fiber.Ctx) error {
	if err := s.pipeline.Calibrate(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"calibrated": true})
}

// handleStop shuts the pipeline down.
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.pipeline.Stop()
	return c.JSON(fiber.Map{"stopping": true})
}

// handleStatusWS streams status snapshots to the client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	client.Run() // Blocks until connection closes
}
