// Package web provides the remote-control and status API for the
// mirroring pipeline: REST endpoints for calibrate/stop plus a
// websocket status stream.
package web

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/reachy-mirror/internal/log"
	"github.com/teslashibe/reachy-mirror/pkg/hub"
	"github.com/teslashibe/reachy-mirror/pkg/mirror"
)

// statusInterval is how often the status stream pushes a snapshot.
const statusInterval = 500 * time.Millisecond

// Pipeline is the control surface the server exposes remotely.
type Pipeline interface {
	Status() mirror.Status
	Calibrate() error
	Stop()
}

// Server is the dashboard/remote-control server.
type Server struct {
	app      *fiber.App
	port     string
	pipeline Pipeline

	statusHub *hub.Hub
}

// NewServer creates the server for the given pipeline.
func NewServer(port string, pipeline Pipeline) *Server {
	s := &Server{
		port:      port,
		pipeline:  pipeline,
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Reachy Mirror",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/calibrate", s.handleCalibrate)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Run serves until ctx is cancelled. It owns the status broadcast loop.
func (s *Server) Run(ctx context.Context) error {
	go s.statusHub.Run()
	go s.broadcastStatus(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(":" + s.port)
	}()

	log.Info("web server started", "port", s.port)

	select {
	case <-ctx.Done():
		s.statusHub.Stop()
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}

// broadcastStatus pushes pipeline snapshots to all stream watchers.
func (s *Server) broadcastStatus(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			data, err := json.Marshal(s.pipeline.Status())
			if err != nil {
				log.Warn("failed to marshal status", "error", err)
				continue
			}
			s.statusHub.Broadcast(data)
		}
	}
}
