// internal/diag/server.go

// Package diag serves the read-only diagnostics surface: a JSON state
// endpoint and a websocket stream of the same snapshot, rate-limited so a
// 100Hz control loop does not flood clients. Observation only; there are no
// mutating routes.
package diag

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/chakram-cli/internal/controller"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const writeWait = 10 * time.Second

// Config tunes the diagnostics server.
type Config struct {
	Addr string
	// BroadcastRate caps websocket state frames per second.
	BroadcastRate float64
}

// StateFunc supplies the current aggregate snapshot.
type StateFunc func() controller.Snapshot

// Server exposes the snapshot over HTTP and websocket.
type Server struct {
	cfg    Config
	state  StateFunc
	logger *zap.Logger
	app    *fiber.App
	hub    *hub
}

// New builds the server and its routes.
func New(cfg Config, state StateFunc, logger *zap.Logger) *Server {
	if cfg.BroadcastRate <= 0 {
		cfg.BroadcastRate = 10
	}
	s := &Server{
		cfg:    cfg,
		state:  state,
		logger: logger,
		hub:    newHub(logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "chakram-diag",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	api := app.Group("/api")
	api.Get("/state", s.handleState)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.state())
}

// handleStateWS streams broadcast frames to one subscriber. The read side
// only detects disconnection; clients never send anything meaningful.
func (s *Server) handleStateWS(conn *websocket.Conn) {
	id, frames := s.hub.subscribe()
	defer s.hub.unsubscribe(id)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-frames:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// Run serves until ctx is cancelled. The broadcaster publishes the snapshot
// to all subscribers at the configured rate.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.cfg.Addr)
	}()
	go s.broadcastLoop(ctx)

	s.logger.Info("diagnostics server listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		s.hub.closeAll()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("diag server shutdown", zap.Error(err))
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("diag: serve on %s: %w", s.cfg.Addr, err)
		}
		return nil
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.BroadcastRate), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		if s.hub.count() == 0 {
			continue
		}
		frame, err := json.Marshal(s.state())
		if err != nil {
			s.logger.Warn("snapshot marshal failed", zap.Error(err))
			continue
		}
		s.hub.broadcast(frame)
	}
}
