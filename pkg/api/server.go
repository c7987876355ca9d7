// Package api serves the bridge's HTTP status and configuration endpoints.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/armbridge/domain/diagnostic"
	customlog "github.com/open-teleop/armbridge/pkg/log"
	"github.com/open-teleop/armbridge/pkg/transport"
	"github.com/open-teleop/armbridge/services"
)

// VelocityWebSocketPath is where the WebSocket frame transport is mounted.
const VelocityWebSocketPath = "/ws/velocity"

// Options are the services exposed by the HTTP API. Nil members leave their
// routes out.
type Options struct {
	ConfigService services.BridgeConfigService
	Diagnostics   *diagnostic.BridgeService
	WebSocket     *transport.WebSocketSource
	// Verifier guards configuration updates when set.
	Verifier  *TokenVerifier
	Logger    customlog.Logger
	AccessLog bool
}

// NewServer builds the fiber app.
func NewServer(opts Options) *fiber.App {
	log := opts.Logger
	if log == nil {
		log = customlog.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "Open-Teleop Arm Bridge",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "open-teleop arm bridge",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	if opts.Diagnostics != nil {
		app.Get("/api/v1/bridge/status", opts.Diagnostics.GetStatusHandler)
	}
	if opts.ConfigService != nil {
		RegisterConfigRoutes(app, opts.ConfigService, opts.Verifier, log)
	}
	if opts.WebSocket != nil {
		opts.WebSocket.Register(app, VelocityWebSocketPath)
		log.Infof("WebSocket velocity transport mounted on %s", VelocityWebSocketPath)
	}

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
