package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cargo-tracker/internal/core/config"
	"cargo-tracker/internal/core/logger"
	"cargo-tracker/internal/core/metrics"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "cargo-tracker/docs/swagger"
)

// RequestIDHeader carries the per-request ray id.
const RequestIDHeader = "X-Ray-ID"

// healthTimeout bounds each dependency check in /healthz.
const healthTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg     *config.AppConfig
	metrics *metrics.Metrics
	checks  map[string]HealthCheck
}

// New creates a new Server instance with configured middleware. m may be nil, in which case
// /metrics is not mounted.
func New(cfg *config.AppConfig, m *metrics.Metrics) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "cargo-tracker",
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		App:     app,
		cfg:     cfg,
		metrics: m,
		checks:  make(map[string]HealthCheck),
	}

	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Header: RequestIDHeader,
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
		Fields: []string{"requestId", "latency", "status", "method", "url"},
	}))

	if m != nil {
		app.Use(s.instrument)
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	app.Get("/healthz", s.health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	return s
}

// AddHealthCheck registers a dependency probed by /healthz.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}

// instrument records request count and latency by route template.
func (s *Server) instrument(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	route := c.Route().Path
	if status == fiber.StatusNotFound && route == "/" {
		route = "unmatched"
	}
	s.metrics.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
	return err
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// health handles GET /healthz.
// @Summary Health check
// @Description Liveness plus a reachability probe of every configured store.
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) health(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(s.checks))}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		err := s.checks[name](ctx)
		cancel()
		if err != nil {
			logger.Get().Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// errorBody mirrors the handlers' error shape for errors raised by fiber itself.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	RayID   string `json:"ray_id,omitempty"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	rayID, _ := c.Locals("requestid").(string)
	if code >= fiber.StatusInternalServerError {
		logger.Get().Error("Unhandled request error",
			zap.String("path", c.Path()),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(errorBody{
		Code:    codeFor(code),
		Message: message,
		RayID:   rayID,
	})
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnsupportedMediaType:
		return "VALIDATION_ERROR"
	default:
		if status >= fiber.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}
