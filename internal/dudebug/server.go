// Package dudebug is a small Fiber admin server for running a sync outside
// of the host ingestion platform: a health check and a manual trigger
// endpoint (SPEC_FULL.md C10). It is wired only by cmd/docusync-debug, never
// by the library entry points in docusync.go.
package dudebug

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Runner performs one sync invocation; cmd/docusync-debug supplies a closure
// over the wired Orchestrator, config and state.
type Runner func(ctx context.Context) error

// Server exposes /healthz and POST /trigger over Fiber.
type Server struct {
	app *fiber.App
	log ducontract.Logger

	mu      sync.Mutex
	running bool
}

// New builds the admin server. run is invoked once per POST /trigger; a
// trigger that arrives while another is still running is rejected with 409
// rather than run concurrently.
func New(run Runner, log ducontract.Logger) *Server {
	s := &Server{log: log}

	app := fiber.New(fiber.Config{
		AppName:               "docusync-debug",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())

	app.Get("/healthz", s.healthz)
	app.Post("/trigger", s.trigger(run))

	s.app = app
	return s
}

func (s *Server) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// trigger runs one sync invocation synchronously; a trigger already in
// flight returns 409 rather than starting a second concurrent sync.
func (s *Server) trigger(run Runner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "sync already in progress"})
		}
		s.running = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := run(c.Context()); err != nil {
			s.log.Severe("triggered sync failed", ducontract.F("error", err.Error()))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// ListenAndWait starts the server on addr and blocks until SIGINT/SIGTERM,
// then shuts it down gracefully.
func (s *Server) ListenAndWait(addr string) error {
	go func() {
		s.log.Info("debug server listening", ducontract.F("addr", addr))
		if err := s.app.Listen(addr); err != nil {
			s.log.Severe("debug server exited", ducontract.F("error", err.Error()))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	s.log.Info("shutting down debug server")
	return s.app.ShutdownWithTimeout(30 * time.Second)
}
