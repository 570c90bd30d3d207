package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/quicktasks/config"
	"github.com/example/quicktasks/modules/persistence"
	"github.com/example/quicktasks/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the driving adapter that exposes REST endpoints.
// It calls into the core domain (task module) via the TaskPort interface.
type APIModule struct {
	app             *fiber.App
	cfg             config.HTTP
	taskAdapter     task.TaskPort
	persistencePort persistence.PersistencePort
	now             func() time.Time
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg config.HTTP) *APIModule {
	return &APIModule{
		cfg: cfg,
		now: time.Now,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
// The framework will call SetDependencyServiceContainer for each dependency.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "persistence"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "persistence":
		m.persistencePort = persistence.NewPersistenceAdapter(container)
	}
}

// newApp builds the Fiber application with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(RequestIDMiddleware())
	if m.cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:request_id}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.CORSOrigins,
	}))

	m.setupRoutes(app)
	return app
}

// Start initializes the Fiber HTTP server.
// Returns an error if required dependencies are not set.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskAdapter == nil {
		return fmt.Errorf("taskAdapter dependency not set")
	}

	m.app = m.newApp()

	addr := fmt.Sprintf(":%d", m.cfg.Port)

	// Start server in goroutine.
	// Server availability is verified via Health() method.
	go func() {
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on %s", addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
