package main

import (
	"context"
	"log"
	"os"

	"github.com/example/quicktasks/config"
	"github.com/example/quicktasks/modules/api"
	"github.com/example/quicktasks/modules/persistence"
	"github.com/example/quicktasks/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== QuickTasks - Task Tracker ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %+v", err)
	}

	logLevel := mono.WithLogLevel(mono.LogLevelInfo)
	if cfg.LogLevel == config.LogLevelError {
		logLevel = mono.WithLogLevel(mono.LogLevelError)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		logLevel,
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	persistenceModule, err := persistence.NewModule(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create persistence module: %v", err)
	}

	taskModule := task.NewModule(task.WithDemoSeed(cfg.SeedDemo))

	// Order: independent modules first, then modules with dependencies
	app.Register(persistenceModule)       // Driven adapter (storage, consumes task events)
	app.Register(taskModule)              // Core domain (depends on persistence, emits events)
	app.Register(api.NewModule(cfg.HTTP)) // Driving adapter (depends on task)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Services answer only after every module has started.
	if err := taskModule.LoadPersisted(context.Background()); err != nil {
		_ = app.Stop(context.Background())
		log.Fatalf("Failed to load tasks: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Storage backend: %s", cfg.Storage.Backend)
	if cfg.SeedDemo {
		log.Println("  Demo tasks: seeded into an empty store")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTP.Port)
	log.Println("  GET    /api/v1/tasks?filter=all|incomplete|completed - List tasks")
	log.Println("  POST   /api/v1/tasks             - Create a task")
	log.Println("  GET    /api/v1/tasks/:id         - Get a task by ID")
	log.Println("  PUT    /api/v1/tasks/:id         - Edit a task")
	log.Println("  POST   /api/v1/tasks/:id/toggle  - Toggle completion")
	log.Println("  DELETE /api/v1/tasks/:id         - Delete a task")
	log.Println("  GET    /api/v1/categories        - List categories")
	log.Println("  GET    /health                   - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
