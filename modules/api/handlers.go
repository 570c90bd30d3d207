package api

import (
	"errors"
	"log"

	domain "github.com/example/quicktasks/domain/task"
	"github.com/example/quicktasks/modules/task"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check endpoint
	app.Get("/health", m.healthHandler)

	// API v1 routes
	api := app.Group("/api/v1")
	api.Get("/categories", m.listCategories)

	// Task endpoints
	tasks := api.Group("/tasks")
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Post("/:id/toggle", m.toggleTask)
}

// writeError maps a task error onto an HTTP error response.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   task.CodeValidation,
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   task.CodeNotFound,
			Message: err.Error(),
		})
	default:
		log.Printf("[api] Request %v failed: %v", c.Locals(RequestIDContextKey), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

func invalidRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// taskID reads the :id path parameter.
func taskID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, false
	}
	return id, true
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	details := map[string]any{
		"module": "api",
		"port":   m.cfg.Port,
	}

	if m.persistencePort != nil {
		stats, err := m.persistencePort.Stats(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status:  "degraded",
				Details: map[string]any{"storage_error": err.Error()},
			})
		}
		details["storage"] = stats
	}

	return c.JSON(HealthResponse{
		Status:  "healthy",
		Details: details,
	})
}

// listCategories handles GET /api/v1/categories.
func (m *APIModule) listCategories(c *fiber.Ctx) error {
	categories := domain.Categories()
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, string(cat))
	}
	return c.JSON(CategoriesResponse{
		Categories: names,
		Default:    string(domain.CategoryOther),
	})
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c, "Invalid request body")
	}

	created, err := m.taskAdapter.CreateTask(c.UserContext(), req.toFields())
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newTaskResponse(created, m.now()))
}

// listTasks handles GET /api/v1/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	filter := task.Filter(c.Query("filter", string(task.FilterAll)))

	list, err := m.taskAdapter.ListTasks(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}

	now := m.now()
	tasks := make([]TaskResponse, 0, len(list.Tasks))
	for _, t := range list.Tasks {
		tasks = append(tasks, newTaskResponse(t, now))
	}

	return c.JSON(ListTasksResponse{
		Filter:     string(filter),
		Tasks:      tasks,
		Total:      list.Total,
		Incomplete: list.Incomplete,
		Completed:  list.Completed,
	})
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task ID must be an integer")
	}

	found, err := m.taskAdapter.GetTask(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(newTaskResponse(found, m.now()))
}

// updateTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task ID must be an integer")
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c, "Invalid request body")
	}

	updated, err := m.taskAdapter.UpdateTask(c.UserContext(), id, req.toFields())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(newTaskResponse(updated, m.now()))
}

// toggleTask handles POST /api/v1/tasks/:id/toggle.
func (m *APIModule) toggleTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task ID must be an integer")
	}

	toggled, err := m.taskAdapter.ToggleTask(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(newTaskResponse(toggled, m.now()))
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return invalidRequest(c, "Task ID must be an integer")
	}

	if err := m.taskAdapter.DeleteTask(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
