package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the key used to store the request id in the Fiber context.
	RequestIDContextKey = "request_id"
)

// RequestIDMiddleware reuses the caller's request id or assigns a new one,
// and echoes it in the response.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Locals(RequestIDContextKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
