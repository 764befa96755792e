package middleware

import (
	"errors"
	"time"

	"CabbageAI/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func (m *middleware) NewLoggingMiddleware(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()

	latency := time.Since(start)
	status := c.Response().StatusCode()

	logFields := log.Fields{
		"request_id":    m.GetRequestID(c),
		"method":        c.Method(),
		"path":          c.Path(),
		"status":        status,
		"latency_ms":    latency.Milliseconds(),
		"ip":            c.IP(),
		"user_agent":    c.Get(fiber.HeaderUserAgent),
		"origin":        c.Get(fiber.HeaderOrigin),
		"response_size": len(c.Response().Body()),
	}

	if contentLength := c.Request().Header.ContentLength(); contentLength > 0 {
		logFields["request_size"] = contentLength
	}

	if err != nil {
		logFields["error"] = err.Error()

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
		logFields["status"] = status
	}

	entry := m.log.WithFields(logFields)
	if status >= 500 {
		entry.Error("Server error")
	} else if status >= 400 {
		entry.Warn("Client error")
	} else {
		entry.Info("Success")
	}

	return err
}
