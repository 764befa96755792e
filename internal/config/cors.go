package config

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const wildcardOrigin = "*"

var allMethods = strings.Join([]string{
	fiber.MethodGet,
	fiber.MethodPost,
	fiber.MethodHead,
	fiber.MethodPut,
	fiber.MethodDelete,
	fiber.MethodPatch,
	fiber.MethodOptions,
}, ",")

// CORSConfig is permissive by default: with no allowed origins every origin
// is accepted. A "*" entry in the list has the same effect.
type CORSConfig struct {
	AllowedOrigins []string
}

func (c CORSConfig) allowsAll() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, origin := range c.AllowedOrigins {
		if origin == wildcardOrigin {
			return true
		}
	}
	return false
}

func (c CORSConfig) Allows(origin string) bool {
	if c.allowsAll() {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

// NewCORS echoes the request origin instead of "*" because credentialed
// requests are allowed. Request headers are reflected on preflight.
func NewCORS(c CORSConfig) fiber.Handler {
	return cors.New(cors.Config{
		AllowOriginsFunc: c.Allows,
		AllowMethods:     allMethods,
		AllowCredentials: true,
	})
}
