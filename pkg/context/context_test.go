package context

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.viam.com/test"
)

func TestGetRequestID(t *testing.T) {
	test.That(t, GetRequestID(context.Background()), test.ShouldEqual, "unknown")
	test.That(t, GetRequestID(WithRequestID(context.Background(), "abc")), test.ShouldEqual, "abc")
}

func TestFromFiberCtx(t *testing.T) {
	app := fiber.New()
	var fromLocals, fromHeader string

	app.Get("/locals", func(c *fiber.Ctx) error {
		c.Locals("X-Request-ID", "local-id")
		fromLocals = GetRequestID(FromFiberCtx(c))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/header", func(c *fiber.Ctx) error {
		fromHeader = GetRequestID(FromFiberCtx(c))
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/locals", nil))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromLocals, test.ShouldEqual, "local-id")

	req := httptest.NewRequest("GET", "/header", nil)
	req.Header.Set("X-Request-ID", "header-id")
	_, err = app.Test(req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromHeader, test.ShouldEqual, "header-id")
}
