package handlerUtil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"CabbageAI/internal/api/detection"
	"CabbageAI/pkg/response"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"go.viam.com/test"
)

func render(t *testing.T, handle func(h *ErrorHandler, c *fiber.Ctx) error) (int, string) {
	status, body, _ := renderWithHeaders(t, handle)
	return status, body
}

func renderWithHeaders(t *testing.T, handle func(h *ErrorHandler, c *fiber.Ctx) error) (int, string, http.Header) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return handle(h, c) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	test.That(t, err, test.ShouldBeNil)
	body, err := io.ReadAll(resp.Body)
	test.That(t, err, test.ShouldBeNil)
	return resp.StatusCode, string(body), resp.Header
}

func TestHandleCodedError(t *testing.T) {
	status, body := render(t, func(h *ErrorHandler, c *fiber.Ctx) error {
		return h.Handle(c, "req", detection.ErrPredictionFailed(errors.New("image: unknown format")), "/predict", "predict")
	})
	test.That(t, status, test.ShouldEqual, fiber.StatusInternalServerError)

	var out detection.ErrorResponse
	test.That(t, jsoniter.UnmarshalFromString(body, &out), test.ShouldBeNil)
	test.That(t, out.Error, test.ShouldEqual, "image: unknown format")

	status, _ = render(t, func(h *ErrorHandler, c *fiber.Ctx) error {
		return h.Handle(c, "req", response.NewError(fiber.StatusUnprocessableEntity, "missing"), "/predict", "form_file")
	})
	test.That(t, status, test.ShouldEqual, fiber.StatusUnprocessableEntity)
}

func TestHandleUnexpectedError(t *testing.T) {
	status, body, headers := renderWithHeaders(t, func(h *ErrorHandler, c *fiber.Ctx) error {
		return h.Handle(c, "01J0REQUEST", errors.New("disk on fire"), "/predict", "predict")
	})
	test.That(t, status, test.ShouldEqual, fiber.StatusInternalServerError)
	test.That(t, body, test.ShouldEqual, `{"error":"disk on fire"}`)
	test.That(t, headers.Get(TraceIDHeader), test.ShouldEqual, "01J0REQUEST")
}

func TestHandleSuccess(t *testing.T) {
	status, body := render(t, func(h *ErrorHandler, c *fiber.Ctx) error {
		return h.HandleSuccess(c, fiber.StatusOK, detection.PredictionResponse{Predictions: []detection.Prediction{}})
	})
	test.That(t, status, test.ShouldEqual, fiber.StatusOK)
	test.That(t, body, test.ShouldEqual, `{"predictions":[]}`)

	status, body = render(t, func(h *ErrorHandler, c *fiber.Ctx) error {
		return h.HandleSuccess(c, fiber.StatusNoContent, nil)
	})
	test.That(t, status, test.ShouldEqual, fiber.StatusNoContent)
	test.That(t, body, test.ShouldBeEmpty)
}
