package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/csv-manager/internal/observability"
	apperrors "github.com/spec-kit/csv-manager/pkg/util"
)

func newTestApp(metrics *observability.Metrics, cfg MiddlewareConfig) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, cfg)
	return app
}

func doRequest(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestMiddlewares_ErrorEnvelopeAndMetrics(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics()
	app := newTestApp(metrics, MiddlewareConfig{})

	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("csv file", nil)
	})

	resp, _ := doRequest(t, app, "/ok")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status mismatch: got %d want 200", resp.StatusCode)
	}

	resp, body := doRequest(t, app, "/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status mismatch: got %d want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND envelope, got %s", body)
	}

	// Request counters carry the status that was actually written.
	if got := metrics.RequestTotal("/ok", http.MethodGet, http.StatusOK); got != 1 {
		t.Fatalf("RequestTotal(/ok, 200) = %d, want 1", got)
	}
	if got := metrics.RequestTotal("/missing", http.MethodGet, http.StatusNotFound); got != 1 {
		t.Fatalf("RequestTotal(/missing, 404) = %d, want 1", got)
	}
	if got := metrics.RequestTotal("/missing", http.MethodGet, http.StatusOK); got != 0 {
		t.Fatalf("error response must not be counted as 200, got %d", got)
	}
}

func TestMiddlewares_PanicBecomesInternalError(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics()
	app := newTestApp(metrics, MiddlewareConfig{})

	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("handler bug")
	})

	resp, body := doRequest(t, app, "/boom")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status mismatch: got %d want 500", resp.StatusCode)
	}
	if !strings.Contains(body, "INTERNAL_ERROR") {
		t.Fatalf("expected INTERNAL_ERROR envelope, got %s", body)
	}
}

func TestMiddlewares_TimeoutReachesHandlerContext(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics()
	app := newTestApp(metrics, MiddlewareConfig{RequestTimeout: time.Minute})

	app.Get("/deadline", func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Deadline(); !ok {
			return apperrors.NewInternalError(nil)
		}
		return c.SendString("ok")
	})

	resp, _ := doRequest(t, app, "/deadline")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("handler context has no deadline, status %d", resp.StatusCode)
	}
}
