package web

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"forum-harvester/pkg/log"
	"forum-harvester/pkg/log/transporters"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func setupTestApp() *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(RequestIDConfig()))
	app.Use(RequestIDToContextMiddleware())
	return app
}

// captureLogs installs a JSON logger writing to buf for the test's duration.
func captureLogs(t *testing.T, buf *bytes.Buffer) *log.Logger {
	t.Helper()
	prev := log.Default()
	logger := log.New(log.Info, transporters.NewStdoutWithWriter(buf))
	log.SetDefault(logger)
	t.Cleanup(func() {
		logger.Close()
		log.SetDefault(prev)
	})
	return logger
}

func TestRequestIDToContext_ExtractsIDFromFiber(t *testing.T) {
	app := setupTestApp()

	var capturedRequestID string
	app.Get("/test", func(c *fiber.Ctx) error {
		capturedRequestID = log.RequestIDFromContext(c.UserContext())
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if capturedRequestID == "" {
		t.Error("request_id should be extracted from Fiber's requestid middleware")
	}

	headerID := resp.Header.Get("X-Request-ID")
	if headerID == "" {
		t.Error("X-Request-ID header should be set in response")
	}
	if headerID != capturedRequestID {
		t.Errorf("response header = %q, context = %q, should match", headerID, capturedRequestID)
	}
}

func TestRequestIDToContext_UsesProvidedID(t *testing.T) {
	app := setupTestApp()

	var capturedRequestID string
	app.Get("/test", func(c *fiber.Ctx) error {
		capturedRequestID = log.RequestIDFromContext(c.UserContext())
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "custom-trace-id-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if capturedRequestID != "custom-trace-id-123" {
		t.Errorf("request_id = %q, want %q", capturedRequestID, "custom-trace-id-123")
	}
}

func TestRequestLoggerMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogs(t, &buf)

	app := setupTestApp()
	app.Use(RequestLoggerMiddleware())
	app.Get("/test-path", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test-path", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	logger.Flush()
	output := buf.String()

	for _, want := range []string{`"msg":"request completed"`, `"request_id":"test-req-123"`, `"path":"/test-path"`, `"status":200`, `"level":"INFO"`} {
		if !strings.Contains(output, want) {
			t.Errorf("log should contain %s, got: %s", want, output)
		}
	}
}

func TestRequestLoggerMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"client error is WARN", fiber.StatusNotFound, `"level":"WARN"`},
		{"server error is ERROR", fiber.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := captureLogs(t, &buf)

			app := setupTestApp()
			app.Use(RequestLoggerMiddleware())
			app.Get("/status", func(c *fiber.Ctx) error {
				return c.Status(tt.status).SendString("nope")
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/status", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			resp.Body.Close()

			logger.Flush()
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log should contain %s, got: %s", tt.want, buf.String())
			}
		})
	}
}

func TestRequestLoggerMiddleware_UsesFiberErrorCode(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogs(t, &buf)

	app := setupTestApp()
	app.Use(RequestLoggerMiddleware())
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	logger.Flush()
	output := buf.String()
	if !strings.Contains(output, `"status":418`) {
		t.Errorf("log should carry the fiber error status, got: %s", output)
	}
	if !strings.Contains(output, `"error":"short and stout"`) {
		t.Errorf("log should carry the error message, got: %s", output)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("first two scrapes should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("third scrape inside the window should be rejected")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("limit is per IP")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("scrapes should be allowed again once the window has passed")
	}
}

func TestRateLimiter_RejectedAttemptsDoNotExtendWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start
	rl.now = func() time.Time { return now }

	rl.Allow("ip")
	now = start.Add(50 * time.Second)
	if rl.Allow("ip") {
		t.Fatal("second scrape should be rejected")
	}

	now = start.Add(61 * time.Second)
	if !rl.Allow("ip") {
		t.Error("a rejected attempt should not count against the next window")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	app := fiber.New()
	app.Post("/scrape", rl.Middleware(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	first, err := app.Test(httptest.NewRequest("POST", "/scrape", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	first.Body.Close()

	second, err := app.Test(httptest.NewRequest("POST", "/scrape", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer second.Body.Close()
	body, _ := io.ReadAll(second.Body)

	if first.StatusCode != fiber.StatusOK {
		t.Errorf("first status = %d, want 200", first.StatusCode)
	}
	if second.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.StatusCode)
	}
	if !strings.Contains(string(body), "Too many scrapes") {
		t.Errorf("body = %s, want a rate limit message", body)
	}
}

func TestRequestLoggerMiddleware_HealthCheckAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogs(t, &buf)

	app := setupTestApp()
	app.Use(RequestLoggerMiddleware())
	app.Get(healthPath, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", healthPath, nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	logger.Flush()
	if strings.Contains(buf.String(), "request completed") {
		t.Errorf("health checks should not be logged at info, got: %s", buf.String())
	}
}
