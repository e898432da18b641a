package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func TestETagMatches(t *testing.T) {
	etag := `W/"abc"`
	cases := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`W/"abc"`, true},
		{`"abc"`, true},
		{`W/"zzz", W/"abc"`, true},
		{"*", true},
		{`W/"zzz"`, false},
	}
	for _, tc := range cases {
		if got := etagMatches(tc.header, etag); got != tc.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func TestETagMiddleware_NotModified(t *testing.T) {
	app := fiber.New()
	app.Use(ETagMiddleware())
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("payload") })
	app.Get("/live", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.SendString("payload")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/x", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/live", nil), -1)
	if resp.Header.Get("ETag") != "" {
		t.Error("no-store responses must not carry an ETag")
	}
}

func TestRequestIDLogMiddleware(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Get("/x", func(c *fiber.Ctx) error {
		LoggerFromCtx(c.UserContext()).Info("inside")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-42")
	if _, err := app.Test(req, -1); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"req-42"`)) {
		t.Errorf("expected request id in log line, got %s", buf.String())
	}
}

func TestLoggerFromCtx_Default(t *testing.T) {
	if LoggerFromCtx(context.Background()) != slog.Default() {
		t.Error("expected default logger without a request-scoped one")
	}
}
