package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if err := Init(Config{Level: "debug", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer InitDefault()

	Info("hello from test")
	Debug("debug line")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("expected info line in log, got %q", data)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Errorf("expected debug line at debug level, got %q", data)
	}
}

func TestLevelFiltersInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if err := Init(Config{Level: "warn", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer InitDefault()

	Info("should be dropped")
	Warn("should be kept")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Errorf("info lines should be filtered at warn level: %q", data)
	}
	if !strings.Contains(string(data), "should be kept") {
		t.Errorf("expected warn line, got %q", data)
	}
}

func TestWithRequestIDTagsLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if err := Init(Config{Level: "info", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer InitDefault()

	ctx := WithRequestID(context.Background(), "abc-123")
	WithContext(ctx).Info("tagged")
	WithContext(context.Background()).Info("untagged")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %q", data)
	}
	if !strings.Contains(lines[0], `"request_id":"abc-123"`) {
		t.Errorf("expected request id on tagged line, got %q", lines[0])
	}
	if strings.Contains(lines[1], "request_id") {
		t.Errorf("unexpected request id on untagged line: %q", lines[1])
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	InitDefault()

	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatal("expected generated request id")
		}
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status to pass through, got %d", rr.Code)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", "client-id")
		h.ServeHTTP(rr, req)
		if got := rr.Header().Get("X-Request-ID"); got != "client-id" {
			t.Errorf("expected client-id, got %q", got)
		}
	})
}
