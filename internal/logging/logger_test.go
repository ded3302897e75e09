package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/config"
)

func TestNewLogger_ReleaseWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}

	logger := newLogger(&buf, cfg, "1.4.0", "server")
	logger.Info("dataset loaded", "species", 12)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	want := map[string]any{
		"msg":     "dataset loaded",
		"app":     "server",
		"version": "1.4.0",
		"env":     "prod",
		"species": float64(12),
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}

	logger := newLogger(&buf, cfg, "1.4.0", "server")
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("info/debug written at warn level: %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not written: %q", buf.String())
	}
}

func TestNewLogger_DevIsText(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}

	logger := newLogger(&buf, cfg, "dev", "server")
	logger.Debug("sql", "op", "query")

	out := buf.String()
	if !strings.Contains(out, "sql") || !strings.Contains(out, "app=server") {
		t.Errorf("dev output = %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev output looks like JSON: %q", out)
	}
}
