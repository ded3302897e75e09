package db

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/config"
)

func TestFileDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain path",
			in:   filepath.Join(dir, "nested", "app.db"),
			want: "file:" + filepath.Join(dir, "nested", "app.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file uri",
			in:   "file:test.db",
			want: "file:test.db?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file uri with params",
			in:   "file::memory:?cache=shared",
			want: "file::memory:?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileDSN(tt.in)
			if err != nil {
				t.Fatalf("FileDSN(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("FileDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
	if _, err := FileDSN(""); err == nil {
		t.Error("FileDSN(\"\") error = nil, want non-nil")
	}
}

func TestOpen_ExplicitDSNWins(t *testing.T) {
	got, err := buildDSN(config.Config{DSN: "file::memory:", Path: "ignored.db"})
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}
	if got != "file::memory:" {
		t.Errorf("buildDSN = %q, want the explicit DSN", got)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
	}{
		{name: "plain driver", level: slog.LevelInfo},
		{name: "statement logging", level: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &captureHandler{}
			cfg := config.Config{
				Driver:       "sqlite3",
				Path:         filepath.Join(t.TempDir(), "app.db"),
				MaxOpenConns: 1,
				MaxIdleConns: 1,
				LogLevel:     tt.level,
			}

			conn, err := Open(cfg, slog.New(handler))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() { _ = Close(conn) }()

			var mode string
			if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
				t.Fatalf("journal_mode: %v", err)
			}
			if !strings.EqualFold(mode, "wal") {
				t.Errorf("journal_mode = %q, want wal", mode)
			}

			logged := len(handler.recordsFor(t, "sql")) > 0
			if logged != (tt.level <= slog.LevelDebug) {
				t.Errorf("statement logging = %v at level %v", logged, tt.level)
			}
		})
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v, want nil", err)
	}
}
