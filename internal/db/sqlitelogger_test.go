package db

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := make(map[string]slog.Value)
	m["msg"] = slog.StringValue(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) recordsFor(t *testing.T, msg string) []map[string]slog.Value {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.attrs {
		if m["msg"].String() == msg {
			out = append(out, m)
		}
	}
	return out
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attrs = nil
}

func openLogged(t *testing.T) (*sql.DB, *captureHandler) {
	t.Helper()
	handler := &captureHandler{}
	connector, err := NewLoggingConnector(":memory:", slog.New(handler))
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, handler
}

func lastSQL(t *testing.T, h *captureHandler) map[string]slog.Value {
	t.Helper()
	recs := h.recordsFor(t, "sql")
	if len(recs) == 0 {
		t.Fatal("expected at least one sql log record")
	}
	return recs[len(recs)-1]
}

func TestNewLoggingConnector_nilLoggerUsesDefault(t *testing.T) {
	conn, err := NewLoggingConnector(":memory:", nil)
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	lc, ok := conn.(*loggingConnector)
	if !ok {
		t.Fatalf("connector type = %T", conn)
	}
	if lc.logger == nil {
		t.Error("logger is nil, want slog.Default()")
	}
}

func TestLoggingConnector_ExecAndQueryLogged(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	got := lastSQL(t, handler)
	if got["op"].String() != "exec" {
		t.Errorf("op: got %q, want exec", got["op"].String())
	}
	if got["sql"].String() != `CREATE TABLE t (id INTEGER PRIMARY KEY)` {
		t.Errorf("sql: got %q", got["sql"].String())
	}
	if _, ok := got["duration_ms"]; !ok {
		t.Error("expected duration_ms attribute")
	}

	handler.reset()
	var one int
	if err := db.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		t.Fatalf("query row: %v", err)
	}
	got = lastSQL(t, handler)
	if got["op"].String() != "query" {
		t.Errorf("op: got %q, want query", got["op"].String())
	}
	if got["sql"].String() != `SELECT 1` {
		t.Errorf("sql: got %q", got["sql"].String())
	}
}

func TestLoggingConnector_ArgsLogged(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER, name TEXT, note TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	handler.reset()

	if _, err := db.Exec(`INSERT INTO t (id, name, note) VALUES (?, ?, ?)`, 1, "narra", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got := lastSQL(t, handler)
	args, ok := got["args"].Any().([]string)
	if !ok {
		t.Fatalf("args type = %T, want []string", got["args"].Any())
	}
	want := []string{"1", "narra", "NULL"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestLoggingConnector_PreparedStatementLogged(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	stmt, err := db.Prepare(`SELECT id FROM t WHERE id > ?`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()
	handler.reset()

	rows, err := stmt.Query(3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	_ = rows.Close()

	got := lastSQL(t, handler)
	if got["op"].String() != "query" || got["sql"].String() != `SELECT id FROM t WHERE id > ?` {
		t.Errorf("record = op %q sql %q", got["op"].String(), got["sql"].String())
	}
}

func TestLoggingConnector_ErrorLogged(t *testing.T) {
	db, handler := openLogged(t)

	if _, err := db.Exec(`INSERT INTO missing (id) VALUES (1)`); err == nil {
		t.Fatal("insert into missing table succeeded")
	}
	var found bool
	for _, rec := range handler.recordsFor(t, "sql prepare failed") {
		if rec["error"].String() != "" {
			found = true
		}
	}
	for _, rec := range handler.recordsFor(t, "sql") {
		if _, ok := rec["error"]; ok {
			found = true
		}
	}
	if !found {
		t.Error("expected the failing statement to be logged with its error")
	}
}

func TestLoggingConnector_MultiStatementExec(t *testing.T) {
	db, _ := openLogged(t)

	script := `
		CREATE TABLE a (id INTEGER);
		CREATE TABLE b (id INTEGER);
		INSERT INTO b (id) VALUES (7);
	`
	if _, err := db.Exec(script); err != nil {
		t.Fatalf("exec script: %v", err)
	}
	var id int
	if err := db.QueryRow(`SELECT id FROM b`).Scan(&id); err != nil {
		t.Fatalf("select from second table: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestLoggingConnector_PingSucceeds(t *testing.T) {
	db, _ := openLogged(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
