package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux returns a mux serving /healthz and /metrics. Feature modules register
// their own routes on it. mqtt may be nil.
func NewMux(db *sql.DB, mqtt ConnectionStatus, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, mqtt, logger)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}
