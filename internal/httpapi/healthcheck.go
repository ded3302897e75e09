package httpapi

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/utils"
)

const healthcheckTimeout = 2 * time.Second

// ConnectionStatus reports whether a background connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db     *sql.DB
	mqtt   ConnectionStatus
	logger *slog.Logger
}

func NewHealthchecker(db *sql.DB, mqtt ConnectionStatus, logger *slog.Logger) healthchecker {
	return &healthcheckerImpl{db: db, mqtt: mqtt, logger: logger}
}

// handleHealthz fails only on the database. MQTT is reported but the service
// keeps serving HTTP without a broker.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
	defer cancel()

	var ok int
	if err := h.db.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		h.logger.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}

	body := map[string]string{"status": "ok", "database": "ok"}
	if h.mqtt != nil {
		body["mqtt"] = "disconnected"
		if h.mqtt.IsConnected() {
			body["mqtt"] = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, mqtt ConnectionStatus, logger *slog.Logger) {
	healthchecker := NewHealthchecker(db, mqtt, logger)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
