package controllers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks that the database connection is alive
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthController reports whether the database answers
type HealthController struct {
	DB Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{DB: db}
}

// Health answers 200 when the database responds and 503 otherwise
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := hc.DB.PingContext(ctx); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
