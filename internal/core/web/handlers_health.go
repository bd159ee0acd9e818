package web

import (
	"context"
	"net/http"
	"time"
)

// handleHealthz reports liveness and whether the database answers a ping.
func (ws *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthzResponse{
		Status:        "ok",
		Database:      "ok",
		UptimeSeconds: ws.now().Sub(ws.started).Seconds(),
	}
	status := http.StatusOK
	if err := ws.db.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	ws.writeJSON(w, status, resp)
}
