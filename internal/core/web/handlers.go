package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/core/db"
	"github.com/seckatie/clipd/internal/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v with the given status code.
func (ws *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ws.logger.Warn("failed to write response", logger.Error(err))
	}
}

// writeError maps storage and validation errors onto status codes. Missing
// clips are a 404 with an empty body; anything unexpected is logged and
// reported as a 500.
func (ws *Server) writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, db.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.As(err, &verr):
		http.Error(w, verr.Reason, http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		ws.logger.Error("request failed",
			logger.String("action", action),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
}

// decodeBody reads a JSON object into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// clipID parses the {id} URL parameter. Non-numeric ids can never match a
// clip and are answered like unknown ones.
func clipID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}
	return id, true
}
