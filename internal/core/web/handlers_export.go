package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/seckatie/clipd/internal/core/export"
	"github.com/seckatie/clipd/internal/logger"
)

func (ws *Server) exportJSON(w http.ResponseWriter, r *http.Request) {
	clips, err := ws.db.ListAllClips(r.Context())
	if err != nil {
		ws.writeError(w, r, err, "export json")
		return
	}

	ws.writeJSON(w, http.StatusOK, clips)
}

func (ws *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	clips, err := ws.db.ListAllClips(r.Context())
	if err != nil {
		ws.writeError(w, r, err, "export csv")
		return
	}

	setAttachment(w, export.FormatCSV, ws.now())
	if err := export.WriteCSV(w, clips); err != nil {
		ws.logger.Warn("failed to write csv export", logger.Error(err))
	}
}

func (ws *Server) exportPDF(w http.ResponseWriter, r *http.Request) {
	clips, err := ws.db.ListAllClips(r.Context())
	if err != nil {
		ws.writeError(w, r, err, "export pdf")
		return
	}

	renderer := ws.renderer
	if renderer == nil {
		renderer = unavailableRenderer{}
	}

	exportedAt := ws.now()
	pdf, err := export.RenderPDF(r.Context(), renderer, clips, exportedAt)
	if err != nil {
		if errors.Is(err, export.ErrRendererUnavailable) {
			ws.logger.Warn("pdf export unavailable", logger.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ws.writeError(w, r, err, "export pdf")
		return
	}

	setAttachment(w, export.FormatPDF, exportedAt)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		ws.logger.Warn("failed to write pdf export", logger.Error(err))
	}
}

func setAttachment(w http.ResponseWriter, f export.Format, at time.Time) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(f, at)))
}

type unavailableRenderer struct{}

func (unavailableRenderer) RenderPDF(_ context.Context, _ string) ([]byte, error) {
	return nil, fmt.Errorf("%w: PDF export is disabled", export.ErrRendererUnavailable)
}
