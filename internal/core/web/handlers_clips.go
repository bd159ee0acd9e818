package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/core/db"
)

func (ws *Server) listClips(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, ok := intParam(w, query.Get("page"), "page", core.DefaultPage)
	if !ok {
		return
	}
	perPage, ok := intParam(w, query.Get("per_page"), "per_page", core.DefaultPerPage)
	if !ok {
		return
	}
	if page < 1 {
		page = core.DefaultPage
	}
	if perPage < 1 {
		perPage = core.DefaultPerPage
	}
	perPage = min(perPage, ws.maxPerPage)

	filter := db.Filter{
		Query:  strings.TrimSpace(query.Get("q")),
		Tag:    strings.TrimSpace(query.Get("tag")),
		Kind:   core.Kind(strings.TrimSpace(query.Get("kind"))),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	clips, total, err := ws.db.SearchClips(r.Context(), filter)
	if err != nil {
		ws.writeError(w, r, err, "list clips")
		return
	}

	ws.writeJSON(w, http.StatusOK, listResponse{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Items:   clips,
	})
}

// intParam parses an optional 32-bit integer query parameter.
func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return int(n), true
}

func (ws *Server) createClip(w http.ResponseWriter, r *http.Request) {
	var in core.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}

	clip, err := ws.db.CreateClip(r.Context(), in)
	if err != nil {
		ws.writeError(w, r, err, "create clip")
		return
	}

	ws.writeJSON(w, http.StatusCreated, clip)
}

func (ws *Server) getClip(w http.ResponseWriter, r *http.Request) {
	id, ok := clipID(w, r)
	if !ok {
		return
	}

	clip, err := ws.db.GetClip(r.Context(), id)
	if err != nil {
		ws.writeError(w, r, err, "get clip")
		return
	}

	ws.writeJSON(w, http.StatusOK, clip)
}

func (ws *Server) updateClip(w http.ResponseWriter, r *http.Request) {
	id, ok := clipID(w, r)
	if !ok {
		return
	}

	var in core.UpdateInput
	if !decodeBody(w, r, &in) {
		return
	}

	clip, err := ws.db.UpdateClip(r.Context(), id, in)
	if err != nil {
		ws.writeError(w, r, err, "update clip")
		return
	}

	ws.writeJSON(w, http.StatusOK, clip)
}

func (ws *Server) deleteClip(w http.ResponseWriter, r *http.Request) {
	id, ok := clipID(w, r)
	if !ok {
		return
	}

	if err := ws.db.DeleteClip(r.Context(), id); err != nil {
		ws.writeError(w, r, err, "delete clip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (ws *Server) listTags(w http.ResponseWriter, r *http.Request) {
	counts, err := ws.tags.TagCounts(r.Context())
	if err != nil {
		ws.writeError(w, r, err, "list tags")
		return
	}
	if counts == nil {
		counts = []core.TagCount{}
	}

	ws.writeJSON(w, http.StatusOK, counts)
}
