package web

import "github.com/seckatie/clipd/internal/core"

// listResponse is the envelope returned by GET /api/clips.
type listResponse struct {
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Items   []core.Clip `json:"items"`
}

type healthzResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
