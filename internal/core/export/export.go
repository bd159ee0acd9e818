// Package export serializes clips as JSON, CSV, HTML and PDF.
package export

import (
	"context"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/seckatie/clipd/internal/core"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.New("export.html").
	Funcs(template.FuncMap{"timestamp": formatTime}).
	ParseFS(templatesFS, "templates/export.html"))

// Format is an export output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat returns the Format named by s, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Filename returns the download name for an export taken at t, for example
// clips_export_20250101T120000Z.pdf.
func Filename(f Format, t time.Time) string {
	return "clips_export_" + t.UTC().Format("20060102T150405Z") + "." + string(f)
}

// CSVHeader lists the CSV columns in order.
var CSVHeader = []string{"id", "kind", "title", "content", "url", "tags", "created_at", "updated_at"}

// WriteJSON writes clips as a JSON array.
func WriteJSON(w io.Writer, clips []core.Clip) error {
	if clips == nil {
		clips = []core.Clip{}
	}
	if err := json.NewEncoder(w).Encode(clips); err != nil {
		return fmt.Errorf("failed to encode clips: %w", err)
	}
	return nil
}

// WriteCSV writes clips as CSV with a header row.
func WriteCSV(w io.Writer, clips []core.Clip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range clips {
		record := []string{
			strconv.FormatInt(c.ID, 10),
			string(c.Kind),
			c.Title,
			c.Content,
			c.URLString(),
			c.Tags.String(),
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

type pageData struct {
	ExportedAt string
	Clips      []core.Clip
}

// WriteHTML renders clips into the printable export document.
func WriteHTML(w io.Writer, clips []core.Clip, exportedAt time.Time) error {
	data := pageData{ExportedAt: formatTime(exportedAt), Clips: clips}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render export template: %w", err)
	}
	return nil
}

// RenderPDF renders clips to HTML and converts the document with r.
func RenderPDF(ctx context.Context, r Renderer, clips []core.Clip, exportedAt time.Time) ([]byte, error) {
	var html strings.Builder
	if err := WriteHTML(&html, clips, exportedAt); err != nil {
		return nil, err
	}
	return r.RenderPDF(ctx, html.String())
}

// Write streams clips in format f. PDF output requires a Renderer.
func Write(ctx context.Context, w io.Writer, f Format, r Renderer, clips []core.Clip, exportedAt time.Time) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, clips)
	case FormatCSV:
		return WriteCSV(w, clips)
	case FormatPDF:
		if r == nil {
			return fmt.Errorf("%w: no renderer configured", ErrRendererUnavailable)
		}
		pdf, err := RenderPDF(ctx, r, clips, exportedAt)
		if err != nil {
			return err
		}
		_, err = w.Write(pdf)
		return err
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
