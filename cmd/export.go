/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/core/export"
	"github.com/seckatie/clipd/internal/logger"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every clip as JSON, CSV or PDF",
	Long: `Export every clip, most recently updated first.

JSON output matches GET /api/export and can be loaded back with "clipd import".
PDF output needs a Chrome or Chromium binary (see CLIPD_CHROME_PATH).

Examples:
  clipd export > clips.json
  clipd export --format csv -o clips.csv
  clipd export --format pdf -o clips.pdf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportCmd(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", string(export.FormatJSON), "Output format: json, csv or pdf")
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}

// clipLister is the part of the database the export command needs.
type clipLister interface {
	ListAllClips(ctx context.Context) ([]core.Clip, error)
}

func runExportCmd(cmd *cobra.Command) error {
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to read --format: %w", err)
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to read --output: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	database, err := openDB(cfg, l)
	if err != nil {
		return err
	}
	defer database.Close()

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	var renderer export.Renderer
	if format == export.FormatPDF {
		renderer = newRenderer(cfg, l)
	}

	n, err := runExport(cmd.Context(), database, w, format, renderer, time.Now())
	if err != nil {
		return err
	}
	l.Info("export complete",
		logger.String("format", string(format)),
		logger.Int("clips", n))
	return nil
}

// runExport writes every clip from src to w and returns how many were written.
func runExport(ctx context.Context, src clipLister, w io.Writer, format export.Format, r export.Renderer, at time.Time) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	clips, err := src.ListAllClips(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list clips: %w", err)
	}
	if err := export.Write(ctx, w, format, r, clips, at); err != nil {
		return 0, fmt.Errorf("failed to export clips: %w", err)
	}
	return len(clips), nil
}
