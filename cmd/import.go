/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seckatie/clipd/internal/core/importer"
	"github.com/seckatie/clipd/internal/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import clips from a JSON export or a browser bookmark file",
	Long: `Import clips into the database.

The file may be a JSON array produced by "clipd export" or GET /api/export,
or a Netscape bookmark HTML file exported from a browser. Bookmark folders
become tags. Entries that fail validation are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImportCmd(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImportCmd(cmd *cobra.Command, path string) error {
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

	res, err := runImport(cmd.Context(), database, path, l)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d clip(s), skipped %d\n", res.Imported, res.Skipped)
	return nil
}

// runImport reads the file at path and stores its clips in s.
func runImport(ctx context.Context, s importer.Store, path string, l logger.Logger) (importer.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	clips, err := importer.Parse(data)
	if err != nil {
		return importer.Result{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return importer.Import(ctx, s, clips, l.With(logger.String("file", path)))
}
