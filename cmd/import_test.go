/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/seckatie/clipd/internal/logger"
)

const bookmarkFile = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3>Reading</H3>
    <DL><p>
        <DT><A HREF="https://go.dev/blog" ADD_DATE="1700000000">The Go Blog</A>
        <DT><A HREF="javascript:void(0)">Bookmarklet</A>
    </DL><p>
    <DT><A HREF="https://example.com">Example</A>
</DL><p>
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestImportCmd_Args(t *testing.T) {
	if err := importCmd.Args(importCmd, nil); err == nil {
		t.Error("expected an error when no file is given")
	}
	if err := importCmd.Args(importCmd, []string{"a.json"}); err != nil {
		t.Errorf("expected one file to be accepted, got %v", err)
	}
}

func TestRunImport(t *testing.T) {
	t.Run("bookmark file", func(t *testing.T) {
		database := newCmdTestDB(t)
		path := writeFile(t, "bookmarks.html", bookmarkFile)

		res, err := runImport(context.Background(), database, path, logger.Nop())
		if err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		if res.Imported != 2 {
			t.Errorf("expected 2 imported, got %+v", res)
		}

		clips, err := database.ListAllClips(context.Background())
		if err != nil {
			t.Fatalf("failed to list clips: %v", err)
		}
		byTitle := map[string]string{}
		for _, c := range clips {
			byTitle[c.Title] = c.Tags.String()
		}
		if tags, ok := byTitle["The Go Blog"]; !ok || tags != "Reading" {
			t.Errorf("expected The Go Blog tagged Reading, got %q (present=%v)", tags, ok)
		}
		if _, ok := byTitle["Bookmarklet"]; ok {
			t.Error("expected javascript: bookmarks to be ignored")
		}
	})

	t.Run("invalid entries are skipped", func(t *testing.T) {
		database := newCmdTestDB(t)
		path := writeFile(t, "clips.json", `[
			{"kind": "note", "title": "kept", "content": "", "url": null, "tags": ""},
			{"kind": "note", "title": "   ", "content": "", "url": null, "tags": ""}
		]`)

		res, err := runImport(context.Background(), database, path, logger.Nop())
		if err != nil {
			t.Fatalf("runImport() error = %v", err)
		}
		if res.Imported != 1 || res.Skipped != 1 {
			t.Errorf("expected 1 imported and 1 skipped, got %+v", res)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		database := newCmdTestDB(t)

		if _, err := runImport(context.Background(), database, filepath.Join(t.TempDir(), "nope.json"), logger.Nop()); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("unrecognized format", func(t *testing.T) {
		database := newCmdTestDB(t)
		path := writeFile(t, "clips.txt", "just some text")

		if _, err := runImport(context.Background(), database, path, logger.Nop()); err == nil {
			t.Error("expected an error for an unrecognized file")
		}
	})
}
