package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/seckatie/clipd/internal/core"
)

const clipColumns = "id, kind, title, content, url, tags, created_at, updated_at"

// Filter selects clips for SearchClips. Zero values disable a condition.
type Filter struct {
	// Query matches title, content or tags as a case-insensitive substring.
	Query string
	// Tag matches the tag string as a case-insensitive substring.
	Tag string
	// Kind restricts results to one kind when set.
	Kind core.Kind
	// Limit bounds the number of returned clips; <= 0 means no limit.
	Limit  int
	Offset int
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (core.Clip, error) {
	var (
		c                core.Clip
		kind, tags       string
		url              sql.NullString
		created, updated string
	)
	if err := row.Scan(&c.ID, &kind, &c.Title, &c.Content, &url, &tags, &created, &updated); err != nil {
		return core.Clip{}, err
	}

	c.Kind = core.Kind(kind)
	if url.Valid {
		u := url.String
		c.URL = &u
	}
	c.Tags = core.ParseTags(tags)

	var err error
	if c.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.Clip{}, err
	}
	if c.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return core.Clip{}, err
	}
	return c, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(core.TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(core.TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
