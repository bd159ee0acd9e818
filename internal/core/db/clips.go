package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/logger"
)

// ------------------------------
// Clip methods
// ------------------------------

func (db *DB) GetClip(ctx context.Context, id int64) (core.Clip, error) {
	return db.getClip(ctx, db.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) getClip(ctx context.Context, q queryRower, id int64) (core.Clip, error) {
	row := q.QueryRowContext(ctx, db.dialect.rebind("SELECT "+clipColumns+" FROM clips WHERE id = ?"), id)
	c, err := scanClip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Clip{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return core.Clip{}, fmt.Errorf("failed to get clip: %w", err)
	}
	return c, nil
}

// CreateClip validates in and inserts a new clip. Both timestamps are set to
// the current time. Emits a ClipCreatedEvent after a successful insert.
func (db *DB) CreateClip(ctx context.Context, in core.CreateInput) (core.Clip, error) {
	c, err := in.Build()
	if err != nil {
		return core.Clip{}, err
	}

	now := db.timestamp()
	c.CreatedAt, c.UpdatedAt = now, now
	return db.insert(ctx, c)
}

// ImportClip inserts c under a new id, keeping its timestamps when present.
// Fields are validated the same way as CreateClip.
func (db *DB) ImportClip(ctx context.Context, c core.Clip) (core.Clip, error) {
	built, err := core.CreateInput{
		Kind:    string(c.Kind),
		Title:   c.Title,
		Content: c.Content,
		URL:     c.URL,
		Tags:    c.Tags,
	}.Build()
	if err != nil {
		return core.Clip{}, err
	}

	now := db.timestamp()
	built.CreatedAt = c.CreatedAt.UTC()
	built.UpdatedAt = c.UpdatedAt.UTC()
	if built.CreatedAt.IsZero() {
		built.CreatedAt = now
	}
	if built.UpdatedAt.Before(built.CreatedAt) {
		built.UpdatedAt = built.CreatedAt
	}
	return db.insert(ctx, built)
}

func (db *DB) insert(ctx context.Context, c core.Clip) (core.Clip, error) {
	err := db.db.QueryRowContext(ctx, db.dialect.rebind(`
		INSERT INTO clips (kind, title, content, url, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		string(c.Kind),
		c.Title,
		c.Content,
		nullableString(c.URL),
		c.Tags.String(),
		formatTimestamp(c.CreatedAt),
		formatTimestamp(c.UpdatedAt),
	).Scan(&c.ID)
	if err != nil {
		return core.Clip{}, fmt.Errorf("failed to add clip: %w", err)
	}

	// Round-trip through the storage precision so callers see what a read returns.
	c.CreatedAt, _ = parseTimestamp(formatTimestamp(c.CreatedAt))
	c.UpdatedAt, _ = parseTimestamp(formatTimestamp(c.UpdatedAt))

	db.emit(ClipCreatedEvent{Clip: c})
	return c, nil
}

// UpdateClip applies the supplied fields to an existing clip and refreshes
// updated_at. Returns ErrNotFound for unknown ids and a core.ValidationError
// when the input is rejected, in which case nothing is written.
// Emits a ClipUpdatedEvent after a successful update.
func (db *DB) UpdateClip(ctx context.Context, id int64, in core.UpdateInput) (core.Clip, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Clip{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := db.getClip(ctx, tx, id)
	if err != nil {
		return core.Clip{}, err
	}
	if err := in.Apply(&c); err != nil {
		return core.Clip{}, err
	}

	c.UpdatedAt = db.timestamp()
	if c.UpdatedAt.Before(c.CreatedAt) {
		c.UpdatedAt = c.CreatedAt
	}

	_, err = tx.ExecContext(ctx, db.dialect.rebind(`
		UPDATE clips
		SET title = ?, content = ?, url = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`),
		c.Title,
		c.Content,
		nullableString(c.URL),
		c.Tags.String(),
		formatTimestamp(c.UpdatedAt),
		id,
	)
	if err != nil {
		return core.Clip{}, fmt.Errorf("failed to update clip: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Clip{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.emit(ClipUpdatedEvent{Clip: c})
	return c, nil
}

// DeleteClip permanently removes a clip.
// Emits a ClipDeletedEvent after successful deletion.
func (db *DB) DeleteClip(ctx context.Context, id int64) error {
	// Fetch the clip before deletion to include in the event
	c, _ := db.GetClip(ctx, id)

	res, err := db.db.ExecContext(ctx, db.dialect.rebind("DELETE FROM clips WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if c.ID == 0 {
		c.ID = id
	}
	db.emit(ClipDeletedEvent{Clip: c})
	return nil
}

// SearchClips returns one page of clips matching f, newest update first,
// together with the number of matches before pagination.
func (db *DB) SearchClips(ctx context.Context, f Filter) ([]core.Clip, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := db.db.QueryRowContext(ctx, db.dialect.rebind("SELECT COUNT(*) FROM clips"+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clips: %w", err)
	}

	query := "SELECT " + clipColumns + " FROM clips" + where + " ORDER BY updated_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	clips, err := db.queryClips(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return clips, total, nil
}

// ListAllClips returns every clip, newest update first.
func (db *DB) ListAllClips(ctx context.Context) ([]core.Clip, error) {
	return db.queryClips(ctx, "SELECT "+clipColumns+" FROM clips ORDER BY updated_at DESC, id DESC")
}

// CountClips returns the number of stored clips.
func (db *DB) CountClips(ctx context.Context) (int, error) {
	var n int
	if err := db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clips").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clips: %w", err)
	}
	return n, nil
}

// TagStrings returns the raw tag string of every tagged clip in insertion order.
func (db *DB) TagStrings(ctx context.Context) ([]string, error) {
	rows, err := db.db.QueryContext(ctx, "SELECT tags FROM clips WHERE tags <> '' ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer db.closeRows(rows)

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan tags: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return out, nil
}

// TagCounts aggregates tag frequencies across all clips.
func (db *DB) TagCounts(ctx context.Context) ([]core.TagCount, error) {
	tagStrings, err := db.TagStrings(ctx)
	if err != nil {
		return nil, err
	}
	return core.CountTags(tagStrings), nil
}

func (db *DB) queryClips(ctx context.Context, query string, args ...any) ([]core.Clip, error) {
	rows, err := db.db.QueryContext(ctx, db.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer db.closeRows(rows)

	out := []core.Clip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	return out, nil
}

func (db *DB) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		db.logger.Warn("failed to close rows", logger.Error(err))
	}
}

// buildWhere turns a Filter into a WHERE clause with ? placeholders.
func buildWhere(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q := strings.TrimSpace(f.Query); q != "" {
		like := likePattern(q)
		conds = append(conds, `(LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(content) LIKE LOWER(?) ESCAPE '\' OR LOWER(tags) LIKE LOWER(?) ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		conds = append(conds, `LOWER(tags) LIKE LOWER(?) ESCAPE '\'`)
		args = append(args, likePattern(tag))
	}
	if _, ok := core.ParseKind(string(f.Kind)); ok {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring LIKE match, escaping wildcards.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
