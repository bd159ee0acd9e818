package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind distinguishes a free-text note from a URL-bearing bookmark.
type Kind string

const (
	KindNote     Kind = "note"
	KindBookmark Kind = "bookmark"
)

// ParseKind returns the Kind named by s and whether s names a known kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindNote, KindBookmark:
		return Kind(s), true
	default:
		return "", false
	}
}

// Clip is a single note or bookmark record.
type Clip struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       *string   `json:"url"`
	Tags      Tags      `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// URLString returns the clip URL or "" when unset.
func (c Clip) URLString() string {
	if c.URL == nil {
		return ""
	}
	return *c.URL
}

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a short client-facing reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// CreateInput is the request body accepted when creating a clip.
type CreateInput struct {
	Kind    string  `json:"kind"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     *string `json:"url"`
	Tags    Tags    `json:"tags"`
}

// Build validates the input and returns the clip it describes. ID and
// timestamps are left for the store to assign.
func (in CreateInput) Build() (Clip, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Clip{}, invalid("Missing title")
	}

	kind := KindNote
	if in.Kind != "" {
		k, ok := ParseKind(in.Kind)
		if !ok {
			return Clip{}, invalid("Invalid kind %q", in.Kind)
		}
		kind = k
	}

	c := Clip{
		Kind:    kind,
		Title:   title,
		Content: in.Content,
		URL:     in.URL,
		Tags:    in.Tags.Normalize(),
	}
	if err := checkLimits(c); err != nil {
		return Clip{}, err
	}
	return c, nil
}

// UpdateInput is the request body accepted when updating a clip. Fields
// missing from the body are left unchanged.
type UpdateInput struct {
	Title   Optional[string] `json:"title"`
	Content Optional[string] `json:"content"`
	URL     Optional[string] `json:"url"`
	Tags    Optional[Tags]   `json:"tags"`
}

// Empty reports whether no field was supplied.
func (in UpdateInput) Empty() bool {
	return !in.Title.Set && !in.Content.Set && !in.URL.Set && !in.Tags.Set
}

// Apply validates the input and writes the supplied fields into c. On error
// c is left untouched.
func (in UpdateInput) Apply(c *Clip) error {
	next := *c

	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if in.Title.Null || title == "" {
			return invalid("Title cannot be empty")
		}
		next.Title = title
	}
	if in.Content.Set {
		next.Content = in.Content.Value
	}
	if in.URL.Set {
		if in.URL.Null {
			next.URL = nil
		} else {
			u := in.URL.Value
			next.URL = &u
		}
	}
	if in.Tags.Set {
		next.Tags = in.Tags.Value.Normalize()
	}

	if err := checkLimits(next); err != nil {
		return err
	}
	*c = next
	return nil
}

func checkLimits(c Clip) error {
	if n := utf8.RuneCountInString(c.Title); n > MaxTitleLength {
		return invalid("Title exceeds %d characters", MaxTitleLength)
	}
	if n := utf8.RuneCountInString(c.URLString()); n > MaxURLLength {
		return invalid("URL exceeds %d characters", MaxURLLength)
	}
	if n := utf8.RuneCountInString(c.Tags.String()); n > MaxTagsLength {
		return invalid("Tags exceed %d characters", MaxTagsLength)
	}
	return nil
}
