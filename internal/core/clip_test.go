package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"note", KindNote, true},
		{"bookmark", KindBookmark, true},
		{"", "", false},
		{"Note", "", false},
		{"link", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKind(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseKind(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCreateInputBuild(t *testing.T) {
	t.Run("defaults kind to note and normalizes tags", func(t *testing.T) {
		c, err := CreateInput{Title: "  Buy milk ", Tags: ParseTags("errand, home")}.Build()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Kind != KindNote {
			t.Errorf("expected kind note, got %q", c.Kind)
		}
		if c.Title != "Buy milk" {
			t.Errorf("expected trimmed title, got %q", c.Title)
		}
		if c.Tags.String() != "errand,home" {
			t.Errorf("expected tags 'errand,home', got %q", c.Tags.String())
		}
		if c.Content != "" {
			t.Errorf("expected empty content, got %q", c.Content)
		}
		if c.URL != nil {
			t.Errorf("expected nil URL, got %q", *c.URL)
		}
	})

	t.Run("rejects blank title", func(t *testing.T) {
		for _, title := range []string{"", "   ", "\t\n"} {
			_, err := CreateInput{Title: title}.Build()
			if !errors.Is(err, ErrValidation) {
				t.Errorf("title %q: expected validation error, got %v", title, err)
			}
			if err != nil && err.Error() != "Missing title" {
				t.Errorf("title %q: expected 'Missing title', got %q", title, err.Error())
			}
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := CreateInput{Title: "x", Kind: "video"}.Build()
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("accepts bookmark", func(t *testing.T) {
		u := "https://example.com"
		c, err := CreateInput{Title: "Example", Kind: "bookmark", URL: &u}.Build()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Kind != KindBookmark || c.URLString() != u {
			t.Errorf("unexpected clip %+v", c)
		}
	})

	t.Run("enforces length limits", func(t *testing.T) {
		long := strings.Repeat("a", MaxTitleLength+1)
		if _, err := (CreateInput{Title: long}).Build(); !errors.Is(err, ErrValidation) {
			t.Errorf("expected title length error, got %v", err)
		}

		u := strings.Repeat("u", MaxURLLength+1)
		if _, err := (CreateInput{Title: "x", URL: &u}).Build(); !errors.Is(err, ErrValidation) {
			t.Errorf("expected url length error, got %v", err)
		}

		tags := ParseTags(strings.Repeat("tag,", 100))
		if _, err := (CreateInput{Title: "x", Tags: tags}).Build(); !errors.Is(err, ErrValidation) {
			t.Errorf("expected tags length error, got %v", err)
		}
	})
}

func TestUpdateInputApply(t *testing.T) {
	base := func() Clip {
		u := "https://old.example"
		return Clip{ID: 1, Kind: KindNote, Title: "Old", Content: "old", URL: &u, Tags: Tags{"a", "b"}}
	}

	t.Run("absent fields are unchanged", func(t *testing.T) {
		c := base()
		if err := (UpdateInput{Content: Some("done")}).Apply(&c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Title != "Old" || c.Tags.String() != "a,b" || c.URLString() != "https://old.example" {
			t.Errorf("unexpected changes: %+v", c)
		}
		if c.Content != "done" {
			t.Errorf("expected content 'done', got %q", c.Content)
		}
	})

	t.Run("blank title rejected and clip untouched", func(t *testing.T) {
		c := base()
		err := UpdateInput{Title: Some("   "), Content: Some("new")}.Apply(&c)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if err.Error() != "Title cannot be empty" {
			t.Errorf("unexpected reason %q", err.Error())
		}
		if c.Title != "Old" || c.Content != "old" {
			t.Errorf("clip modified by rejected update: %+v", c)
		}
	})

	t.Run("null url clears it", func(t *testing.T) {
		c := base()
		if err := (UpdateInput{URL: Optional[string]{Set: true, Null: true}}).Apply(&c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.URL != nil {
			t.Errorf("expected nil URL, got %q", *c.URL)
		}
	})

	t.Run("tags re-normalized", func(t *testing.T) {
		c := base()
		if err := (UpdateInput{Tags: Some(Tags{" x ", "", "y,z"})}).Apply(&c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Tags.String() != "x,y,z" {
			t.Errorf("expected 'x,y,z', got %q", c.Tags.String())
		}
	})
}

func TestUpdateInputJSON(t *testing.T) {
	t.Run("distinguishes absent, null and value", func(t *testing.T) {
		var in UpdateInput
		if err := json.Unmarshal([]byte(`{"title": null, "content": "c"}`), &in); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if !in.Title.Set || !in.Title.Null {
			t.Errorf("expected title set and null, got %+v", in.Title)
		}
		if !in.Content.Set || in.Content.Value != "c" {
			t.Errorf("expected content 'c', got %+v", in.Content)
		}
		if in.URL.Set || in.Tags.Set {
			t.Error("expected url and tags to be absent")
		}
	})

	t.Run("empty body is empty", func(t *testing.T) {
		var in UpdateInput
		if err := json.Unmarshal([]byte(`{}`), &in); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if !in.Empty() {
			t.Error("expected empty input")
		}
	})
}
