// Package importer loads clips from a JSON export or a browser bookmark file.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/logger"
)

// Format identifies an import file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatNetscape Format = "netscape"
)

// Store receives imported clips.
type Store interface {
	ImportClip(ctx context.Context, c core.Clip) (core.Clip, error)
}

// Result counts the outcome of an import.
type Result struct {
	Imported int
	Skipped  int
}

// Detect guesses the format of data from its first bytes.
func Detect(data []byte) (Format, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	switch {
	case len(trimmed) == 0:
		return "", errors.New("empty import file")
	case trimmed[0] == '[':
		return FormatJSON, nil
	case trimmed[0] == '<':
		return FormatNetscape, nil
	default:
		return "", errors.New("unrecognized import format: expected a JSON array or a bookmark HTML file")
	}
}

// Parse detects the format of data and decodes the clips it contains.
func Parse(data []byte) ([]core.Clip, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return ParseJSON(bytes.NewReader(data))
	}
	return ParseNetscape(bytes.NewReader(data))
}

// ParseJSON decodes an array of clips as written by the JSON export.
func ParseJSON(r io.Reader) ([]core.Clip, error) {
	var clips []core.Clip
	if err := json.NewDecoder(r).Decode(&clips); err != nil {
		return nil, fmt.Errorf("failed to decode clips: %w", err)
	}
	return clips, nil
}

// ParseNetscape extracts bookmarks from a Netscape bookmark file, the HTML
// format browsers use for bookmark exports. Enclosing folder names become
// tags ahead of any TAGS attribute, and a following <DD> becomes the content.
func ParseNetscape(r io.Reader) ([]core.Clip, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bookmark file: %w", err)
	}

	var clips []core.Clip
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = href
		}

		c := core.Clip{
			Kind:    core.KindBookmark,
			Title:   truncate(title, core.MaxTitleLength),
			Content: strings.TrimSpace(a.Parent().NextFiltered("dd").First().Text()),
			URL:     &href,
			Tags:    bookmarkTags(a),
		}
		if t, ok := unixAttr(a, "add_date"); ok {
			c.CreatedAt = t
		}
		if t, ok := unixAttr(a, "last_modified"); ok {
			c.UpdatedAt = t
		} else {
			c.UpdatedAt = c.CreatedAt
		}
		clips = append(clips, c)
	})
	return clips, nil
}

func bookmarkTags(a *goquery.Selection) core.Tags {
	var folders []string
	a.ParentsFiltered("dl").Each(func(_ int, dl *goquery.Selection) {
		if name := strings.TrimSpace(dl.PrevFiltered("h3").Text()); name != "" {
			folders = append(folders, name)
		}
	})

	var tags core.Tags
	seen := make(map[string]bool)
	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	// Outermost folder first.
	for i := len(folders) - 1; i >= 0; i-- {
		add(strings.ReplaceAll(folders[i], ",", " "))
	}
	for _, tag := range core.ParseTags(a.AttrOr("tags", "")) {
		add(tag)
	}
	return tags.Normalize()
}

func unixAttr(s *goquery.Selection, name string) (time.Time, bool) {
	v, ok := s.Attr(name)
	if !ok {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Import stores clips through s. Clips rejected by validation are logged
// and skipped; any other error stops the import.
func Import(ctx context.Context, s Store, clips []core.Clip, log logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}

	var res Result
	for i, c := range clips {
		if _, err := s.ImportClip(ctx, c); err != nil {
			if errors.Is(err, core.ErrValidation) {
				res.Skipped++
				log.Warn("skipping clip",
					logger.Int("index", i),
					logger.String("title", c.Title),
					logger.Error(err))
				continue
			}
			return res, fmt.Errorf("failed to import clip %d: %w", i, err)
		}
		res.Imported++
	}
	return res, nil
}
