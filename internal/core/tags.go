package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tags is the ordered tag list of a clip. It travels as a comma-joined
// string on the wire and in the database.
type Tags []string

// ParseTags splits a comma-separated tag string, trimming each entry and
// dropping empty ones.
func ParseTags(s string) Tags {
	var out Tags
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Normalize trims entries, drops empty ones and splits any entry that
// still contains a comma.
func (t Tags) Normalize() Tags {
	return ParseTags(strings.Join(t, ","))
}

// String joins the tags with commas.
func (t Tags) String() string {
	return strings.Join(t, ",")
}

func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either a comma-separated string or an array of
// strings; null decodes to no tags.
func (t *Tags) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = ParseTags(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings")
	}
	*t = Tags(list).Normalize()
	return nil
}

// TagCount is the number of clips carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountTags counts the occurrences of each distinct tag across tagStrings. The
// result is ordered by count descending; equal counts keep the order in
// which the tags were first seen.
func CountTags(tagStrings []string) []TagCount {
	index := make(map[string]int)
	out := []TagCount{}
	for _, s := range tagStrings {
		for _, tag := range ParseTags(s) {
			if i, ok := index[tag]; ok {
				out[i].Count++
				continue
			}
			index[tag] = len(out)
			out = append(out, TagCount{Tag: tag, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
