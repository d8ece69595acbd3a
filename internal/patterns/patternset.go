// Package patterns holds site-specific selector candidates and resolves them
// against parsed pages.
package patterns

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the schema version written by Normalize.
const CurrentVersion = "2"

// Field names a logical piece of a forum page that selectors resolve.
type Field string

const (
	FieldPostContainer  Field = "post_container"
	FieldAuthor         Field = "author"
	FieldDate           Field = "date"
	FieldReactions      Field = "reactions"
	FieldAttachments    Field = "attachments"
	FieldPagination     Field = "pagination"
	FieldContentWrapper Field = "content_wrapper"
)

// Version accepts both the legacy numeric form (1.0) and strings.
type Version string

func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Version(s)
		return nil
	}
	if string(data) == "null" {
		*v = ""
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("pattern set version: %w", err)
	}
	*v = Version(strconv.FormatFloat(f, 'f', 1, 64))
	return nil
}

// Selectors are CSS selector candidates per field, most specific first.
type Selectors struct {
	PostContainer []string `json:"post_container,omitempty" yaml:"post_container,omitempty"`
	Author        []string `json:"author,omitempty" yaml:"author,omitempty"`
	Date          []string `json:"date,omitempty" yaml:"date,omitempty"`
	Reactions     []string `json:"reactions,omitempty" yaml:"reactions,omitempty"`
	Attachments   []string `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Pagination    []string `json:"pagination,omitempty" yaml:"pagination,omitempty"`
}

// Classes are bare class-name candidates.
type Classes struct {
	ContentWrapper []string `json:"content_wrapper,omitempty" yaml:"content_wrapper,omitempty"`
}

// Attributes name element attributes carrying identity.
type Attributes struct {
	PostID string `json:"post_id,omitempty" yaml:"post_id,omitempty"`
}

// PatternSet describes one site's HTML structure. Any field may be empty;
// empty fields fall back to the built-in defaults during resolution.
type PatternSet struct {
	Version         Version    `json:"version" yaml:"version"`
	ThreadURLSample string     `json:"thread_url_sample,omitempty" yaml:"thread_url_sample,omitempty"`
	Selectors       Selectors  `json:"selectors" yaml:"selectors"`
	Classes         Classes    `json:"classes" yaml:"classes"`
	Attributes      Attributes `json:"attributes" yaml:"attributes"`
}

// Defaults returns the built-in XenForo candidates.
func Defaults() *PatternSet {
	return &PatternSet{
		Version: CurrentVersion,
		Selectors: Selectors{
			PostContainer: []string{".message", "article.message"},
			Author:        []string{".username"},
			Date:          []string{"time[datetime]", ".u-dt"},
			Reactions:     []string{".reactionsBar"},
			Attachments:   []string{".attachment"},
			Pagination:    []string{".pageNav"},
		},
		Classes: Classes{
			ContentWrapper: []string{"bbWrapper"},
		},
		Attributes: Attributes{
			PostID: "data-content",
		},
	}
}

// list returns the raw candidates stored for a field.
func (p *PatternSet) list(field Field) []string {
	if p == nil {
		return nil
	}
	switch field {
	case FieldPostContainer:
		return p.Selectors.PostContainer
	case FieldAuthor:
		return p.Selectors.Author
	case FieldDate:
		return p.Selectors.Date
	case FieldReactions:
		return p.Selectors.Reactions
	case FieldAttachments:
		return p.Selectors.Attachments
	case FieldPagination:
		return p.Selectors.Pagination
	case FieldContentWrapper:
		sels := make([]string, 0, len(p.Classes.ContentWrapper))
		for _, class := range p.Classes.ContentWrapper {
			sels = append(sels, "div."+strings.TrimPrefix(strings.TrimSpace(class), "."))
		}
		return sels
	}
	return nil
}

// Candidates returns the site's candidates for field followed by any
// default candidates it does not already list.
func (p *PatternSet) Candidates(field Field) []string {
	return union(p.list(field), Defaults().list(field))
}

// PostIDAttribute returns the identity attribute, defaulting to data-content.
func (p *PatternSet) PostIDAttribute() string {
	if p != nil && p.Attributes.PostID != "" {
		return p.Attributes.PostID
	}
	return Defaults().Attributes.PostID
}

// Merge combines two sets without overwriting: primary candidates come first,
// secondary candidates not already present follow.
func Merge(primary, secondary *PatternSet) *PatternSet {
	if primary == nil {
		primary = &PatternSet{}
	}
	if secondary == nil {
		secondary = &PatternSet{}
	}
	out := &PatternSet{
		Version:         CurrentVersion,
		ThreadURLSample: primary.ThreadURLSample,
		Selectors: Selectors{
			PostContainer: union(primary.Selectors.PostContainer, secondary.Selectors.PostContainer),
			Author:        union(primary.Selectors.Author, secondary.Selectors.Author),
			Date:          union(primary.Selectors.Date, secondary.Selectors.Date),
			Reactions:     union(primary.Selectors.Reactions, secondary.Selectors.Reactions),
			Attachments:   union(primary.Selectors.Attachments, secondary.Selectors.Attachments),
			Pagination:    union(primary.Selectors.Pagination, secondary.Selectors.Pagination),
		},
		Classes: Classes{
			ContentWrapper: union(primary.Classes.ContentWrapper, secondary.Classes.ContentWrapper),
		},
		Attributes: primary.Attributes,
	}
	if out.ThreadURLSample == "" {
		out.ThreadURLSample = secondary.ThreadURLSample
	}
	if out.Attributes.PostID == "" {
		out.Attributes.PostID = secondary.Attributes.PostID
	}
	return out
}

// Normalize migrates a loaded set to the current schema in place: versions
// are stamped, candidates trimmed and deduplicated, class names stripped of
// a leading dot.
func (p *PatternSet) Normalize() *PatternSet {
	if p == nil {
		return nil
	}
	p.Version = CurrentVersion
	s := &p.Selectors
	s.PostContainer = clean(s.PostContainer)
	s.Author = clean(s.Author)
	s.Date = clean(s.Date)
	s.Reactions = clean(s.Reactions)
	s.Attachments = clean(s.Attachments)
	s.Pagination = clean(s.Pagination)

	classes := make([]string, 0, len(p.Classes.ContentWrapper))
	for _, c := range p.Classes.ContentWrapper {
		classes = append(classes, strings.TrimPrefix(strings.TrimSpace(c), "."))
	}
	p.Classes.ContentWrapper = clean(classes)
	p.Attributes.PostID = strings.TrimSpace(p.Attributes.PostID)
	return p
}

// LoadFile reads a pattern set from YAML (.yaml/.yml) or JSON and normalizes it.
func LoadFile(path string) (*PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var set PatternSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		err = json.Unmarshal(data, &set)
	}
	if err != nil {
		return nil, fmt.Errorf("parse pattern set %s: %w", path, err)
	}

	return set.Normalize(), nil
}

// ToYAML renders the set for display or saving.
func (p *PatternSet) ToYAML() ([]byte, error) {
	return yaml.Marshal(p)
}

func clean(in []string) []string {
	return union(in, nil)
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
