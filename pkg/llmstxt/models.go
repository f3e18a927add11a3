package llmstxt

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
)

// ErrLinkMissingTitle is returned by LinkItem.Validate for links without a title.
var ErrLinkMissingTitle = errors.New("link must have a title")

// ErrLinkInvalidURL is returned by LinkItem.Validate for links whose URL is
// not an absolute http or https URL.
var ErrLinkInvalidURL = errors.New("link must have an absolute http(s) url")

// LinkItem is a single link rendered as "- [title](url)".
type LinkItem struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	URL   string `json:"url" yaml:"url" toml:"url"`
}

// Validate reports whether the link can be rendered.
func (l LinkItem) Validate() error {
	if l.Title == "" {
		return ErrLinkMissingTitle
	}
	if l.URL == "" {
		return fmt.Errorf("%w: url is empty", ErrLinkInvalidURL)
	}
	u, err := url.Parse(l.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLinkInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrLinkInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrLinkInvalidURL)
	}
	return nil
}

// Section is a named group of links rendered under its own "## name" heading.
type Section struct {
	Name  string     `json:"name" yaml:"name" toml:"name"`
	Links []LinkItem `json:"links" yaml:"links" toml:"links"`
}

// ProjectDescription is the caller-supplied part of an llms.txt document.
type ProjectDescription struct {
	Title    string    `json:"title" yaml:"title" toml:"title"`
	Summary  string    `json:"summary" yaml:"summary" toml:"summary"`
	Notes    []string  `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty" toml:"sections,omitempty"`
}

// Clone returns a deep copy of p.
func (p ProjectDescription) Clone() ProjectDescription {
	out := ProjectDescription{Title: p.Title, Summary: p.Summary}
	if p.Notes != nil {
		out.Notes = append([]string(nil), p.Notes...)
	}
	if p.Sections != nil {
		out.Sections = make([]Section, len(p.Sections))
		for i, s := range p.Sections {
			out.Sections[i] = Section{Name: s.Name, Links: append([]LinkItem(nil), s.Links...)}
		}
	}
	return out
}

// SectionsFromMap converts a name-to-links mapping into sections ordered by name.
func SectionsFromMap(m map[string][]LinkItem) []Section {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, Section{Name: name, Links: m[name]})
	}
	return sections
}

// LinkError describes a link that was dropped from a section.
type LinkError struct {
	Section string
	Index   int
	Link    LinkItem
	Err     error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("section %q link %d: %v", e.Section, e.Index, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// ValidateSections returns copies of sections with invalid links removed,
// together with one LinkError per dropped link. Sections themselves are kept
// even when all of their links were dropped.
func ValidateSections(sections []Section) ([]Section, []*LinkError) {
	if sections == nil {
		return nil, nil
	}
	var problems []*LinkError
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		kept := make([]LinkItem, 0, len(s.Links))
		for i, link := range s.Links {
			if err := link.Validate(); err != nil {
				problems = append(problems, &LinkError{Section: s.Name, Index: i, Link: link, Err: err})
				continue
			}
			kept = append(kept, link)
		}
		out = append(out, Section{Name: s.Name, Links: kept})
	}
	return out, problems
}

// CleanSections drops invalid links and logs each one at warn level.
func CleanSections(sections []Section, logger *slog.Logger) []Section {
	if logger == nil {
		logger = slog.Default()
	}
	cleaned, problems := ValidateSections(sections)
	for _, p := range problems {
		logger.Warn("skipping invalid llms.txt link",
			"section", p.Section,
			"index", p.Index,
			"title", p.Link.Title,
			"url", p.Link.URL,
			"error", p.Err)
	}
	return cleaned
}
