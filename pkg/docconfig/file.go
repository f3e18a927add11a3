// Package docconfig loads llms.txt document configuration from YAML or TOML
// files and keeps it current while the file changes.
package docconfig

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config file format (expected .yaml, .yml or .toml)")

// ErrMissingTitle is returned by Validate when the document has no title.
var ErrMissingTitle = errors.New("title is required")

// Format is a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by the file extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// File is the on-disk document configuration.
//
//	title: Bookstore API
//	summary: An API for managing a bookstore catalog.
//	notes:
//	  - All prices are in USD.
//	sections:
//	  Documentation:
//	    - title: API Documentation
//	      url: https://example.com/bookstore-api/docs
//
// Sections keep the order they are written in.
type File struct {
	Title          string      `yaml:"title" toml:"title"`
	Summary        string      `yaml:"summary" toml:"summary"`
	Notes          []string    `yaml:"notes,omitempty" toml:"notes,omitempty"`
	Sections       SectionList `yaml:"sections,omitempty" toml:"sections,omitempty"`
	Path           string      `yaml:"path,omitempty" toml:"path,omitempty"`
	IncludeAPIDocs *bool       `yaml:"includeApiDocs,omitempty" toml:"includeApiDocs,omitempty"`
	Exclude        []string    `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// SectionList is an ordered list of link sections. In YAML it is written as
// a mapping from section name to links, and a list of {name, links} is
// accepted as well. In TOML it is an array of tables.
type SectionList []llmstxt.Section

// UnmarshalYAML decodes a mapping or a sequence, preserving order.
func (s *SectionList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(SectionList, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			var links []llmstxt.LinkItem
			if err := value.Decode(&links); err != nil {
				return fmt.Errorf("section %q: %w", key.Value, err)
			}
			out = append(out, llmstxt.Section{Name: key.Value, Links: links})
		}
		*s = out
		return nil
	case yaml.SequenceNode:
		var sections []llmstxt.Section
		if err := node.Decode(&sections); err != nil {
			return err
		}
		*s = sections
		return nil
	}
	return fmt.Errorf("line %d: sections must be a mapping or a list", node.Line)
}

// MarshalYAML writes sections as an ordered mapping.
func (s SectionList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, section := range s {
		var value yaml.Node
		links := section.Links
		if links == nil {
			links = []llmstxt.LinkItem{}
		}
		if err := value.Encode(links); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: section.Name},
			&value)
	}
	return node, nil
}

// Parse decodes data in the format implied by path. Unknown keys are errors.
func Parse(data []byte, path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	}
	return &f, nil
}

// Marshal encodes f in the given format.
func Marshal(f *File, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(f)
	}
	return nil, ErrUnsupportedFormat
}

// Validate returns ErrMissingTitle for untitled documents and one
// LinkError per link that would be dropped when rendering.
func (f *File) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, ErrMissingTitle)
	}
	_, problems := llmstxt.ValidateSections(f.Sections)
	for _, p := range problems {
		errs = append(errs, p)
	}
	return errors.Join(errs...)
}

// Project returns the project description held by f.
func (f *File) Project() llmstxt.ProjectDescription {
	return llmstxt.ProjectDescription{
		Title:    f.Title,
		Summary:  f.Summary,
		Notes:    f.Notes,
		Sections: []llmstxt.Section(f.Sections),
	}.Clone()
}

// ApplyTo overrides cfg with the settings present in f.
func (f *File) ApplyTo(cfg *llmstxt.Config) {
	if f.Path != "" {
		cfg.Path = f.Path
	}
	if f.IncludeAPIDocs != nil {
		cfg.IncludeAPIDocs = *f.IncludeAPIDocs
	}
	if len(f.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, f.Exclude...)
	}
}

// AddLink appends a link to the named section, creating it at the end when
// it does not exist.
func (f *File) AddLink(section string, link llmstxt.LinkItem) {
	for i := range f.Sections {
		if f.Sections[i].Name == section {
			f.Sections[i].Links = append(f.Sections[i].Links, link)
			return
		}
	}
	f.Sections = append(f.Sections, llmstxt.Section{Name: section, Links: []llmstxt.LinkItem{link}})
}
