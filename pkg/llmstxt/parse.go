package llmstxt

import (
	"bufio"
	"errors"
	"regexp"
	"strings"
)

// ErrNotLLMsTxt is returned by Parse when the input does not start with a
// "# title" heading.
var ErrNotLLMsTxt = errors.New("llmstxt: document does not start with a title heading")

// Document is a parsed llms.txt document.
type Document struct {
	Project   ProjectDescription `json:"project" yaml:"project"`
	Endpoints []Endpoint         `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
}

var (
	paramLine = regexp.MustCompile("^- `([^`]+)` \\(([^,]*), (required|optional)\\):\\s?(.*)$")
	linkLine  = regexp.MustCompile(`^- \[([^\]]*)\]\(([^)]*)\)\s*$`)
)

// LooksLikeLLMsTxt reports whether the first non-blank line of body is a
// level-one heading.
func LooksLikeLLMsTxt(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return isTitleLine(line)
	}
	return false
}

// isTitleLine matches "# title" and the bare "#" Render writes for an
// empty title.
func isTitleLine(line string) bool {
	return line == "#" || strings.HasPrefix(line, "# ")
}

type parseState int

const (
	stateHeader parseState = iota
	stateEndpoints
	stateSection
)

// Parse reads a document in the format produced by Render. Headings and
// bullets it does not recognise are ignored.
func Parse(body string) (*Document, error) {
	if !LooksLikeLLMsTxt(body) {
		return nil, ErrNotLLMsTxt
	}

	doc := &Document{}
	state := stateHeader
	var (
		summary   []string
		endpoint  *Endpoint
		section   *Section
		inParams  bool
		titleSeen bool
	)

	flushEndpoint := func() {
		if endpoint != nil {
			doc.Endpoints = append(doc.Endpoints, *endpoint)
			endpoint = nil
		}
		inParams = false
	}
	flushSection := func() {
		if section != nil {
			doc.Project.Sections = append(doc.Project.Sections, *section)
			section = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		switch {
		case !titleSeen && isTitleLine(line):
			doc.Project.Title = strings.TrimSpace(line[1:])
			titleSeen = true
			continue
		case line == APIEndpointsHeading:
			flushSection()
			state = stateEndpoints
			continue
		case strings.HasPrefix(line, "### ") && state == stateEndpoints:
			flushEndpoint()
			endpoint = parseEndpointHeading(line[4:])
			continue
		case strings.HasPrefix(line, "## "):
			flushEndpoint()
			flushSection()
			state = stateSection
			section = &Section{Name: strings.TrimSpace(line[3:])}
			continue
		case line == "":
			continue
		}

		switch state {
		case stateHeader:
			if strings.HasPrefix(line, "- ") {
				doc.Project.Notes = append(doc.Project.Notes, line[2:])
			} else {
				summary = append(summary, strings.TrimPrefix(line, "> "))
			}
		case stateEndpoints:
			if endpoint == nil {
				continue
			}
			if line == "**Parameters:**" {
				inParams = true
				continue
			}
			if inParams {
				if m := paramLine.FindStringSubmatch(line); m != nil {
					p := Param{Name: m[1], Type: m[2], Description: m[4]}
					if m[3] == "optional" {
						p.HasDefault = true
					}
					endpoint.Params = append(endpoint.Params, p)
				}
				continue
			}
			switch {
			case endpoint.Summary == "":
				endpoint.Summary = line
			case endpoint.Description == "":
				endpoint.Description = line
			default:
				endpoint.Description += "\n" + line
			}
		case stateSection:
			if m := linkLine.FindStringSubmatch(line); m != nil {
				section.Links = append(section.Links, LinkItem{Title: m[1], URL: m[2]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flushEndpoint()
	flushSection()

	doc.Project.Summary = strings.Join(summary, "\n")
	return doc, nil
}

func parseEndpointHeading(heading string) *Endpoint {
	heading = strings.TrimSpace(heading)
	i := strings.LastIndexByte(heading, ' ')
	if i < 0 {
		return &Endpoint{Path: heading}
	}
	ep := &Endpoint{Path: heading[i+1:]}
	for _, m := range strings.Split(heading[:i], ",") {
		if m = strings.TrimSpace(m); m != "" {
			ep.Methods = append(ep.Methods, m)
		}
	}
	return ep
}
