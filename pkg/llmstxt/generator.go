package llmstxt

import (
	"fmt"
	"strings"
)

// APIEndpointsHeading introduces the generated endpoint block.
const APIEndpointsHeading = "## API Endpoints"

// Render builds the llms.txt document for project and endpoints. The API
// block is omitted when endpoints contains nothing renderable. Identical
// inputs always produce identical output.
func Render(project ProjectDescription, endpoints []Endpoint) string {
	lines := []string{
		"# " + project.Title,
		"",
		project.Summary,
		"",
	}

	if len(project.Notes) > 0 {
		for _, note := range project.Notes {
			lines = append(lines, "- "+note)
		}
		lines = append(lines, "")
	}

	lines = append(lines, renderEndpoints(endpoints)...)

	for _, section := range project.Sections {
		lines = append(lines, "## "+section.Name, "")
		for _, link := range section.Links {
			lines = append(lines, fmt.Sprintf("- [%s](%s)", link.Title, link.URL))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func renderEndpoints(endpoints []Endpoint) []string {
	lines := []string{APIEndpointsHeading, ""}
	rendered := false

	for _, ep := range endpoints {
		if ep.Path == "" {
			continue
		}
		rendered = true

		lines = append(lines, fmt.Sprintf("### %s %s", ep.Method(), ep.Path), "")
		if ep.Summary != "" {
			lines = append(lines, ep.Summary, "")
		}
		if ep.Description != "" {
			lines = append(lines, ep.Description, "")
		}
		if len(ep.Params) > 0 {
			lines = append(lines, "**Parameters:**", "")
			for _, p := range ep.Params {
				lines = append(lines, renderParam(p))
			}
			lines = append(lines, "")
		}
	}

	if !rendered {
		return nil
	}
	return lines
}

func renderParam(p Param) string {
	required := "optional"
	if p.Required() {
		required = "required"
	}
	return fmt.Sprintf("- `%s` (%s, %s): %s", p.Name, p.Type, required, p.Description)
}
