package llmstxt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		link    LinkItem
		wantErr error
	}{
		{name: "valid https", link: LinkItem{Title: "Docs", URL: "https://example.com/docs"}},
		{name: "valid http with port", link: LinkItem{Title: "Local", URL: "http://localhost:8080/openapi.json"}},
		{name: "missing title", link: LinkItem{URL: "https://example.com"}, wantErr: ErrLinkMissingTitle},
		{name: "missing url", link: LinkItem{Title: "Docs"}, wantErr: ErrLinkInvalidURL},
		{name: "relative url", link: LinkItem{Title: "Docs", URL: "/docs"}, wantErr: ErrLinkInvalidURL},
		{name: "ftp scheme", link: LinkItem{Title: "Docs", URL: "ftp://example.com/docs"}, wantErr: ErrLinkInvalidURL},
		{name: "no host", link: LinkItem{Title: "Docs", URL: "https:///docs"}, wantErr: ErrLinkInvalidURL},
		{name: "unparseable", link: LinkItem{Title: "Docs", URL: "https://exa mple.com/%zz"}, wantErr: ErrLinkInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.link.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSections_KeepsOrderAndEmptySections(t *testing.T) {
	sections := []Section{
		{Name: "Docs", Links: []LinkItem{
			{Title: "A", URL: "https://a.example.com"},
			{Title: "bad", URL: "nope"},
			{Title: "B", URL: "https://b.example.com"},
		}},
		{Name: "Broken", Links: []LinkItem{{Title: "", URL: "https://c.example.com"}}},
	}

	cleaned, problems := ValidateSections(sections)
	require.Len(t, cleaned, 2)
	assert.Equal(t, []LinkItem{
		{Title: "A", URL: "https://a.example.com"},
		{Title: "B", URL: "https://b.example.com"},
	}, cleaned[0].Links)
	assert.Equal(t, "Broken", cleaned[1].Name)
	assert.Empty(t, cleaned[1].Links)

	require.Len(t, problems, 2)
	assert.Equal(t, "Docs", problems[0].Section)
	assert.Equal(t, 1, problems[0].Index)
	assert.ErrorIs(t, problems[0], ErrLinkInvalidURL)
	assert.ErrorIs(t, problems[1], ErrLinkMissingTitle)

	// The input is left untouched.
	assert.Len(t, sections[0].Links, 3)
}

func TestSectionsFromMap(t *testing.T) {
	assert.Nil(t, SectionsFromMap(nil))

	got := SectionsFromMap(map[string][]LinkItem{
		"SDKs":          {{Title: "Python SDK", URL: "https://github.com/example/sdk-python"}},
		"Documentation": {{Title: "API Documentation", URL: "https://example.com/docs"}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Documentation", got[0].Name)
	assert.Equal(t, "SDKs", got[1].Name)
}

func TestProjectDescriptionClone(t *testing.T) {
	orig := ProjectDescription{
		Title:    "T",
		Summary:  "S",
		Notes:    []string{"n"},
		Sections: []Section{{Name: "Docs", Links: []LinkItem{{Title: "A", URL: "https://a.example.com"}}}},
	}
	clone := orig.Clone()
	clone.Notes[0] = "changed"
	clone.Sections[0].Links[0].Title = "changed"

	assert.Equal(t, "n", orig.Notes[0])
	assert.Equal(t, "A", orig.Sections[0].Links[0].Title)
}
