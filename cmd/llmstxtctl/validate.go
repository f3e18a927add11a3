package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-llmstxt/llmstxt/pkg/docconfig"
	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

var errValidationFailed = errors.New("validation failed")

type validationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Sections int      `json:"sections"`
	Links    int      `json:"links"`
	Problems []string `json:"problems,omitempty"`
}

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a document config file or an llms.txt document",
		Long: `Check a document config file (.yaml, .yml, .toml) or a rendered llms.txt
document (any other extension). Links without a title or an absolute http(s)
URL are reported, since they would be left out of the served document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := c.output()
			if err := checkOutput(format, "text", "table", "json", "yaml"); err != nil {
				return err
			}

			result, err := validateFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json", "yaml":
				if err := printOutput(out, format, result); err != nil {
					return err
				}
			case "table":
				rows := [][]string{{result.File, fmt.Sprint(result.Valid), fmt.Sprint(result.Sections), fmt.Sprint(result.Links)}}
				printTable(out, []string{"File", "Valid", "Sections", "Links"}, rows)
				for _, p := range result.Problems {
					fprintf(out, "  - %s\n", p)
				}
			default:
				if result.Valid {
					fprintf(out, "%s: ok (%d sections, %d links)\n", result.File, result.Sections, result.Links)
				}
				for _, p := range result.Problems {
					fprintf(out, "%s: %s\n", result.File, p)
				}
			}

			if !result.Valid {
				return errValidationFailed
			}
			return nil
		},
	}
}

func validateFile(ctx context.Context, path string) (*validationResult, error) {
	result := &validationResult{File: path}

	var (
		title    string
		sections []llmstxt.Section
	)
	if _, err := docconfig.FormatOf(path); err == nil {
		f, _, err := loadConfigFile(ctx, path)
		if err != nil {
			return nil, err
		}
		title, sections = f.Title, f.Sections
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		doc, err := llmstxt.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		title, sections = doc.Project.Title, doc.Project.Sections
	}

	if strings.TrimSpace(title) == "" {
		result.Problems = append(result.Problems, docconfig.ErrMissingTitle.Error())
	}
	_, problems := llmstxt.ValidateSections(sections)
	for _, p := range problems {
		result.Problems = append(result.Problems, p.Error())
	}

	result.Sections = len(sections)
	for _, s := range sections {
		result.Links += len(s.Links)
	}
	result.Valid = len(result.Problems) == 0
	return result, nil
}

// openStore returns a FileStore for path. Relative paths are resolved
// against the working directory first.
func openStore(path string) (*docconfig.FileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return docconfig.NewFileStore(abs)
}

func loadConfigFile(ctx context.Context, path string) (*docconfig.File, *docconfig.FileStore, error) {
	store, err := openStore(path)
	if err != nil {
		return nil, nil, err
	}
	f, _, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return f, store, nil
}
