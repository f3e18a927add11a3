package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

func newFetchCmd(c *cli) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the llms.txt document from the server",
		Long: `Fetch the llms.txt document from the server.

With -o text the document is printed as served. The table, json and yaml
formats parse it first and show its endpoints and links.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := c.output()
			if err := checkOutput(format, "text", "table", "json", "yaml"); err != nil {
				return err
			}

			body, err := newClient(c.serverURL()).getText(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "text" {
				fprintf(out, "%s", body)
				return nil
			}

			doc, err := llmstxt.Parse(body)
			if err != nil {
				return fmt.Errorf("%s%s: %w", c.serverURL(), path, err)
			}
			if format == "table" {
				printDocumentTable(cmd, doc)
				return nil
			}
			return printOutput(out, format, doc)
		},
	}

	cmd.Flags().StringVar(&path, "path", llmstxt.DefaultPath, "Path the document is served on")
	return cmd
}

func printDocumentTable(cmd *cobra.Command, doc *llmstxt.Document) {
	out := cmd.OutOrStdout()
	fprintf(out, "%s\n%s\n\n", doc.Project.Title, doc.Project.Summary)

	if len(doc.Endpoints) > 0 {
		table := make([][]string, 0, len(doc.Endpoints))
		for _, ep := range doc.Endpoints {
			table = append(table, []string{
				ep.Method(),
				ep.Path,
				truncate(ep.Summary, 50),
				strconv.Itoa(len(ep.Params)),
			})
		}
		printTable(out, []string{"Method", "Path", "Summary", "Params"}, table)
	}

	var links [][]string
	for _, section := range doc.Project.Sections {
		for _, link := range section.Links {
			links = append(links, []string{section.Name, link.Title, link.URL})
		}
	}
	if len(links) > 0 {
		if len(doc.Endpoints) > 0 {
			fprintf(out, "\n")
		}
		printTable(out, []string{"Section", "Title", "URL"}, links)
	}
}
