package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-llmstxt/llmstxt/pkg/docconfig"
	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and edit document config files",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigAddLinkCmd())
	cmd.AddCommand(newConfigShowCmd(c))
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		title   string
		summary string
		notes   []string
	)

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Create a new document config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(args[0])
			if err != nil {
				return err
			}

			f := &docconfig.File{Title: title, Summary: summary, Notes: notes}
			if err := f.Validate(); err != nil {
				return err
			}

			if _, err := store.Save(cmd.Context(), f, ""); err != nil {
				if errors.Is(err, docconfig.ErrVersionConflict) {
					return fmt.Errorf("%s already exists", args[0])
				}
				return err
			}
			fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title (required)")
	cmd.Flags().StringVar(&summary, "summary", "", "One-paragraph project summary")
	cmd.Flags().StringArrayVar(&notes, "note", nil, "Note rendered under the summary (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newConfigAddLinkCmd() *cobra.Command {
	var (
		section string
		link    llmstxt.LinkItem
	)

	cmd := &cobra.Command{
		Use:   "add-link <file>",
		Short: "Add a link to a section of a document config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := link.Validate(); err != nil {
				return err
			}

			f, store, err := loadConfigFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f.AddLink(section, link)

			if _, err := store.Save(cmd.Context(), f, store.Version()); err != nil {
				return err
			}
			fprintf(cmd.OutOrStdout(), "added %q to section %q\n", link.Title, section)
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section name (created if missing)")
	cmd.Flags().StringVar(&link.Title, "title", "", "Link title")
	cmd.Flags().StringVar(&link.URL, "url", "", "Absolute http(s) URL")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newConfigShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Render the document header a config file produces",
		Long: `Render the part of the llms.txt document that comes from a config file:
title, summary, notes and link sections. Endpoints come from the server and
are not included. Invalid links are left out as they would be when serving.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := c.output()
			if err := checkOutput(format, "text", "json", "yaml"); err != nil {
				return err
			}

			f, _, err := loadConfigFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			project := f.Project()
			project.Sections, _ = llmstxt.ValidateSections(project.Sections)

			if format == "text" {
				fprintf(cmd.OutOrStdout(), "%s", llmstxt.Render(project, nil))
				return nil
			}
			return printOutput(cmd.OutOrStdout(), format, project)
		},
	}
}
