package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// printOutput writes v as indented JSON or YAML. Field names follow the
// json tags in both formats.
func printOutput(w io.Writer, format string, v any) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("output format %q cannot print structured data (use json or yaml)", format)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// printTable aligns rows under upper-cased headers.
func printTable(out io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	fprintf(tw, "%s\n", strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fprintf(tw, "%s\n", strings.Join(row, "\t"))
	}
}

// truncate cuts s to at most limit runes, ending in "..." when there is room.
func truncate(s string, limit int) string {
	r := []rune(s)
	switch {
	case len(r) <= limit:
		return s
	case limit <= 3:
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
