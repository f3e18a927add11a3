package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix prefixes environment variables that override flags, e.g.
// LLMSTXTCTL_SERVER.
const envPrefix = "LLMSTXTCTL"

// cli holds the settings shared by all commands.
type cli struct {
	v *viper.Viper
}

func (c *cli) serverURL() string {
	return strings.TrimRight(c.v.GetString("server"), "/")
}

func (c *cli) output() string { return c.v.GetString("output") }

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "llmstxtctl",
		Short: "CLI for llms.txt documents",
		Long: `llmstxtctl fetches and inspects the llms.txt document served by an API and
manages the YAML or TOML files the document is configured from.

Flags can also be set through LLMSTXTCTL_* environment variables or a .env
file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8000", "Server URL")
	flags.StringP("output", "o", "text", "Output format: text, table, json, yaml")
	bindFlags(c.v, flags)

	root.AddCommand(newFetchCmd(c))
	root.AddCommand(newValidateCmd(c))
	root.AddCommand(newConfigCmd(c))
	root.AddCommand(newVersionCmd())
	return root
}

// bindFlags lets environment variables fill in flags the user did not set.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

func checkOutput(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (use %s)", format, strings.Join(allowed, ", "))
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
