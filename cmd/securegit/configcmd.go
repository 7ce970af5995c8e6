package securegit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/securegit/securegit/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	var showJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			t, err := a.resolveTarget(false)
			if err != nil {
				return err
			}
			if showJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(t.res.Config)
			}
			fmt.Fprintf(a.out, "# source: %s\n", sourceName(t.res.Source))
			for _, line := range describeMerge(t.res.Report) {
				fmt.Fprintf(a.out, "# %s\n", line)
			}
			b, err := yaml.Marshal(t.res.Config)
			if err != nil {
				return err
			}
			_, err = a.out.Write(b)
			return err
		},
	}
	show.Flags().BoolVar(&showJSON, "json", false, "print JSON instead of YAML")

	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to a file",
		Long: `Write the built-in configuration so it can be edited. Lists can be patched
instead of replaced: "<key>_exclude" removes entries from a default list and
"<key>_expand" appends to it.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}
			var b []byte
			var err error
			switch strings.ToLower(filepath.Ext(output)) {
			case ".yml", ".yaml":
				b, err = yaml.Marshal(config.Default())
			default:
				b, err = json.MarshalIndent(config.Default(), "", "  ")
				b = append(b, '\n')
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, b, 0644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✅ Wrote %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", config.LocalNames[0], "output file path (.json, .yml or .yaml)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			b, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(b))
			return err
		},
	}

	cfgCmd.AddCommand(show, initCmd, schema)
	return cfgCmd
}

func describeMerge(r config.MergeReport) []string {
	var out []string
	if len(r.Replaced) > 0 {
		out = append(out, "replaced: "+strings.Join(r.Replaced, ", "))
	}
	for _, kv := range []struct {
		verb string
		m    map[string]int
	}{{"excluded", r.Excluded}, {"expanded", r.Expanded}} {
		keys := make([]string, 0, len(kv.m))
		for k := range kv.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, fmt.Sprintf("%s %d entr(ies) of %s", kv.verb, kv.m[k], k))
		}
	}
	if len(r.Ignored) > 0 {
		out = append(out, "ignored: "+strings.Join(r.Ignored, ", "))
	}
	return out
}
