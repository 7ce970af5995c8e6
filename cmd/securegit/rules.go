package securegit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/securegit/securegit/internal/catalog"
	"github.com/securegit/securegit/internal/engine"
	"github.com/securegit/securegit/internal/report"
	"github.com/spf13/cobra"
)

func newRulesCmd(a *app) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the content patterns of the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			t, err := a.resolveTarget(false)
			if err != nil {
				return err
			}
			for _, expr := range t.res.Config.Patterns {
				id := catalog.RuleID(expr)
				if id == "" {
					id = "custom"
				}
				fmt.Fprintf(a.out, "%-24s %s\n", id, expr)
			}
			return nil
		},
	}

	var as string
	test := &cobra.Command{
		Use:   "test",
		Short: "Scan text from stdin as if it were a committed file",
		Long: `Read text from stdin and run the full check on it as if it were committed
at the path given by --as: prohibited names, the allowlist and every content
pattern. Useful to try out allowlist entries and custom patterns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := a.resolveTarget(false)
			if err != nil {
				return err
			}
			rel := filepath.Clean(filepath.FromSlash(as))
			if !filepath.IsLocal(rel) {
				return fmt.Errorf("--as %q must be a relative path inside the repository", as)
			}
			data, err := io.ReadAll(a.in)
			if err != nil {
				return err
			}
			dir, err := os.MkdirTemp("", "securegit-rules")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
			p := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(p, data, 0o600); err != nil {
				return err
			}

			cfg := t.res.Config
			cfg.Enabled = true
			cfg.ValidExtensions = []string{""}
			v, err := engine.Scan(cmd.Context(), []string{filepath.ToSlash(rel)}, cfg, engine.Options{Root: dir, MaxBytes: -1})
			if err != nil {
				return err
			}
			if err := report.PrintTable(a.out, v, report.PrintOptions{NoColor: a.noColor(), Total: 1}); err != nil {
				return err
			}
			if !v.Passed() {
				return &exitError{code: exitBlocked}
			}
			return nil
		},
	}
	test.Flags().StringVar(&as, "as", "stdin.txt", "repository-relative path the text is checked as")
	rulesCmd.AddCommand(test)
	return rulesCmd
}
