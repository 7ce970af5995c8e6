package securegit

import (
	"fmt"
	"path/filepath"

	"github.com/securegit/securegit/internal/engine"
	"github.com/securegit/securegit/internal/report"
	"github.com/spf13/cobra"
)

func newBaselineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "baseline",
		Short: "Accept the current findings so later scans only report new ones",
		Long: `Scan every tracked file (or staged files with --all=false) and record the
findings in securegit.baseline.json at the repository root, or the file
given by --baseline. Prohibited files are never accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := a.resolveTarget(true)
			if err != nil {
				return err
			}
			entire := true
			if cmd.Flags().Changed("all") {
				entire = a.v.GetBool("all")
			}
			files, err := a.listFiles(cmd, t, nil, entire)
			if err != nil {
				return err
			}
			v, err := engine.Scan(cmd.Context(), files, t.res.Config, a.engineOptions(t.root))
			if err != nil {
				return err
			}
			if len(v.Prohibited) > 0 {
				report.PrintText(a.out, v, report.PrintOptions{NoColor: a.noColor(), Total: len(files)})
				return fmt.Errorf("cannot baseline prohibited files; remove them first")
			}
			path := a.v.GetString("baseline")
			if path == "" {
				path = filepath.Join(t.root, report.BaselineFile)
			}
			if err := report.SaveBaseline(path, v); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✅ Baseline with %d finding(s) written to %s\n", v.FindingCount(), path)
			return nil
		},
	}
}
