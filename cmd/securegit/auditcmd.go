package securegit

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/securegit/securegit/internal/audit"
	"github.com/spf13/cobra"
)

func newAuditCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent scans recorded with --audit",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			t, err := a.resolveTarget(true)
			if err != nil {
				return err
			}
			l := audit.NewAuditLog(t.root, t.gitDir)
			records, err := l.LoadHistory()
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			if len(records) == 0 {
				fmt.Fprintln(a.out, "No scans recorded.")
				return nil
			}
			table := tablewriter.NewWriter(a.out)
			table.Header("Time", "Mode", "Result", "Files", "Findings", "New", "Prohibited", "Branch")
			for _, r := range records {
				result := "passed"
				if r.Disabled {
					result = "disabled"
				} else if !r.Passed {
					result = "blocked"
				}
				if err := table.Append(
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					r.Mode,
					result,
					strconv.Itoa(r.FilesScanned),
					strconv.Itoa(r.TotalFindings),
					strconv.Itoa(r.NewFindings),
					strconv.Itoa(len(r.Prohibited)),
					r.Branch,
				); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many records (0 = all)")
	return cmd
}
