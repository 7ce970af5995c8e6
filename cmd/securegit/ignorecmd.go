package securegit

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/securegit/securegit/internal/ignore"
	"github.com/spf13/cobra"
)

func newIgnoreCmd(a *app) *cobra.Command {
	ignCmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage the .securegitignore file",
	}
	add := &cobra.Command{
		Use:   "add <pattern>...",
		Short: "Append glob patterns to .securegitignore at the repository root",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := a.resolveTarget(false)
			if err != nil {
				return err
			}
			for _, p := range args {
				glob := p
				if len(glob) > 0 && glob[len(glob)-1] == '/' {
					glob = glob[:len(glob)-1]
				}
				if !doublestar.ValidatePattern(glob) {
					return fmt.Errorf("invalid pattern %q", p)
				}
				if err := ignore.Append(t.root, p); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.out, "✅ Updated %s\n", filepath.Join(t.root, ignore.FileName))
			return nil
		},
	}
	check := &cobra.Command{
		Use:   "check <path>...",
		Short: "Report which repository paths .securegitignore drops",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t, err := a.resolveTarget(false)
			if err != nil {
				return err
			}
			rels, err := relativeTo(t.root, args)
			if err != nil {
				return err
			}
			m := a.loadIgnore(t.root)
			for _, rel := range rels {
				state := "scanned"
				if m.Match(rel) {
					state = "ignored"
				}
				fmt.Fprintf(a.out, "%s\t%s\n", state, rel)
			}
			return nil
		},
	}
	ignCmd.AddCommand(add, check)
	return ignCmd
}
