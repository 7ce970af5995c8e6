package securegit

import (
	"errors"
	"fmt"
	"os"

	"github.com/securegit/securegit/internal/git"
	"github.com/securegit/securegit/internal/hook"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInstallCmd(a *app) *cobra.Command {
	var global, yes bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install securegit as the pre-commit hook",
		Long: `Install copies this executable to .git/hooks/pre-commit and a configuration
file to .git/securegit.json. An existing hook is backed up after
confirmation. With --global the hook goes to ~/.git-templates/hooks and git's
init.templateDir is pointed there, so every new or re-initialized repository
gets it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := hook.Options{
				ConfigPath: a.v.GetString("config"),
				Yes:        yes,
				In:         a.in,
				Out:        a.out,
				Interactive: func() bool {
					f, ok := a.in.(*os.File)
					return ok && term.IsTerminal(int(f.Fd()))
				},
			}
			if global {
				res, err := hook.InstallGlobal(opts)
				if err != nil {
					return installErr(a, err)
				}
				fmt.Fprintf(a.out, "📂 Ensured git template hooks directory exists at %s\n", res.HookPath)
				fmt.Fprintln(a.out, "🔧 Set git global init.templateDir to ~/.git-templates")
				fmt.Fprintln(a.out, "\n🚀 All set! Now every time you run 'git init', your pre-commit hook will be auto-installed.")
				return nil
			}

			repo, err := git.Open(a.v.GetString("path"))
			if err != nil {
				if errors.Is(err, git.ErrNotRepository) {
					fmt.Fprintln(a.out, "❌ Not a git repository!")
				}
				return err
			}
			res, err := hook.Install(repo.GitDir, opts)
			if err != nil {
				return installErr(a, err)
			}
			if res.BackupPath != "" {
				fmt.Fprintf(a.out, "⚠️ Existing pre-commit hook found and backed up to: %s\n", res.BackupPath)
			}
			fmt.Fprintln(a.out, "✅ Pre-commit hook and configuration installed successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "install into the git template directory for all new repositories")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing hook without asking")
	return cmd
}

func installErr(a *app, err error) error {
	if errors.Is(err, hook.ErrAborted) {
		fmt.Fprintln(a.out, "❌ Installation aborted.")
		return &exitError{code: exitBlocked}
	}
	return err
}
