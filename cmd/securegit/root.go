package securegit

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/securegit/securegit/internal/config"
	"github.com/securegit/securegit/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

// Exit codes of a scan run.
const (
	exitOK      = 0
	exitBlocked = 1
	exitFatal   = 2
)

// exitError carries a non-zero exit code without an error message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// app holds the state shared by one command tree.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	in     io.Reader
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "securegit",
		Short: "Block commits that contain hardcoded secrets",
		Long: `SecureGit checks the files of a commit before git records it. Files that
should never be committed (private keys, .env files, credential stores) stop
the commit outright; other text files are scanned line by line for patterns
that look like hardcoded secrets.

Get started:
  1. Install the hook into the current repository:
     $ securegit install

  2. Adjust securegit.json in the repository root or in .git/ as needed:
     $ securegit config init

  3. Commit as usual. Run a check by hand with:
     $ securegit scan`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE:          a.runScan,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetIn(a.in)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: first of securegit.json|yml|yaml in the repository, .git/, then ~/.securegit.*)")
	pf.StringP("path", "p", ".", "directory inside the repository to scan")
	pf.StringP("format", "f", "text", "output format: text|table|json|sarif")
	pf.Bool("all", false, "scan every tracked file instead of staged changes")
	pf.Bool("no-git", false, "scan a plain directory without a git repository")
	pf.Int("threads", 0, "worker count (0 = GOMAXPROCS)")
	pf.Int64("max-bytes", 1<<20, "scan at most this many bytes per file (negative = unlimited)")
	pf.Bool("no-color", false, "disable colorized output")
	pf.Bool("no-cache", false, "disable the clean-file cache")
	pf.String("baseline", "", "baseline file of accepted findings (default: securegit.baseline.json when present)")
	pf.Bool("audit", false, "append a record of the run to the audit log in .git/")
	_ = a.v.BindPFlags(pf)

	// klog flags (-v, --logtostderr, ...)
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	logger.InitFlags(fs)
	pf.AddGoFlagSet(fs)

	root.AddCommand(
		newScanCmd(a),
		newInstallCmd(a),
		newConfigCmd(a),
		newBaselineCmd(a),
		newIgnoreCmd(a),
		newRulesCmd(a),
		newAuditCmd(a),
		newCompletionCmd(),
		newVersionCmd(a),
	)
	return root
}

func newApp(out, errOut io.Writer, in io.Reader) *app {
	v := viper.New()
	v.SetEnvPrefix("SECUREGIT") // SECUREGIT_CONFIG, SECUREGIT_NO_COLOR, ...
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &app{v: v, out: out, errOut: errOut, in: in}
}

// run executes the command line and returns the process exit code.
func run(args []string, out, errOut io.Writer, in io.Reader) int {
	a := newApp(out, errOut, in)
	root := newRootCmd(a)
	root.SetArgs(args)
	return exitCode(root.Execute(), errOut)
}

func exitCode(err error, errOut io.Writer) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var pe *config.ParseError
	if errors.As(err, &pe) {
		fmt.Fprintf(errOut, "❌ %v\n", pe)
		return exitFatal
	}
	fmt.Fprintln(errOut, "error:", err)
	return exitFatal
}

// Execute runs the SecureGit CLI. It should be called by the main package.
func Execute() {
	code := run(os.Args[1:], os.Stdout, os.Stderr, os.Stdin)
	logger.Flush()
	os.Exit(code)
}

// noColor reports whether output to w should be plain.
func (a *app) noColor() bool {
	if a.v.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		return true
	}
	f, ok := a.out.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "securegit %s\n", version)
		},
	}
}
