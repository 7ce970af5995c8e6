package securegit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/securegit/securegit/internal/audit"
	"github.com/securegit/securegit/internal/config"
	"github.com/securegit/securegit/internal/engine"
	"github.com/securegit/securegit/internal/git"
	"github.com/securegit/securegit/internal/ignore"
	"github.com/securegit/securegit/internal/logger"
	"github.com/securegit/securegit/internal/report"
	"github.com/securegit/securegit/internal/types"
	"github.com/spf13/cobra"
)

var log = logger.WithName("cli")

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan staged files, every tracked file, or the given files",
		Long: `Scan the files of the next commit. With --all (or scan_entire_repo in the
configuration) every tracked file is scanned instead. Files given as
arguments are scanned as-is, which is how pre-commit frameworks call hooks.

Exit status is 0 when the commit may proceed, 1 when prohibited files or
secrets were found and 2 when the configuration is invalid or scanning
could not run.`,
		RunE: a.runScan,
	}
}

// target is where a scan runs and which configuration applies.
type target struct {
	root   string
	gitDir string
	repo   *git.Repo
	res    config.Resolution
}

func (a *app) resolveTarget(requireRepo bool) (target, error) {
	var t target
	abs, err := filepath.Abs(a.v.GetString("path"))
	if err != nil {
		return t, err
	}
	t.root = abs
	if a.v.GetBool("no-git") {
		log.V(1).InfoS("Scanning without a repository", "root", abs)
	} else if repo, err := git.Open(abs); err == nil {
		t.repo, t.root, t.gitDir = repo, repo.Root, repo.GitDir
	} else if requireRepo || !errors.Is(err, git.ErrNotRepository) {
		return t, err
	}

	if p := a.v.GetString("config"); p != "" {
		t.res, err = config.LoadFile(p)
	} else {
		t.res, err = config.Resolve(config.Candidates(t.root, t.gitDir))
	}
	if err != nil {
		return t, err
	}
	log.V(1).InfoS("Effective configuration", "source", sourceName(t.res.Source))
	return t, nil
}

func sourceName(src string) string {
	if src == "" {
		return "built-in defaults"
	}
	return src
}

// listFiles returns repository-relative paths to scan.
func (a *app) listFiles(cmd *cobra.Command, t target, args []string, entire bool) ([]string, error) {
	switch {
	case len(args) > 0:
		return relativeTo(t.root, args)
	case t.repo == nil:
		return engine.WalkFiles(cmd.Context(), t.root)
	case entire:
		return t.repo.TrackedFiles()
	default:
		return t.repo.StagedFiles()
	}
}

func relativeTo(root string, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is outside %s", arg, root)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

func (a *app) loadIgnore(root string) ignore.Matcher {
	m, err := ignore.Load(filepath.Join(root, ignore.FileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warning("Could not read ignore file", "error", err)
	}
	return m
}

func (a *app) engineOptions(root string) engine.Options {
	return engine.Options{
		Root:     root,
		Threads:  a.v.GetInt("threads"),
		MaxBytes: a.v.GetInt64("max-bytes"),
		Ignore:   a.loadIgnore(root),
		Cache:    !a.v.GetBool("no-cache"),
	}
}

// baselinePath returns the explicit baseline or the default one when it
// exists; "" means no baseline applies.
func (a *app) baselinePath(root string) string {
	if p := a.v.GetString("baseline"); p != "" {
		return p
	}
	p := filepath.Join(root, report.BaselineFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func (a *app) runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()
	t, err := a.resolveTarget(len(args) == 0)
	if err != nil {
		return err
	}
	cfg := t.res.Config
	entire := (cfg.ScanEntireRepo || a.v.GetBool("all")) && len(args) == 0
	opts := report.PrintOptions{NoColor: a.noColor(), EntireRepo: entire && cfg.Enabled}

	var files []string
	if cfg.Enabled {
		if files, err = a.listFiles(cmd, t, args, entire); err != nil {
			return err
		}
	}
	opts.Total = len(files)

	all, err := engine.Scan(cmd.Context(), files, cfg, a.engineOptions(t.root))
	if err != nil {
		return err
	}
	v := all
	baseline := a.baselinePath(t.root)
	if baseline != "" {
		base, err := report.LoadBaseline(baseline)
		if err != nil {
			log.Warning("Ignoring unreadable baseline", "path", baseline, "error", err)
		}
		v = report.FilterNew(all, base)
	}
	opts.Duration = time.Since(start)

	if err := a.writeReport(v, opts); err != nil {
		return err
	}
	if a.v.GetBool("audit") {
		a.writeAudit(t, entire, len(files), baseline, opts.Duration, all, v)
	}
	if !v.Passed() {
		return &exitError{code: exitBlocked}
	}
	return nil
}

func (a *app) writeReport(v types.Verdict, opts report.PrintOptions) error {
	switch f := strings.ToLower(a.v.GetString("format")); f {
	case "", "text":
		report.PrintText(a.out, v, opts)
		return nil
	case "table":
		return report.PrintTable(a.out, v, opts)
	case "json":
		return report.WriteJSON(a.out, v)
	case "sarif":
		return report.WriteSARIF(a.out, v, version)
	default:
		return fmt.Errorf("unknown format %q (want text, table, json or sarif)", f)
	}
}

func (a *app) writeAudit(t target, entire bool, listed int, baseline string, d time.Duration, all, v types.Verdict) {
	run := audit.Run{
		Root:         t.root,
		EntireRepo:   entire,
		ConfigSource: t.res.Source,
		FilesListed:  listed,
		BaselineFile: baseline,
		Duration:     d,
	}
	if t.repo != nil {
		m := t.repo.Metadata()
		run.Repo, run.Commit, run.Branch = m.Repo, m.Commit, m.Branch
	}
	l := audit.NewAuditLog(t.root, t.gitDir)
	if err := l.LogScan(audit.CreateScanRecord(run, all, v)); err != nil {
		log.Warning("Could not write audit log", "path", l.Path(), "error", err)
	}
}
