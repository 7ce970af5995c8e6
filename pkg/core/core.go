package core

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/securegit/securegit/internal/config"
	"github.com/securegit/securegit/internal/engine"
	"github.com/securegit/securegit/internal/git"
	"github.com/securegit/securegit/internal/ignore"
	"github.com/securegit/securegit/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = config.Config
type Allowlist = config.Allowlist
type Options = engine.Options
type Verdict = types.Verdict
type Finding = types.Finding
type ProhibitedHit = types.ProhibitedHit
type Warning = types.Warning
type ParseError = config.ParseError

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// ParseConfig merges a JSON or YAML override document onto the defaults.
func ParseConfig(data []byte) (Config, error) {
	res, err := config.Parse(data)
	return res.Config, err
}

// Resolve finds the effective configuration for dir: the first existing
// repository-local or user-global file, or the defaults. It returns the
// configuration and the file it came from ("" for defaults). A file that
// fails to parse is a *ParseError.
func Resolve(dir string) (Config, string, error) {
	root, gitDir := dir, ""
	if repo, err := git.Open(dir); err == nil {
		root, gitDir = repo.Root, repo.GitDir
	}
	res, err := config.Resolve(config.Candidates(root, gitDir))
	return res.Config, res.Source, err
}

// Scan checks files, given relative to opts.Root, against cfg.
func Scan(ctx context.Context, files []string, cfg Config, opts Options) (Verdict, error) {
	return engine.Scan(ctx, files, cfg, opts)
}

// ScanRepository resolves configuration for the repository containing dir
// and scans its staged files, or every tracked file when the configuration
// or entire asks for it. The repository's .securegitignore is honored.
func ScanRepository(ctx context.Context, dir string, entire bool) (Verdict, error) {
	repo, err := git.Open(dir)
	if err != nil {
		return Verdict{}, err
	}
	res, err := config.Resolve(config.Candidates(repo.Root, repo.GitDir))
	if err != nil {
		return Verdict{}, err
	}
	cfg := res.Config
	if !cfg.Enabled {
		return Verdict{Disabled: true}, nil
	}
	var files []string
	if entire || cfg.ScanEntireRepo {
		files, err = repo.TrackedFiles()
	} else {
		files, err = repo.StagedFiles()
	}
	if err != nil {
		return Verdict{}, err
	}
	ign, err := ignore.Load(filepath.Join(repo.Root, ignore.FileName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Verdict{}, err
	}
	return engine.Scan(ctx, files, cfg, Options{Root: repo.Root, Ignore: ign})
}
