// Package hook installs the scanner as a git pre-commit hook, either into
// one repository or into the global template directory used for new clones.
package hook

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/securegit/securegit/internal/config"
	"github.com/securegit/securegit/internal/git"
	"github.com/securegit/securegit/internal/logger"
	"golang.org/x/term"
)

const (
	// HookName is the hook file git runs before recording a commit.
	HookName = "pre-commit"
	// TemplateDirName is created under the home directory for global installs.
	TemplateDirName = ".git-templates"
	backupLayout    = "20060102150405"
)

// ErrAborted is returned when the user declines to replace an existing hook.
var ErrAborted = errors.New("installation aborted")

var log = logger.WithName("hook")

// setTemplateDir is replaced in tests.
var setTemplateDir = git.SetGlobalTemplateDir

// Options controls an installation.
type Options struct {
	// Executable is copied as the hook. Empty means the running binary.
	Executable string
	// ConfigPath is copied next to the hook. Empty writes the default
	// configuration unless one is already installed.
	ConfigPath string
	// Yes replaces an existing hook without asking.
	Yes bool

	In  io.Reader
	Out io.Writer
	// Interactive reports whether In can answer a prompt. Nil checks
	// whether stdin is a terminal.
	Interactive func() bool
	Now         func() time.Time
}

// Result lists what an installation wrote.
type Result struct {
	HookPath   string
	ConfigPath string
	BackupPath string
}

// Install copies the hook into gitDir/hooks and the configuration to
// gitDir/securegit.json.
func Install(gitDir string, opts Options) (Result, error) {
	res, err := installHook(filepath.Join(gitDir, "hooks"), opts)
	if err != nil {
		return res, err
	}
	res.ConfigPath = filepath.Join(gitDir, config.LocalNames[0])
	if err := installConfig(res.ConfigPath, opts.ConfigPath); err != nil {
		return res, err
	}
	log.InfoS("Installed pre-commit hook", "hook", res.HookPath, "config", res.ConfigPath)
	return res, nil
}

// InstallGlobal copies the hook into ~/.git-templates/hooks, writes the
// configuration to ~/.securegit.json and points git's init.templateDir at
// the template directory. Existing repositories pick it up on `git init`.
func InstallGlobal(opts Options) (Result, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Result{}, fmt.Errorf("locate home directory: %w", err)
	}
	tmpl := filepath.Join(home, TemplateDirName)
	res, err := installHook(filepath.Join(tmpl, "hooks"), opts)
	if err != nil {
		return res, err
	}
	res.ConfigPath = filepath.Join(home, config.GlobalNames[0])
	if err := installConfig(res.ConfigPath, opts.ConfigPath); err != nil {
		return res, err
	}
	if err := setTemplateDir(tmpl); err != nil {
		return res, err
	}
	log.InfoS("Installed global pre-commit hook", "templateDir", tmpl, "config", res.ConfigPath)
	return res, nil
}

func installHook(hooksDir string, opts Options) (Result, error) {
	res := Result{HookPath: filepath.Join(hooksDir, HookName)}
	src := opts.Executable
	if src == "" {
		exe, err := os.Executable()
		if err != nil {
			return res, fmt.Errorf("locate executable: %w", err)
		}
		src = exe
	}
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return res, fmt.Errorf("create hooks directory: %w", err)
	}
	if _, err := os.Stat(res.HookPath); err == nil {
		if !opts.Yes {
			ok, err := confirm(opts, fmt.Sprintf("A %s hook already exists at %s and will be backed up.", HookName, res.HookPath))
			if err != nil {
				return res, err
			}
			if !ok {
				return res, ErrAborted
			}
		}
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		res.BackupPath = res.HookPath + ".bak." + now().Format(backupLayout)
		if err := os.Rename(res.HookPath, res.BackupPath); err != nil {
			return res, fmt.Errorf("back up existing hook: %w", err)
		}
		log.V(1).InfoS("Backed up existing hook", "backup", res.BackupPath)
	}
	if err := copyFile(src, res.HookPath, 0o775); err != nil {
		return res, fmt.Errorf("install hook: %w", err)
	}
	return res, nil
}

func installConfig(dst, src string) error {
	if src != "" {
		p, err := homedir.Expand(src)
		if err != nil {
			return err
		}
		if _, err := config.LoadFile(p); err != nil {
			return err
		}
		return copyFile(p, dst, 0o644)
	}
	if _, err := os.Stat(dst); err == nil {
		log.V(1).InfoS("Keeping existing configuration", "path", dst)
		return nil
	}
	b, err := json.MarshalIndent(config.Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append(b, '\n'), 0o644)
}

func confirm(opts Options, notice string) (bool, error) {
	interactive := opts.Interactive
	if interactive == nil {
		interactive = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	if !interactive() {
		return false, fmt.Errorf("%w: existing hook found and no terminal to confirm; rerun with --yes", ErrAborted)
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, notice)
	fmt.Fprint(out, "Do you want to continue? (y/N) ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, mode); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
