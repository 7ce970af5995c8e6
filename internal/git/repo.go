package git

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/securegit/securegit/internal/logger"
)

// ErrNotRepository is returned when no repository encloses the directory.
var ErrNotRepository = errors.New("not a git repository")

var log = logger.WithName("git")

// Repo is an opened repository with a working tree.
type Repo struct {
	// Root is the top of the working tree.
	Root string
	// GitDir is the repository metadata directory, usually Root/.git.
	GitDir string

	repo *gogit.Repository
}

// validateRoot validates and normalizes a directory path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// Open finds the repository containing dir, searching parent directories.
func Open(dir string) (*Repo, error) {
	abs, err := validateRoot(dir)
	if err != nil {
		return nil, err
	}
	r, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}
		return nil, fmt.Errorf("open repository %s: %w", abs, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree %s: %w", abs, err)
	}
	out := &Repo{Root: wt.Filesystem.Root(), repo: r}
	if st, ok := r.Storer.(*filesystem.Storage); ok {
		out.GitDir = st.Filesystem().Root()
	} else {
		out.GitDir = filepath.Join(out.Root, ".git")
	}
	log.V(2).InfoS("Opened repository", "root", out.Root, "gitDir", out.GitDir)
	return out, nil
}

// HooksDir returns the directory git runs hooks from.
func (r *Repo) HooksDir() string {
	return filepath.Join(r.GitDir, "hooks")
}

// StagedFiles lists paths staged as added, copied or modified, in lexical
// order. Deletions and untracked files are not included.
func (r *Repo) StagedFiles() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	var out []string
	for p, fs := range st {
		switch fs.Staging {
		case gogit.Added, gogit.Copied, gogit.Modified:
			out = append(out, filepath.ToSlash(p))
		}
	}
	sort.Strings(out)
	return out, nil
}

// TrackedFiles lists every path in the index, in lexical order. Submodules
// are skipped and conflicted paths are listed once.
func (r *Repo) TrackedFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	seen := make(map[string]struct{}, len(idx.Entries))
	out := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if e.Mode == filemode.Submodule {
			continue
		}
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out, nil
}

// Metadata identifies the repository state a scan ran against.
type Metadata struct {
	Repo   string `json:"repo,omitempty"`
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Metadata returns best-effort remote, HEAD commit and branch. Missing
// values are left empty.
func (r *Repo) Metadata() Metadata {
	var m Metadata
	if rem, err := r.repo.Remote("origin"); err == nil && len(rem.Config().URLs) > 0 {
		m.Repo = shortRemote(rem.Config().URLs[0])
	}
	if head, err := r.repo.Head(); err == nil {
		m.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			m.Branch = head.Name().Short()
		}
	}
	return m
}

// shortRemote keeps owner/name of a remote URL when possible.
func shortRemote(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "/"); j >= 0 {
			s = s[j+1:]
		}
		return s
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// SetGlobalTemplateDir points init.templateDir in the user's global git
// configuration at dir, so new clones and inits copy its hooks.
func SetGlobalTemplateDir(dir string) error {
	out, err := exec.Command("git", "config", "--global", "init.templateDir", dir).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git config --global init.templateDir: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
