package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, r
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func commitAll(t *testing.T, r *gogit.Repository, msg string, paths ...string) {
	t.Helper()
	wt, err := r.Worktree()
	require.NoError(t, err)
	for _, p := range paths {
		_, err := wt.Add(p)
		require.NoError(t, err)
	}
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestOpen_DetectsFromSubdirectory(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "sub/inner/a.txt", "x")

	repo, err := Open(filepath.Join(dir, "sub", "inner"))
	require.NoError(t, err)
	assert.Equal(t, dir, repo.Root)
	assert.Equal(t, filepath.Join(dir, ".git"), repo.GitDir)
	assert.Equal(t, filepath.Join(dir, ".git", "hooks"), repo.HooksDir())
}

func TestOpen_NotRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)

	_, err = Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestStagedFiles(t *testing.T) {
	dir, r := initRepo(t)
	writeFile(t, dir, "keep.py", "a = 1\n")
	writeFile(t, dir, "gone.py", "b = 2\n")
	commitAll(t, r, "init", "keep.py", "gone.py")

	writeFile(t, dir, "keep.py", "a = 2\n")
	writeFile(t, dir, "new/added.py", "c = 3\n")
	writeFile(t, dir, "untracked.py", "d = 4\n")
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("keep.py")
	require.NoError(t, err)
	_, err = wt.Add("new/added.py")
	require.NoError(t, err)
	_, err = wt.Remove("gone.py")
	require.NoError(t, err)

	repo, err := Open(dir)
	require.NoError(t, err)
	got, err := repo.StagedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.py", "new/added.py"}, got)
}

func TestStagedFiles_BeforeFirstCommit(t *testing.T) {
	dir, r := initRepo(t)
	writeFile(t, dir, "a.py", "x")
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("a.py")
	require.NoError(t, err)

	repo, err := Open(dir)
	require.NoError(t, err)
	got, err := repo.StagedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, got)
}

func TestTrackedFiles(t *testing.T) {
	dir, r := initRepo(t)
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "a/z.py", "z")
	writeFile(t, dir, "scratch.txt", "not added")
	commitAll(t, r, "init", "b.txt", "a/z.py")

	repo, err := Open(dir)
	require.NoError(t, err)
	got, err := repo.TrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/z.py", "b.txt"}, got)
}

func TestMetadata(t *testing.T) {
	dir, r := initRepo(t)
	writeFile(t, dir, "a.txt", "a")
	commitAll(t, r, "init", "a.txt")
	_, err := r.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:acme/widgets.git"}})
	require.NoError(t, err)

	repo, err := Open(dir)
	require.NoError(t, err)
	m := repo.Metadata()
	assert.Equal(t, "acme/widgets", m.Repo)
	assert.Len(t, m.Commit, 40)
	assert.Equal(t, "master", m.Branch)
}

func TestShortRemote(t *testing.T) {
	assert.Equal(t, "acme/widgets", shortRemote("https://github.com/acme/widgets.git"))
	assert.Equal(t, "acme/widgets", shortRemote("git@github.com:acme/widgets.git"))
	assert.Equal(t, "group/sub/proj", shortRemote("ssh://git@gitlab.example.com/group/sub/proj"))
}

func TestSetGlobalTemplateDir(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(home, ".gitconfig"))

	tmpl := filepath.Join(home, ".git-templates")
	require.NoError(t, SetGlobalTemplateDir(tmpl))
	b, err := os.ReadFile(filepath.Join(home, ".gitconfig"))
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(string(b)), "templatedir = "+strings.ToLower(tmpl))
}
