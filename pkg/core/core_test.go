package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Patches(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"valid_extensions_expand": [".rb"], "prohibited_files_exclude": [".env"]}`))
	require.NoError(t, err)
	assert.Contains(t, cfg.ValidExtensions, ".rb")
	assert.NotContains(t, cfg.ProhibitedFiles, ".env")
	assert.Equal(t, DefaultConfig().Patterns, cfg.Patterns)

	_, err = ParseConfig([]byte(`{"enabled": `))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestResolve_NonRepositoryUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, src, err := Resolve(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, src)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestScanRepository(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	write := func(rel, content string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	write("committed.py", `password = "old-secret"`)
	_, err = wt.Add("committed.py")
	require.NoError(t, err)
	_, err = wt.Commit("init", &gogit.CommitOptions{Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)

	write("staged.py", `API_KEY = "abc123"`)
	_, err = wt.Add("staged.py")
	require.NoError(t, err)

	v, err := ScanRepository(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"staged.py"}, v.Paths())

	v, err = ScanRepository(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"committed.py", "staged.py"}, v.Paths())

	write("securegit.json", `{"enabled": false}`)
	v, err = ScanRepository(context.Background(), dir, true)
	require.NoError(t, err)
	assert.True(t, v.Disabled)
}

func TestScanRepository_NotRepository(t *testing.T) {
	_, err := ScanRepository(context.Background(), t.TempDir(), false)
	assert.Error(t, err)
}

func TestMarshalVerdict_RoundTrip(t *testing.T) {
	v := Verdict{FilesScanned: 1, Findings: map[string][]Finding{"a.py": {{Path: "a.py", Line: 1, Match: "m"}}}}
	var buf bytes.Buffer
	require.NoError(t, MarshalVerdict(&buf, v))
	got, err := UnmarshalVerdict(&buf)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}
