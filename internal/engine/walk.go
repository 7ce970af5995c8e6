package engine

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/securegit/securegit/internal/cache"
)

// WalkFiles lists every regular file under root as a slash-separated path
// relative to root, skipping VCS metadata, dependency directories and the scan cache. It is
// the file source for directories that are not git repositories.
func WalkFiles(ctx context.Context, root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.V(2).InfoS("Walk error", "path", p, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if p != root && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == cache.FileName {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
