// Package ignore reads .securegitignore files: gitignore-like lists of glob
// patterns for paths that are never scanned.
package ignore

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the repository root.
const FileName = ".securegitignore"

type rule struct {
	glob   string
	dir    bool // pattern ended with "/"
	negate bool
}

// Matcher matches repository-relative paths against ignore rules. The zero
// value matches nothing.
type Matcher struct {
	rules []rule
}

// Load reads the ignore file at p. A missing file yields an empty matcher and
// the open error.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads rules from r, one per line. Blank lines and lines starting with
// "#" are skipped; a leading "!" re-includes a previously ignored path.
func Parse(r io.Reader) (Matcher, error) {
	var m Matcher
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ru rule
		if strings.HasPrefix(line, "!") {
			ru.negate = true
			line = line[1:]
		}
		line = strings.TrimPrefix(line, "/")
		if strings.HasSuffix(line, "/") {
			ru.dir = true
			line = strings.TrimSuffix(line, "/")
		}
		if line == "" || !doublestar.ValidatePattern(line) {
			continue
		}
		ru.glob = line
		m.rules = append(m.rules, ru)
	}
	return m, sc.Err()
}

// Match reports whether rel is ignored. The last matching rule wins.
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, ru := range m.rules {
		if ru.matches(rel) {
			ignored = !ru.negate
		}
	}
	return ignored
}

func (ru rule) matches(rel string) bool {
	if ru.dir {
		// a directory rule covers everything below any matching directory
		parts := strings.Split(rel, "/")
		for i := 1; i < len(parts); i++ {
			if globMatch(ru.glob, strings.Join(parts[:i], "/")) || globMatch(ru.glob, parts[i-1]) {
				return true
			}
		}
		return false
	}
	if globMatch(ru.glob, rel) {
		return true
	}
	if !strings.Contains(ru.glob, "/") {
		return globMatch(ru.glob, path.Base(rel))
	}
	return false
}

func globMatch(pattern, name string) bool {
	ok, _ := doublestar.Match(pattern, name)
	return ok
}

// Append ensures pattern is present in the ignore file at repoRoot, creating
// the file if needed.
func Append(repoRoot, pattern string) error {
	p := filepath.Join(repoRoot, FileName)
	existing := map[string]bool{}
	if f, err := os.Open(p); err == nil {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		_ = f.Close()
	}
	if existing[pattern] {
		return nil
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(pattern + "\n")
	return err
}
