// Package allowlist decides whether a candidate prohibited file or content
// finding is suppressed by configuration at file, path, line or matched-text
// granularity.
package allowlist

import (
	"strconv"
	"strings"

	"github.com/securegit/securegit/internal/config"
	"github.com/securegit/securegit/internal/pattern"
	"github.com/securegit/securegit/internal/types"
)

// Candidate is what a suppression decision is made about. Line is 1-based;
// zero means no line is given. A nil Text means no matched text is given.
type Candidate struct {
	Path string
	Line int
	Text *string
}

// Resolver answers suppression queries for one allowlist. It is safe for
// concurrent use.
type Resolver struct {
	files    map[string]struct{}
	lines    map[string]struct{}
	prefixes []string
	paths    []pattern.Pattern
	patterns []pattern.Pattern
	warnings []types.Warning
}

// New compiles al. Path entries that are not valid regular expressions are
// still used as plain prefixes; invalid text patterns are dropped. Both are
// reported by Warnings.
func New(al config.Allowlist) *Resolver {
	r := &Resolver{
		files:    make(map[string]struct{}, len(al.Files)),
		lines:    make(map[string]struct{}, len(al.Lines)),
		prefixes: append([]string(nil), al.Paths...),
	}
	for _, f := range al.Files {
		r.files[f] = struct{}{}
	}
	for _, l := range al.Lines {
		r.lines[l] = struct{}{}
	}
	var errs []*pattern.CompileError
	r.paths, errs = pattern.CompileAll(al.Paths)
	r.warn(errs, "allowlist path")
	r.patterns, errs = pattern.CompileAll(al.Patterns)
	r.warn(errs, "allowlist pattern")
	return r
}

func (r *Resolver) warn(errs []*pattern.CompileError, what string) {
	for _, e := range errs {
		r.warnings = append(r.warnings, types.Warning{
			Kind:    types.WarnPatternCompile,
			Pattern: e.Expr,
			Message: what + ": " + e.Err.Error(),
		})
	}
}

// Warnings returns problems found while compiling the allowlist.
func (r *Resolver) Warnings() []types.Warning {
	return append([]types.Warning(nil), r.warnings...)
}

// Suppressed runs the checks in order and stops at the first that fires:
// exact file, path prefix or regex, "path:line", then text pattern search.
func (r *Resolver) Suppressed(c Candidate) bool {
	if _, ok := r.files[c.Path]; ok {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(c.Path, p) {
			return true
		}
	}
	// an abandoned match never suppresses
	for _, p := range r.paths {
		if ok, _ := p.MatchPrefix(c.Path); ok {
			return true
		}
	}
	if c.Line > 0 {
		if _, ok := r.lines[LineKey(c.Path, c.Line)]; ok {
			return true
		}
	}
	if c.Text != nil {
		for _, p := range r.patterns {
			if ok, _ := p.Search(*c.Text); ok {
				return true
			}
		}
	}
	return false
}

// FileSuppressed reports whether the whole file is allowlisted.
func (r *Resolver) FileSuppressed(path string) bool {
	return r.Suppressed(Candidate{Path: path})
}

// LineSuppressed reports whether a line of path is allowlisted.
func (r *Resolver) LineSuppressed(path string, line int) bool {
	return r.Suppressed(Candidate{Path: path, Line: line})
}

// MatchSuppressed reports whether a matched value on a line is allowlisted.
func (r *Resolver) MatchSuppressed(path string, line int, text string) bool {
	return r.Suppressed(Candidate{Path: path, Line: line, Text: &text})
}

// LineKey formats the "path:line" key used by the lines allowlist.
func LineKey(path string, line int) string {
	return path + ":" + strconv.Itoa(line)
}
