package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/securegit/securegit/internal/logger"
)

// MatchTimeout bounds a single match attempt of a backtracking pattern. It is
// read when a pattern is compiled.
var MatchTimeout = 2 * time.Second

// Pattern is a compiled regular expression from configuration.
type Pattern interface {
	// String returns the source expression.
	String() string
	// FindAll returns the value of every non-overlapping match in s: the first
	// capture group when the expression has groups, otherwise the whole match.
	// On a *MatchError the matches found before the failure are returned.
	FindAll(s string) ([]string, error)
	// MatchPrefix reports whether the expression matches starting at the
	// beginning of s. The match need not extend to the end.
	MatchPrefix(s string) (bool, error)
	// Search reports whether the expression matches anywhere in s.
	Search(s string) (bool, error)
}

// CompileError reports a malformed expression.
type CompileError struct {
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// MatchError reports a match attempt that was abandoned, usually because it
// ran past MatchTimeout.
type MatchError struct {
	Expr string
	Err  error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Expr, e.Err)
}

func (e *MatchError) Unwrap() error { return e.Err }

// Compile compiles expr with the linear-time RE2 engine. Expressions RE2
// rejects (lookarounds, backreferences) are compiled with a backtracking
// engine instead, so patterns written for Perl-style engines keep working.
func Compile(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err == nil {
		return &linear{re: re}, nil
	}
	bt, btErr := regexp2.Compile(expr, regexp2.None)
	if btErr != nil {
		return nil, &CompileError{Expr: expr, Err: err}
	}
	bt.MatchTimeout = MatchTimeout
	logger.V(2).InfoS("Pattern compiled with backtracking engine", "pattern", expr)
	return &backtracking{re: bt}, nil
}

// CompileAll compiles every expression in order. Malformed expressions are
// skipped and reported; the remaining patterns keep their relative order.
func CompileAll(exprs []string) ([]Pattern, []*CompileError) {
	out := make([]Pattern, 0, len(exprs))
	var errs []*CompileError
	for _, e := range exprs {
		p, err := Compile(e)
		if err != nil {
			errs = append(errs, err.(*CompileError))
			continue
		}
		out = append(out, p)
	}
	return out, errs
}

type linear struct {
	re *regexp.Regexp
}

func (p *linear) String() string { return p.re.String() }

func (p *linear) FindAll(s string) ([]string, error) {
	ms := p.re.FindAllStringSubmatch(s, -1)
	if len(ms) == 0 {
		return nil, nil
	}
	grouped := p.re.NumSubexp() > 0
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		if grouped {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}
	return out, nil
}

func (p *linear) MatchPrefix(s string) (bool, error) {
	loc := p.re.FindStringIndex(s)
	return loc != nil && loc[0] == 0, nil
}

func (p *linear) Search(s string) (bool, error) { return p.re.MatchString(s), nil }

type backtracking struct {
	re *regexp2.Regexp
}

func (p *backtracking) String() string { return p.re.String() }

func (p *backtracking) fail(err error) error {
	logger.V(1).InfoS("Pattern match aborted", "pattern", p.re.String(), "error", err)
	return &MatchError{Expr: p.re.String(), Err: err}
}

func (p *backtracking) FindAll(s string) ([]string, error) {
	var out []string
	m, err := p.re.FindStringMatch(s)
	for m != nil && err == nil {
		if m.GroupCount() > 1 {
			out = append(out, m.GroupByNumber(1).String())
		} else {
			out = append(out, m.String())
		}
		m, err = p.re.FindNextMatch(m)
	}
	if err != nil {
		return out, p.fail(err)
	}
	return out, nil
}

func (p *backtracking) MatchPrefix(s string) (bool, error) {
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return false, p.fail(err)
	}
	return m != nil && m.Index == 0, nil
}

func (p *backtracking) Search(s string) (bool, error) {
	ok, err := p.re.MatchString(s)
	if err != nil {
		return false, p.fail(err)
	}
	return ok, nil
}
