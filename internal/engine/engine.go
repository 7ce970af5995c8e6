package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/securegit/securegit/internal/allowlist"
	"github.com/securegit/securegit/internal/cache"
	"github.com/securegit/securegit/internal/config"
	"github.com/securegit/securegit/internal/ignore"
	"github.com/securegit/securegit/internal/logger"
	"github.com/securegit/securegit/internal/pattern"
	"github.com/securegit/securegit/internal/types"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxBytes is the per-file read cap when Options.MaxBytes is zero.
const DefaultMaxBytes = 1 << 20

const sniffLen = 8000

var log = logger.WithName("engine")

// Options controls how a scan reads files. It never changes what counts as
// a finding.
type Options struct {
	// Root is the directory relative paths are read from. Empty means the
	// current directory.
	Root string
	// Threads bounds concurrent file scans (0 = GOMAXPROCS).
	Threads int
	// MaxBytes caps how much of a file is scanned (0 = DefaultMaxBytes,
	// negative = unlimited). Larger files are truncated with a warning.
	MaxBytes int64
	// Ignore drops matching paths before any check runs.
	Ignore ignore.Matcher
	// Cache enables the clean-file cache stored under Root.
	Cache bool
	// Progress, when set, is called once per content-scanned file.
	Progress func()
}

// Scan checks files against cfg. Files are repository-relative paths. The
// run stops after the prohibited-file check when it finds anything;
// otherwise files with a valid extension are scanned line by line.
// Per-file and per-pattern problems are reported as warnings; only context
// cancellation returns an error.
func Scan(ctx context.Context, files []string, cfg config.Config, opts Options) (types.Verdict, error) {
	if !cfg.Enabled {
		return types.Verdict{Disabled: true}, nil
	}
	var v types.Verdict
	allow := allowlist.New(cfg.Allowlist)
	v.Warnings = append(v.Warnings, allow.Warnings()...)

	kept := dropIgnored(files, opts.Ignore)
	v.Ignored = len(files) - len(kept)
	if v.Ignored > 0 {
		log.V(1).InfoS("Files dropped by ignore file", "count", v.Ignored)
	}
	files = kept

	hits, warns := checkProhibited(files, cfg, allow)
	v.Warnings = append(v.Warnings, warns...)
	if len(hits) > 0 {
		v.Prohibited = hits
		return v, nil
	}

	targets := FilterExtensions(files, cfg.ValidExtensions)
	patterns, errs := pattern.CompileAll(cfg.Patterns)
	for _, e := range errs {
		log.V(1).InfoS("Skipping content pattern", "pattern", e.Expr, "error", e.Err)
		v.Warnings = append(v.Warnings, types.Warning{
			Kind:    types.WarnPatternCompile,
			Pattern: e.Expr,
			Message: "content pattern: " + e.Err.Error(),
		})
	}

	s := &scanner{
		opts:     opts,
		allow:    allow,
		patterns: patterns,
		maxBytes: opts.MaxBytes,
	}
	if s.maxBytes == 0 {
		s.maxBytes = DefaultMaxBytes
	}
	if opts.Cache {
		s.db, _ = cache.Load(opts.Root)
		s.configFP = configFingerprint(cfg)
	}

	results, err := s.run(ctx, targets)
	if err != nil {
		return v, err
	}

	v.FilesScanned = len(targets)
	v.Findings = map[string][]types.Finding{}
	updated := map[string]string{}
	for i, r := range results {
		if len(r.findings) > 0 {
			v.Findings[targets[i]] = r.findings
		}
		v.Warnings = append(v.Warnings, r.warnings...)
		if r.fingerprint != "" && len(r.findings) == 0 && len(r.warnings) == 0 {
			updated[targets[i]] = r.fingerprint
		}
	}
	if opts.Cache && len(updated) > 0 {
		if s.db.Entries == nil {
			s.db.Entries = map[string]string{}
		}
		for k, fp := range updated {
			s.db.Entries[k] = fp
		}
		if err := cache.Save(opts.Root, s.db); err != nil {
			log.V(1).InfoS("Could not save cache", "error", err)
		}
	}
	return v, nil
}

func dropIgnored(files []string, ign ignore.Matcher) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if ign.Match(f) {
			log.V(2).InfoS("Ignored by ignore file", "path", f)
			continue
		}
		out = append(out, f)
	}
	return out
}

// checkProhibited tests every file that is not allowlisted as a whole: the
// base name against the exact list, then the full path against each
// pattern, stopping at the first matching pattern.
func checkProhibited(files []string, cfg config.Config, allow *allowlist.Resolver) ([]types.ProhibitedHit, []types.Warning) {
	var warns []types.Warning
	patterns, errs := pattern.CompileAll(cfg.ProhibitedPatterns)
	for _, e := range errs {
		log.V(1).InfoS("Skipping prohibited pattern", "pattern", e.Expr, "error", e.Err)
		warns = append(warns, types.Warning{
			Kind:    types.WarnPatternCompile,
			Pattern: e.Expr,
			Message: "prohibited pattern: " + e.Err.Error(),
		})
	}
	names := make(map[string]struct{}, len(cfg.ProhibitedFiles))
	for _, n := range cfg.ProhibitedFiles {
		names[n] = struct{}{}
	}

	var hits []types.ProhibitedHit
	for _, f := range files {
		if allow.FileSuppressed(f) {
			continue
		}
		base := path.Base(filepath.ToSlash(f))
		if _, ok := names[base]; ok {
			hits = append(hits, types.ProhibitedHit{Path: f, Reason: types.ReasonName, Rule: base})
			continue
		}
		for _, p := range patterns {
			ok, err := p.MatchPrefix(f)
			if err != nil {
				warns = append(warns, timeoutWarning(f, p, err))
				continue
			}
			if ok {
				hits = append(hits, types.ProhibitedHit{Path: f, Reason: types.ReasonPattern, Rule: p.String()})
				break
			}
		}
	}
	return hits, warns
}

// FilterExtensions keeps files whose name ends with one of exts.
func FilterExtensions(files, exts []string) []string {
	var out []string
	for _, f := range files {
		for _, e := range exts {
			if strings.HasSuffix(f, e) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

type fileResult struct {
	findings    []types.Finding
	warnings    []types.Warning
	fingerprint string
}

type scanner struct {
	opts     Options
	allow    *allowlist.Resolver
	patterns []pattern.Pattern
	maxBytes int64
	db       cache.DB
	configFP string

	progressMu sync.Mutex
}

// run scans targets on a bounded worker group. Each worker only writes its
// own slot, so results line up with targets regardless of completion order.
func (s *scanner) run(ctx context.Context, targets []string) ([]fileResult, error) {
	results := make([]fileResult, len(targets))
	threads := s.opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, rel := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.scanFile(rel)
			s.progress()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *scanner) progress() {
	if s.opts.Progress == nil {
		return
	}
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.opts.Progress()
}

func (s *scanner) scanFile(rel string) fileResult {
	var res fileResult
	if s.allow.FileSuppressed(rel) {
		log.V(2).InfoS("File allowlisted", "path", rel)
		return res
	}
	data, truncated, err := s.read(rel)
	if err != nil {
		log.V(1).InfoS("Could not read file", "path", rel, "error", err)
		res.warnings = append(res.warnings, types.Warning{Kind: types.WarnFileRead, Path: rel, Message: err.Error()})
		return res
	}
	if w, ok := checkText(rel, data); !ok {
		log.V(1).InfoS("Skipping non-text file", "path", rel, "reason", w.Message)
		res.warnings = append(res.warnings, w)
		return res
	}
	if truncated {
		res.warnings = append(res.warnings, types.Warning{
			Kind:    types.WarnTruncated,
			Path:    rel,
			Message: fmt.Sprintf("only the first %d bytes were scanned", len(data)),
		})
	}
	if s.opts.Cache {
		res.fingerprint = cache.Fingerprint(s.configFP, data)
		if s.db.Clean(rel, res.fingerprint) {
			log.V(2).InfoS("Unchanged since last clean scan", "path", rel)
			return res
		}
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	timedOut := map[string]bool{}
	for i, line := range strings.Split(text, "\n") {
		n := i + 1
		if s.allow.LineSuppressed(rel, n) {
			continue
		}
		for _, p := range s.patterns {
			matches, err := p.FindAll(line)
			if err != nil && !timedOut[p.String()] {
				// one warning per pattern and file
				timedOut[p.String()] = true
				w := timeoutWarning(rel, p, err)
				w.Message = fmt.Sprintf("line %d: %s", n, w.Message)
				res.warnings = append(res.warnings, w)
			}
			for _, m := range matches {
				if s.allow.MatchSuppressed(rel, n, m) {
					continue
				}
				res.findings = append(res.findings, types.Finding{Path: rel, Line: n, Match: m, Pattern: p.String()})
			}
		}
	}
	return res
}

func timeoutWarning(rel string, p pattern.Pattern, err error) types.Warning {
	log.V(1).InfoS("Pattern match abandoned", "path", rel, "pattern", p.String(), "error", err)
	msg := err.Error()
	var me *pattern.MatchError
	if errors.As(err, &me) {
		msg = me.Err.Error()
	}
	return types.Warning{Kind: types.WarnPatternTimeout, Path: rel, Pattern: p.String(), Message: msg}
}

// read returns at most maxBytes of the file. When the file is longer the
// data is cut back to the last complete line.
func (s *scanner) read(rel string) ([]byte, bool, error) {
	p := filepath.FromSlash(rel)
	if s.opts.Root != "" {
		p = filepath.Join(s.opts.Root, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	var r io.Reader = f
	if s.maxBytes > 0 {
		r = io.LimitReader(f, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	if s.maxBytes <= 0 || int64(len(data)) <= s.maxBytes {
		return data, false, nil
	}
	data = data[:s.maxBytes]
	if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
		data = data[:i+1]
	} else {
		for k := 0; k < utf8.UTFMax && len(data) > 0 && !utf8.Valid(data); k++ {
			data = data[:len(data)-1]
		}
	}
	return data, true, nil
}

// checkText rejects content that cannot be scanned as text: binary data, or
// bytes that are not valid UTF-8.
func checkText(rel string, data []byte) (types.Warning, bool) {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	valid := utf8.Valid(data)
	if valid && bytes.IndexByte(head, 0) < 0 {
		return types.Warning{}, true
	}
	mt := mimetype.Detect(data)
	if !isText(mt) {
		return types.Warning{Kind: types.WarnBinary, Path: rel, Message: "binary content (" + mt.String() + ")"}, false
	}
	if !valid {
		return types.Warning{Kind: types.WarnFileRead, Path: rel, Message: "content is not valid UTF-8"}, false
	}
	return types.Warning{}, true
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func configFingerprint(cfg config.Config) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return cache.Hash(b)
}
