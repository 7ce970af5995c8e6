package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/securegit/securegit/internal/catalog"
	"github.com/securegit/securegit/internal/types"
)

type PrintOptions struct {
	NoColor bool
	// Total is the number of files the run was given, before any filtering.
	Total      int
	EntireRepo bool
	Duration   time.Duration
}

type styles struct {
	pass, fail, warn lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{pass: plain, fail: plain, warn: plain}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		pass: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		fail: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// PrintText writes the human-readable report shown when git runs the hook.
func PrintText(w io.Writer, v types.Verdict, opts PrintOptions) {
	st := newStyles(w, opts.NoColor)
	if printPreamble(w, v, opts, st) {
		return
	}
	printWarnings(w, v, st)

	if len(v.Prohibited) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.warn.Render("⚠️ WARNING: The following files should not be committed:"))
		for _, h := range v.Prohibited {
			fmt.Fprintf(w, "  → %s: %s\n", h.Path, h.Reason.Message())
		}
		fmt.Fprintln(w, st.fail.Render("❌ Commit aborted. Please remove these files."))
		printFooter(w, v, opts)
		return
	}

	for _, p := range v.Paths() {
		fmt.Fprintf(w, "\n❌ Hardcoded secrets found in %s:\n", p)
		for _, f := range v.Findings[p] {
			fmt.Fprintf(w, "  → Line %d: %s\n", f.Line, f.Match)
		}
	}
	if v.FindingCount() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.fail.Render("🚫 Commit contains potential hardcoded secrets!"))
		fmt.Fprintln(w, st.fail.Render("❌ Commit aborted. Clean your code before committing."))
	} else {
		fmt.Fprintln(w, st.pass.Render("✅ No hardcoded secrets found."))
	}
	printFooter(w, v, opts)
}

// printPreamble writes the lines that precede results and reports whether
// the run ended before scanning.
func printPreamble(w io.Writer, v types.Verdict, opts PrintOptions, st styles) bool {
	if v.Disabled {
		fmt.Fprintln(w, st.pass.Render("✅ SecureGit-Hook is disabled in configuration. Skipping checks."))
		return true
	}
	if opts.EntireRepo {
		fmt.Fprintln(w, "🔍 Scanning entire repository as configured...")
	}
	if opts.Total == 0 {
		fmt.Fprintln(w, st.pass.Render("✅ No relevant files staged."))
		return true
	}
	fmt.Fprintf(w, "🔍 Scanning %d file(s)...\n", opts.Total)
	if v.Ignored > 0 {
		fmt.Fprintln(w, st.warn.Render(fmt.Sprintf("ℹ️ Skipped %d file(s) listed in .securegitignore", v.Ignored)))
	}
	return false
}

func printWarnings(w io.Writer, v types.Verdict, st styles) {
	for _, wr := range v.Warnings {
		var line string
		switch {
		case wr.Kind == types.WarnPatternTimeout:
			line = fmt.Sprintf("⚠️ Pattern %q timed out on %s: %s", wr.Pattern, wr.Path, wr.Message)
		case wr.Path != "":
			line = fmt.Sprintf("⚠️ Could not read %s: %s", wr.Path, wr.Message)
			if wr.Kind == types.WarnTruncated {
				line = fmt.Sprintf("⚠️ Truncated %s: %s", wr.Path, wr.Message)
			}
		case wr.Pattern != "":
			line = fmt.Sprintf("⚠️ Skipping invalid pattern %q: %s", wr.Pattern, wr.Message)
		default:
			line = "⚠️ " + wr.Message
		}
		fmt.Fprintln(w, st.warn.Render(line))
	}
}

func printFooter(w io.Writer, v types.Verdict, opts PrintOptions) {
	if opts.Duration <= 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files scanned: %d\n", v.FilesScanned)
	fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
}

// PrintTable writes prohibited files and findings as bordered tables with
// matched values masked.
func PrintTable(w io.Writer, v types.Verdict, opts PrintOptions) error {
	st := newStyles(w, opts.NoColor)
	if printPreamble(w, v, opts, st) {
		return nil
	}
	printWarnings(w, v, st)

	if len(v.Prohibited) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Path", "Reason", "Rule")
		for _, h := range v.Prohibited {
			if err := table.Append(h.Path, h.Reason.Message(), h.Rule); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w, st.fail.Render("❌ Commit aborted. Please remove these files."))
		printFooter(w, v, opts)
		return nil
	}

	findings := v.AllFindings()
	if len(findings) == 0 {
		fmt.Fprintln(w, st.pass.Render("✅ No hardcoded secrets found."))
		printFooter(w, v, opts)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("Path", "Line", "Rule", "Match")
	for _, f := range findings {
		if err := table.Append(f.Path, strconv.Itoa(f.Line), ruleName(f.Pattern), maskValue(f.Match)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w, st.fail.Render(fmt.Sprintf("🚫 %d potential hardcoded secret(s) in %d file(s).", len(findings), len(v.Findings))))
	printFooter(w, v, opts)
	return nil
}

// ruleName returns the catalog ID for built-in patterns and "custom" for
// patterns supplied by configuration.
func ruleName(expr string) string {
	if id := catalog.RuleID(expr); id != "" {
		return id
	}
	return "custom"
}

func maskValue(s string) string {
	r := []rune(s)
	if len(r) <= 8 {
		return "********"
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}
