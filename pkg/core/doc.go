// Package core provides a small, stable facade over SecureGit's internal
// packages for programs that embed the scanner instead of running the hook.
//
// Example:
//
//	cfg, _, err := core.Resolve(".")
//	if err != nil { /* handle */ }
//	v, err := core.Scan(ctx, []string{"app.py"}, cfg, core.Options{Root: "."})
//	if err != nil { /* handle */ }
//	_ = core.MarshalVerdict(os.Stdout, v)
package core
