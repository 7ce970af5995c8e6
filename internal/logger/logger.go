// Package logger is a thin wrapper over klog so the rest of the module logs
// through one structured, leveled API.
package logger

import (
	"flag"
	"fmt"

	"k8s.io/klog/v2"
)

// InitFlags registers klog flags (-v, -logtostderr, ...) on fs.
func InitFlags(fs *flag.FlagSet) {
	klog.InitFlags(fs)
}

func InfoS(msg string, keysAndValues ...interface{}) {
	klog.InfoS(msg, keysAndValues...)
}

func ErrorS(err error, msg string, keysAndValues ...interface{}) {
	klog.ErrorS(err, msg, keysAndValues...)
}

func Warning(msg string, keysAndValues ...interface{}) {
	klog.InfoS("WARNING: "+msg, keysAndValues...)
}

func V(level int) klog.Verbose {
	return klog.V(klog.Level(level))
}

func Flush() {
	klog.Flush()
}

// NamedLogger prefixes every message with a component name.
type NamedLogger struct {
	name string
}

func WithName(name string) *NamedLogger {
	return &NamedLogger{name: name}
}

func (l *NamedLogger) InfoS(msg string, keysAndValues ...interface{}) {
	klog.InfoS(fmt.Sprintf("[%s] %s", l.name, msg), keysAndValues...)
}

func (l *NamedLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	klog.ErrorS(err, fmt.Sprintf("[%s] %s", l.name, msg), keysAndValues...)
}

func (l *NamedLogger) Warning(msg string, keysAndValues ...interface{}) {
	klog.InfoS(fmt.Sprintf("[%s] WARNING: %s", l.name, msg), keysAndValues...)
}

// V returns a verbosity-gated logger that keeps the component prefix.
func (l *NamedLogger) V(level int) Verbose {
	return Verbose{v: klog.V(klog.Level(level)), name: l.name}
}

// Verbose is a NamedLogger gated on a klog verbosity level.
type Verbose struct {
	v    klog.Verbose
	name string
}

func (v Verbose) InfoS(msg string, keysAndValues ...interface{}) {
	v.v.InfoS(fmt.Sprintf("[%s] %s", v.name, msg), keysAndValues...)
}

func (v Verbose) Enabled() bool { return v.v.Enabled() }
