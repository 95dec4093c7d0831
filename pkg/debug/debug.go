// Package debug provides conditional debug logging for entropy.
//
// Debug logging is enabled by setting the ENTROPY_DEBUG environment variable.
// A truthy value enables every subsystem; a comma-separated list limits
// output to the named ones:
//
//	ENTROPY_DEBUG=1 entropy render graph.json -o out.svg
//	ENTROPY_DEBUG=layout,watcher entropy view --watch graph.json
//
// A subsystem is the word before the first colon of a message, so
// Log("layout: cooled after %d ticks", n) belongs to "layout". Messages go to
// stderr with timestamps, or to the file set with ToFile while the
// full-screen view owns the terminal. When disabled every function returns
// immediately.
package debug

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

const prefix = "[ENTROPY_DEBUG] "

var (
	mu      sync.RWMutex
	enabled bool
	only    map[string]bool
	logger  = newLogger(os.Stderr)
)

func init() {
	Configure(os.Getenv("ENTROPY_DEBUG"))
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// Configure applies an ENTROPY_DEBUG value. Empty, "0", "false" and "off"
// disable logging; "1", "true", "on" and "all" enable every subsystem;
// anything else is a list of subsystems.
func Configure(value string) {
	mu.Lock()
	defer mu.Unlock()
	only = nil
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "", "0", "false", "off":
		enabled = false
	case "1", "true", "on", "all":
		enabled = true
	default:
		enabled = true
		only = make(map[string]bool)
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				only[name] = true
			}
		}
	}
}

// Enabled returns whether debug logging is enabled for any subsystem.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled turns logging on for every subsystem, or off.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	only = nil
}

// SetOutput redirects debug output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// ToFile appends debug output to path until the returned restore function
// puts it back on stderr. It does nothing when logging is disabled.
func ToFile(path string) (restore func(), err error) {
	if !Enabled() {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return func() {
		SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// subsystem returns the lowercased word before the first colon or dot.
func subsystem(s string) string {
	if i := strings.IndexAny(s, ":."); i > 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func get(topic string) *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled || (only != nil && !only[subsystem(topic)]) {
		return nil
	}
	return logger
}

// Log writes a printf-style debug message if its subsystem is enabled.
func Log(format string, args ...any) {
	if l := get(format); l != nil {
		l.Printf(format, args...)
	}
}

// LogEnterExit logs function entry and exit with timing. The subsystem is
// the part of name before the first dot.
//
//	defer debug.LogEnterExit("analysis.Analyze")()
func LogEnterExit(name string) func() {
	l := get(name)
	if l == nil {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		l.Printf("<- %s (%v)", name, time.Since(start))
	}
}
