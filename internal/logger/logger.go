// Package logger prints progress lines for kbctl's long-running commands.
// Everything goes to stderr and only when the --verbose flag is set, so
// command output on stdout stays machine-readable.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type state struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
}

var log = state{out: os.Stderr}

// SetVerbose toggles verbose output for the whole process.
func SetVerbose(v bool) {
	log.mu.Lock()
	log.verbose = v
	log.mu.Unlock()
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	log.mu.RLock()
	defer log.mu.RUnlock()
	return log.verbose
}

// SetOutput redirects log lines away from stderr. Tests use this to
// capture output.
func SetOutput(w io.Writer) {
	log.mu.Lock()
	log.out = w
	log.mu.Unlock()
}

func emit(prefix, format string, args ...any) {
	log.mu.RLock()
	defer log.mu.RUnlock()
	if !log.verbose {
		return
	}
	fmt.Fprintf(log.out, prefix+format+"\n", args...)
}

// Debug prints low-level detail.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args...)
}

// Info prints a progress line.
func Info(format string, args ...any) {
	emit("[INFO] ", format, args...)
}

// Warn prints a recoverable problem.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}

// Section marks the start of a named phase.
func Section(name string) {
	log.mu.RLock()
	defer log.mu.RUnlock()
	if !log.verbose {
		return
	}
	fmt.Fprintf(log.out, "\n=== %s ===\n", name)
}
