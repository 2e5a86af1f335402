// Package log is a thin wrapper around the standard library logger,
// giving every component a consistently prefixed, leveled call site
// without pulling in a structured-logging dependency the pack has no
// precedent for.
package log

import (
	"io"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// SetOutput redirects every subsequent log line, for tests that want
// to capture or silence it.
func SetOutput(w io.Writer) { std.SetOutput(w) }

func Printf(format string, args ...any) { std.Printf(format, args...) }

func Fatalf(format string, args ...any) { std.Fatalf(format, args...) }

// Warnf marks a recoverable condition worth surfacing but not fatal:
// a bad header checksum, a dropped battery-save write, and similar.
func Warnf(format string, args ...any) { std.Printf("warn: "+format, args...) }
