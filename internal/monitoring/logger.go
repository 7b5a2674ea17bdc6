// Package monitoring holds the process-wide diagnostic logger used by the
// spiral pipeline, the artifact writers and the run store.
package monitoring

import (
	"io"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf; the
// CLI mutes it with -quiet and tests redirect it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetOutput points Logf at a fresh log.Logger writing to w with the standard
// flags. It returns a function that restores the previous logger.
func SetOutput(w io.Writer) (restore func()) {
	prev := Logf
	Logf = log.New(w, "", log.LstdFlags).Printf
	return func() { Logf = prev }
}
