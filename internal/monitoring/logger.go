// Package monitoring provides the shared diagnostic logger for the GCP
// preparation tools. Row-level data problems go through Warnf so a run can
// report how many input rows it skipped without failing.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// warnings counts calls to Warnf since the last ResetWarnings.
var warnings atomic.Int64

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs a recoverable data problem (malformed row, missing GPS tag,
// projection failure) and bumps the warning counter.
func Warnf(format string, v ...interface{}) {
	warnings.Add(1)
	Logf("warning: "+format, v...)
}

// Warnings returns the number of warnings emitted since the last reset.
func Warnings() int {
	return int(warnings.Load())
}

// ResetWarnings zeroes the warning counter. Called at the start of a run.
func ResetWarnings() {
	warnings.Store(0)
}
