// logging.go - structured diagnostics.
//
// Grounded on SPEC_FULL.md §4.9: the reference codebase's own diagnostics
// are a bare stdlib `log` call in audio_chip.go; this project replaces that
// with github.com/charmbracelet/log, the one structured-logging library
// anywhere in the example pack, colorized only when attached to a terminal
// (golang.org/x/term.IsTerminal, kept from the reference codebase's own
// direct dependency on x/term).
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// newLogger builds the process-wide diagnostics logger, writing to stderr
// so stdout stays available for piped MML input/output.
func newLogger(verbose bool) *log.Logger {
	formatter := log.TextFormatter
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		formatter = log.LogfmtFormatter
	}
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Formatter:       formatter,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l
}
