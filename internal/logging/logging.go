// Package logging builds the console logger shared by the tagnet commands.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a console logger.
type Options struct {
	Debug bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a timestamped key/value logger at Info level, or Debug when
// requested.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
