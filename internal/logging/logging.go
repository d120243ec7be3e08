// Package logging builds the log15 loggers shared by the collector, the
// enforcer and the command entry points.
package logging

import (
	"fmt"
	"io"

	"github.com/inconshreveable/log15"
)

// Output formats accepted by New
const (
	FormatJSON     = "json"
	FormatLogfmt   = "logfmt"
	FormatTerminal = "terminal"
)

// New returns a root logger writing records at or above level to w
func New(level, format string, w io.Writer) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var fmtr log15.Format
	switch format {
	case FormatJSON:
		fmtr = log15.JsonFormat()
	case FormatLogfmt:
		fmtr = log15.LogfmtFormat()
	case FormatTerminal:
		fmtr = log15.TerminalFormat()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(w, fmtr)))
	return logger, nil
}

// Discard returns a logger that drops every record
func Discard() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}
