package main

import (
	"fmt"
	"io"
	"os"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

const logRelPath = "termgrid/termgrid.log"

// setupLogger installs the default logger. With --debug it appends to the
// log file in the XDG state directory at debug level. Otherwise it writes to
// out at the configured level. The returned func closes the log file.
func setupLogger(level string, out io.Writer) (*log.Logger, func(), error) {
	closeFn := func() {}
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, closeFn, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	if debugMode {
		path, err := xdg.StateFile(logRelPath)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to get log path: %w", err)
		}
		// #nosec G304 - the log path comes from the XDG state directory
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		lvl = log.DebugLevel
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "termgrid",
		Level:           lvl,
	})
	log.SetDefault(logger)
	return logger, closeFn, nil
}
