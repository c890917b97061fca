// Package config provides configuration constants and user settings.
package config

import "time"

// =============================================================================
// Terminal Defaults
// =============================================================================

const (
	// DefaultRows is the initial grid height when nothing else is configured
	DefaultRows = 24

	// DefaultCols is the initial grid width when nothing else is configured
	DefaultCols = 80

	// MaxDimension bounds rows and cols accepted from config and flags
	MaxDimension = 1000

	// DefaultScrollbackLines is the number of rows kept after they scroll off
	DefaultScrollbackLines = 1000

	// MaxScrollbackLines caps the scrollback ring
	MaxScrollbackLines = 100000

	// DefaultTermProgram is exported to the child as TERM_PROGRAM
	DefaultTermProgram = "termgrid"
)

// =============================================================================
// I/O
// =============================================================================

const (
	// ReadBufferSize is the size of the ingress bridge's read buffer
	ReadBufferSize = 4096
)

// =============================================================================
// Timeouts and Intervals
// =============================================================================

const (
	// ProcessWaitDelay is how long the exit watcher lets the bridge drain
	// output written just before the child exited
	ProcessWaitDelay = 50 * time.Millisecond

	// ProcessShutdownTimeout bounds each stage of session teardown
	ProcessShutdownTimeout = 500 * time.Millisecond

	// StatusRefreshInterval is how often the viewer refreshes process stats
	StatusRefreshInterval = time.Second

	// DefaultDumpTimeout is how long `termgrid dump` waits for the child
	DefaultDumpTimeout = 5 * time.Second
)

// =============================================================================
// Rendering
// =============================================================================

const (
	// NormalFPS is the viewer's frame rate cap
	NormalFPS = 60

	// StatusBarHeight is the number of rows the viewer reserves for status
	StatusBarHeight = 1
)
