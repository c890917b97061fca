package config

import (
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
)

// ValidationIssue describes one problem found in the config.
type ValidationIssue struct {
	Field   string
	Key     string
	Message string
}

// ValidationResult collects errors, which abort loading, and warnings,
// which are corrected in place.
type ValidationResult struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// HasErrors reports whether any error was found.
func (v *ValidationResult) HasErrors() bool { return len(v.Errors) > 0 }

// HasWarnings reports whether any warning was found.
func (v *ValidationResult) HasWarnings() bool { return len(v.Warnings) > 0 }

func (v *ValidationResult) warn(field, key, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationIssue{Field: field, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) fail(field, key, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationIssue{Field: field, Key: key, Message: fmt.Sprintf(format, args...)})
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateConfig checks cfg, clamping out-of-range numbers (reported as
// warnings) and rejecting malformed colors (reported as errors).
func ValidateConfig(cfg *UserConfig) *ValidationResult {
	v := &ValidationResult{}

	t := &cfg.Terminal
	if t.Rows < 1 || t.Rows > MaxDimension {
		v.warn("terminal", "rows", "%d out of range 1-%d, clamped", t.Rows, MaxDimension)
		t.Rows = min(max(t.Rows, 1), MaxDimension)
	}
	if t.Cols < 1 || t.Cols > MaxDimension {
		v.warn("terminal", "cols", "%d out of range 1-%d, clamped", t.Cols, MaxDimension)
		t.Cols = min(max(t.Cols, 1), MaxDimension)
	}
	if t.ScrollbackLines > MaxScrollbackLines {
		v.warn("terminal", "scrollback_lines", "%d exceeds %d, clamped", t.ScrollbackLines, MaxScrollbackLines)
		t.ScrollbackLines = MaxScrollbackLines
	}

	a := cfg.Appearance
	for key, value := range map[string]string{
		"foreground": a.Foreground,
		"background": a.Background,
		"cursor":     a.Cursor,
	} {
		if value != "" && !hexColor.MatchString(value) {
			v.fail("appearance", key, "%q is not a #rgb or #rrggbb color", value)
		}
	}

	f := &cfg.Font
	if f.CellWidth < 0 || f.CellHeight < 0 {
		v.warn("font", "cell_width", "cell metrics must be positive, using defaults")
		def := DefaultConfig().Font
		f.CellWidth, f.CellHeight = def.CellWidth, def.CellHeight
	}

	if _, err := log.ParseLevel(cfg.Logging.Level); err != nil {
		v.warn("logging", "level", "unknown level %q, using info", cfg.Logging.Level)
		cfg.Logging.Level = "info"
	}

	return v
}
