package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

const configRelPath = "termgrid/config.toml"

// UserConfig represents the user's custom configuration
type UserConfig struct {
	Terminal   TerminalConfig   `toml:"terminal"`
	Appearance AppearanceConfig `toml:"appearance"`
	Font       FontConfig       `toml:"font"`
	Logging    LoggingConfig    `toml:"logging"`
}

// TerminalConfig holds session settings
type TerminalConfig struct {
	Rows            int      `toml:"rows"`             // Initial grid height (default: 24)
	Cols            int      `toml:"cols"`             // Initial grid width (default: 80)
	Shell           string   `toml:"shell"`            // Shell or command path; empty auto-detects
	Args            []string `toml:"args,omitempty"`   // Arguments passed to the shell
	ScrollbackLines int      `toml:"scrollback_lines"` // Rows kept after scrolling off (negative disables)
	TermProgram     string   `toml:"term_program"`     // Exported as TERM_PROGRAM
}

// AppearanceConfig holds color settings consumed by the renderer
type AppearanceConfig struct {
	Theme      string `toml:"theme"`      // bubbletint theme id; empty uses the built-in palette
	Foreground string `toml:"foreground"` // Default text color, #rrggbb
	Background string `toml:"background"` // Default background color, #rrggbb; empty keeps the host's
	Cursor     string `toml:"cursor"`     // Cursor color, #rrggbb
}

// FontConfig holds font metrics. The grid never reads these; renderers use
// them to map between pixels and cells.
type FontConfig struct {
	Family     string  `toml:"family"`
	Size       float64 `toml:"size"`
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	LineHeight float64 `toml:"line_height"`
}

// LoggingConfig holds diagnostics settings
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error (default: info)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Terminal: TerminalConfig{
			Rows:            DefaultRows,
			Cols:            DefaultCols,
			ScrollbackLines: DefaultScrollbackLines,
			TermProgram:     DefaultTermProgram,
		},
		Appearance: AppearanceConfig{
			Foreground: "#cccccc",
			Cursor:     "#cccccc",
		},
		Font: FontConfig{
			Family:     "monospace",
			Size:       14,
			CellWidth:  8.4,
			CellHeight: 18,
			LineHeight: 1.2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadUserConfig loads the user configuration from the XDG config directory,
// creating a default file on first run.
func LoadUserConfig() (*UserConfig, error) {
	configPath, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return createDefaultConfig()
	}
	cfg, _, err := LoadUserConfigFrom(configPath)
	return cfg, err
}

// LoadUserConfigFrom parses the config at path, fills missing fields from
// the defaults and validates it. Warnings are returned alongside the config.
func LoadUserConfigFrom(path string) (*UserConfig, []ValidationIssue, error) {
	// #nosec G304 - reading the user's own config is intentional
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg UserConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	fillMissing(&cfg, DefaultConfig())

	validation := ValidateConfig(&cfg)
	if validation.HasErrors() {
		for _, e := range validation.Errors {
			fmt.Fprintf(os.Stderr, "Config error in [%s]: %s - %s\n", e.Field, e.Key, e.Message)
		}
		return nil, validation.Warnings, fmt.Errorf("configuration has %d error(s), please fix and restart", len(validation.Errors))
	}
	return &cfg, validation.Warnings, nil
}

// createDefaultConfig writes the default config to the XDG config directory.
func createDefaultConfig() (*UserConfig, error) {
	configPath, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	cfg := DefaultConfig()
	if err := WriteConfig(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig writes cfg to path with an explanatory header.
func WriteConfig(path string, cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# termgrid configuration file\n")
	sb.WriteString("#\n")
	sb.WriteString("# Configuration location: " + path + "\n\n")
	sb.WriteString("# [terminal]\n")
	sb.WriteString("#   rows, cols: initial grid size (1 to 1000)\n")
	sb.WriteString("#   shell: command to run; empty uses $SHELL, then /bin/bash, /bin/zsh, /bin/sh\n")
	sb.WriteString("#   scrollback_lines: rows kept after scrolling off the top (negative disables)\n")
	sb.WriteString("# [appearance]\n")
	sb.WriteString("#   theme: bubbletint theme id such as dracula or nord\n")
	sb.WriteString("#   foreground, background, cursor: #rrggbb colors\n")
	sb.WriteString("# [font]\n")
	sb.WriteString("#   cell_width, cell_height: pixel size of one cell, used by renderers\n\n")
	sb.Write(data)

	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResetConfig overwrites the config file with the defaults and returns its path.
func ResetConfig() (string, error) {
	path, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	return path, WriteConfig(path, DefaultConfig())
}

func fillMissing(cfg, def *UserConfig) {
	t, dt := &cfg.Terminal, def.Terminal
	if t.Rows == 0 {
		t.Rows = dt.Rows
	}
	if t.Cols == 0 {
		t.Cols = dt.Cols
	}
	if t.ScrollbackLines == 0 {
		t.ScrollbackLines = dt.ScrollbackLines
	}
	if t.TermProgram == "" {
		t.TermProgram = dt.TermProgram
	}

	a, da := &cfg.Appearance, def.Appearance
	if a.Foreground == "" {
		a.Foreground = da.Foreground
	}
	if a.Cursor == "" {
		a.Cursor = da.Cursor
	}

	f, df := &cfg.Font, def.Font
	if f.Family == "" {
		f.Family = df.Family
	}
	if f.Size == 0 {
		f.Size = df.Size
	}
	if f.CellWidth == 0 {
		f.CellWidth = df.CellWidth
	}
	if f.CellHeight == 0 {
		f.CellHeight = df.CellHeight
	}
	if f.LineHeight == 0 {
		f.LineHeight = df.LineHeight
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		// Return where it would be created
		return xdg.ConfigFile(configRelPath)
	}
	return path, nil
}
