package config

// Overrides contains CLI flag values that can override user config.
// Zero values indicate the flag was not set and should use the user config default.
type Overrides struct {
	// Rows and Cols override the initial grid size
	Rows int
	Cols int

	// Shell overrides the command to run
	Shell string

	// Args replaces the shell arguments when non-empty
	Args []string

	// ThemeName is the theme to load
	ThemeName string

	// ScrollbackLines overrides the scrollback buffer size (0 means use default)
	ScrollbackLines int

	// LogLevel overrides the logging level
	LogLevel string
}

// ApplyOverrides applies CLI flag overrides on top of userConfig, which is
// modified in place. A nil userConfig starts from DefaultConfig.
func ApplyOverrides(overrides Overrides, userConfig *UserConfig) *UserConfig {
	if userConfig == nil {
		userConfig = DefaultConfig()
	}

	t := &userConfig.Terminal
	if overrides.Rows > 0 {
		t.Rows = min(overrides.Rows, MaxDimension)
	}
	if overrides.Cols > 0 {
		t.Cols = min(overrides.Cols, MaxDimension)
	}
	if overrides.Shell != "" {
		t.Shell = overrides.Shell
	}
	if len(overrides.Args) > 0 {
		t.Args = overrides.Args
	}
	if overrides.ScrollbackLines != 0 {
		t.ScrollbackLines = min(overrides.ScrollbackLines, MaxScrollbackLines)
	}

	if overrides.ThemeName != "" {
		userConfig.Appearance.Theme = overrides.ThemeName
	}
	if overrides.LogLevel != "" {
		userConfig.Logging.Level = overrides.LogLevel
	}
	return userConfig
}
