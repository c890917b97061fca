// Package main implements termgrid, a terminal emulator that runs a shell
// or command on a pseudo-terminal and shows its screen full size in the
// host terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/termgrid/internal/theme"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode       bool
	logLevel        string
	themeName       string
	listThemes      bool
	shellPath       string
	scrollbackLines int
	hideStatus      bool
	exitOnClose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "termgrid [flags] [-- command [args...]]",
		Short: "Terminal emulator for the terminal",
		Long: `termgrid runs a shell or command on a pseudo-terminal, interprets
its output into a character grid and shows that grid full screen.

Keys and pastes are forwarded to the program. Ctrl+Q quits, and
Shift+PgUp / Shift+PgDn page through scrollback.`,
		Example: `  # Run your login shell
  termgrid

  # Run a specific program and quit when it exits
  termgrid --exit-on-close -- htop

  # Use a theme
  termgrid --theme dracula

  # Print the screen a command leaves behind
  termgrid dump -- ls --color=always`,
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listThemes {
				for _, id := range theme.IDs() {
					fmt.Println(id)
				}
				return nil
			}
			return runLocal(cmd.Context(), args)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Write debug logs to the state directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config or info)")
	rootCmd.PersistentFlags().StringVar(&shellPath, "shell", "", "Shell to run when no command is given (default: from config or $SHELL)")
	rootCmd.PersistentFlags().IntVar(&scrollbackLines, "scrollback-lines", 0, "Rows kept after scrolling off the top (default: from config or 1000, negative disables)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "Color theme (e.g. dracula, nord). Leave empty for the built-in palette")
	rootCmd.Flags().BoolVar(&listThemes, "list-themes", false, "List all available themes and exit")
	rootCmd.Flags().BoolVar(&hideStatus, "no-status", false, "Hide the status line")
	rootCmd.Flags().BoolVar(&exitOnClose, "exit-on-close", false, "Quit as soon as the program exits")

	rootCmd.AddCommand(newDumpCmd(), newConfigCmd())

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}
