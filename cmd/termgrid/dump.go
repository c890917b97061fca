package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/termgrid/internal/app"
	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/terminal"
	"github.com/Gaurav-Gosain/termgrid/internal/theme"
)

type dumpOptions struct {
	rows, cols int
	timeout    time.Duration
	color      bool
	scrollback bool
}

func newDumpCmd() *cobra.Command {
	var opts dumpOptions

	cmd := &cobra.Command{
		Use:   "dump [flags] -- command [args...]",
		Short: "Run a command headless and print its final screen",
		Long: `Run a command on a pseudo-terminal without showing it, wait for it
to exit, then print the screen it left behind.

The grid defaults to the size of the host terminal. If the command is
still running when the timeout expires it is stopped and the screen at
that moment is printed.`,
		Example: `  # Capture colored output as plain text
  termgrid dump -- ls --color=always

  # Fixed size, with SGR colors kept
  termgrid dump --rows 10 --cols 40 --color -- htop -n 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.rows, "rows", 0, "Grid rows (default: host terminal or config)")
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "Grid columns (default: host terminal or config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", config.DefaultDumpTimeout, "How long to wait for the command to exit")
	cmd.Flags().BoolVar(&opts.color, "color", false, "Keep colors and attributes as SGR sequences")
	cmd.Flags().BoolVar(&opts.scrollback, "scrollback", false, "Print scrollback above the screen")
	return cmd
}

func runDump(ctx context.Context, args []string, opts dumpOptions) error {
	userConfig, cfgErr := loadConfig(args)
	config.ApplyOverrides(config.Overrides{Rows: opts.rows, Cols: opts.cols}, userConfig)

	logger, closeLog, err := setupLogger(userConfig.Logging.Level, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	if cfgErr != nil {
		logger.Warn("failed to load config, using defaults", "err", cfgErr)
	}

	rows, cols := hostSize(userConfig, 0)
	if opts.rows > 0 {
		rows = userConfig.Terminal.Rows
	}
	if opts.cols > 0 {
		cols = userConfig.Terminal.Cols
	}

	sess, err := terminal.Start(sessionOptions(userConfig, rows, cols, logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	select {
	case <-sess.Done():
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Warn("command still running, stopping it", "timeout", opts.timeout)
		}
	}
	_ = sess.Close()

	var pal theme.Palette
	if opts.color {
		if err := theme.Initialize(userConfig.Appearance.Theme); err != nil {
			return fmt.Errorf("failed to initialize theme: %w", err)
		}
		pal = theme.NewPalette(userConfig.Appearance)
	}

	out := os.Stdout
	if opts.scrollback {
		for i := range sess.ScrollbackLen() {
			line := sess.ScrollbackLine(i)
			if opts.color {
				fmt.Fprintln(out, app.RenderLine(line, pal))
			} else {
				fmt.Fprintln(out, plainText(line))
			}
		}
	}

	snap := sess.Snapshot()
	if opts.color {
		fmt.Fprintln(out, app.RenderSnapshot(snap, pal))
	} else {
		fmt.Fprintln(out, snap.Text())
	}

	if code := sess.ExitCode(); code > 0 {
		return fmt.Errorf("command exited with status %d", code)
	}
	return nil
}

func plainText(cells []grid.Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteRune(c.Rune())
	}
	return strings.TrimRight(sb.String(), " ")
}
