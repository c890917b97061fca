package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/termgrid/internal/app"
	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/terminal"
	"github.com/Gaurav-Gosain/termgrid/internal/theme"
)

// loadConfig reads the user config and applies flags and the command line
// on top. A config that fails to load falls back to the defaults; the error
// is returned so it can be logged once logging is set up.
func loadConfig(args []string) (*config.UserConfig, error) {
	userConfig, loadErr := config.LoadUserConfig()
	if loadErr != nil {
		userConfig = config.DefaultConfig()
	}

	config.ApplyOverrides(config.Overrides{
		Shell:           shellPath,
		ThemeName:       themeName,
		ScrollbackLines: scrollbackLines,
		LogLevel:        logLevel,
	}, userConfig)

	if len(args) > 0 {
		userConfig.Terminal.Shell = args[0]
		userConfig.Terminal.Args = args[1:]
	}
	return userConfig, loadErr
}

// hostSize returns the grid size that fills the host terminal, less
// reserved rows, or the configured size when stdout is not a terminal.
func hostSize(cfg *config.UserConfig, reserved int) (rows, cols int) {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > reserved {
			return h - reserved, w
		}
	}
	return cfg.Terminal.Rows, cfg.Terminal.Cols
}

func sessionOptions(cfg *config.UserConfig, rows, cols int, logger *log.Logger) terminal.Options {
	return terminal.Options{
		Rows:            rows,
		Cols:            cols,
		Shell:           cfg.Terminal.Shell,
		Args:            cfg.Terminal.Args,
		ScrollbackLines: cfg.Terminal.ScrollbackLines,
		TermProgram:     cfg.Terminal.TermProgram,
		Metrics:         cfg.Font.Metrics(),
		Logger:          logger,
	}
}

func runLocal(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	userConfig, cfgErr := loadConfig(args)

	// The viewer owns the screen, so logs only go to the debug file.
	logger, closeLog, err := setupLogger(userConfig.Logging.Level, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfgErr != nil {
		logger.Warn("failed to load config, using defaults", "err", cfgErr)
	}
	if configPath, err := config.GetConfigPath(); err == nil {
		logger.Debug("configuration", "path", configPath)
	}

	if err := theme.Initialize(userConfig.Appearance.Theme); err != nil {
		return fmt.Errorf("failed to initialize theme: %w", err)
	}

	reserved := config.StatusBarHeight
	if hideStatus {
		reserved = 0
	}
	rows, cols := hostSize(userConfig, reserved)

	sess, err := terminal.Start(sessionOptions(userConfig, rows, cols, logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to close session", "err", err)
		}
	}()

	err = app.Run(ctx, sess, app.Options{
		Palette:     theme.NewPalette(userConfig.Appearance),
		HideStatus:  hideStatus,
		ExitOnClose: exitOnClose,
		Logger:      logger,
	}, tea.WithoutSignalHandler())

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
