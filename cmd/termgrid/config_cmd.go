package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/termgrid/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage termgrid configuration",
		Long:  `Manage the termgrid configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printConfigPath()
		},
	}

	configCheckCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		Long: `Parse the configuration file and report values that were clamped
or replaced with defaults.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return checkConfig()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the termgrid configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return editConfigFile()
		},
	}

	var force bool
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the termgrid configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return resetConfigToDefaults(force)
		},
	}
	configResetCmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")

	configCmd.AddCommand(configPathCmd, configCheckCmd, configEditCmd, configResetCmd)
	return configCmd
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

func checkConfig() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("No config file at %s, defaults are used\n", path)
		return nil
	}

	_, warnings, err := config.LoadUserConfigFrom(path)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Printf("warning: [%s] %s: %s\n", w.Field, w.Key, w.Message)
	}
	fmt.Printf("%s: ok (%d warning(s))\n", path, len(warnings))
	return nil
}

func findEditor() (string, error) {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if editor := os.Getenv(env); editor != "" {
			return editor, nil
		}
	}
	for _, name := range []string{"vim", "vi", "nano", "emacs"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no editor found: set $EDITOR")
}

func editConfigFile() error {
	// Creates the file with defaults on first use.
	if _, err := config.LoadUserConfig(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	editor, err := findEditor()
	if err != nil {
		return err
	}

	// $EDITOR may carry arguments, such as "code --wait".
	fields := strings.Fields(editor)
	// #nosec G204 - running the user's chosen editor is intentional
	cmd := exec.Command(fields[0], append(fields[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}

func resetConfigToDefaults(force bool) error {
	if !force {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		fmt.Printf("This will overwrite %s with the defaults. Continue? [y/N] ", path)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	path, err := config.ResetConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Configuration reset: %s\n", path)
	return nil
}
