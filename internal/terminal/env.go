package terminal

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/colorprofile"
)

// Cache for the host terminal environment (detected once, reused for every
// session).
var (
	localTermType  string
	localColorTerm string
	localEnvOnce   sync.Once
)

// detectShell picks the command to run: the preferred shell when it can be
// found, then $SHELL, then the first well-known shell that exists.
func detectShell(preferred string) string {
	if preferred != "" {
		if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(preferred), ".exe") {
			preferred += ".exe"
		}
		// A missing preferred shell is reported by spawn, not replaced.
		return preferred
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}

	if runtime.GOOS == "windows" {
		for _, shell := range []string{"powershell.exe", "pwsh.exe", "cmd.exe"} {
			if _, err := exec.LookPath(shell); err == nil {
				return shell
			}
		}
		return "cmd.exe"
	}

	for _, shell := range []string{"/bin/bash", "/bin/zsh", "/bin/fish", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// childEnv builds the child's environment: the host environment, the
// terminal identification variables, then the caller's extra entries.
func childEnv(opts Options, id string) []string {
	termType, colorTerm := getTerminalEnv()

	env := append(os.Environ(),
		"TERM="+termType,
		"TERM_PROGRAM="+opts.TermProgram,
		"TERMGRID_SESSION_ID="+id,
	)
	if colorTerm != "" {
		env = append(env, "COLORTERM="+colorTerm)
	}
	return append(env, opts.Env...)
}

// getTerminalEnv returns TERM and COLORTERM values for the current
// environment. The result is cached after the first detection.
func getTerminalEnv() (termType, colorTerm string) {
	localEnvOnce.Do(func() {
		envTerm := os.Getenv("TERM")
		envColorTerm := os.Getenv("COLORTERM")

		// Trust an explicit truecolor environment even without a TTY.
		if envColorTerm == "truecolor" && envTerm != "" && envTerm != "dumb" {
			localTermType = envTerm
			localColorTerm = envColorTerm
			return
		}

		profile := colorprofile.Detect(os.Stdout, os.Environ())
		localTermType, localColorTerm = profileToEnv(profile, envTerm)
	})
	return localTermType, localColorTerm
}

// profileToEnv converts a colorprofile.Profile to TERM and COLORTERM values.
// colorTerm may be empty.
func profileToEnv(profile colorprofile.Profile, parentTerm string) (termType, colorTerm string) {
	switch profile {
	case colorprofile.TrueColor:
		termType = "xterm-256color"
		if parentTerm != "" {
			termType = parentTerm
		}
		colorTerm = "truecolor"

	case colorprofile.ANSI256:
		switch {
		case strings.Contains(parentTerm, "256color"):
			termType = parentTerm
		case strings.HasPrefix(parentTerm, "screen"):
			termType = "screen-256color"
		case strings.HasPrefix(parentTerm, "tmux"):
			termType = "tmux-256color"
		default:
			termType = "xterm-256color"
		}

	case colorprofile.ANSI:
		termType = "xterm"
		if parentTerm != "" && parentTerm != "dumb" {
			termType = parentTerm
		}

	case colorprofile.Ascii, colorprofile.NoTTY:
		// The grid interprets colors itself, whatever the host supports.
		termType = "xterm-256color"

	default:
		termType = "xterm-256color"
	}

	return termType, colorTerm
}
