package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	tint "github.com/lrstanley/bubbletint/v2"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
)

// ErrNoThemeID is returned for a theme whose id can not be derived.
var ErrNoThemeID = errors.New("theme has no id")

// ThemesDir is $XDG_CONFIG_HOME/termgrid/themes. It is created on first use.
func ThemesDir() (string, error) {
	marker, err := xdg.ConfigFile("termgrid/themes/.keep")
	if err != nil {
		return "", fmt.Errorf("failed to locate themes directory: %w", err)
	}
	return filepath.Dir(marker), nil
}

// registerCustom loads the user's themes into the registry.
func registerCustom() {
	dir, err := ThemesDir()
	if err != nil {
		return
	}
	if _, err := LoadDir(dir); err != nil {
		log.Warn("custom themes not loaded", "dir", dir, "err", err)
	}
}

func isThemeFile(e os.DirEntry) bool {
	return !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json")
}

// LoadDir registers every JSON theme in dir and returns their ids in
// directory order. A broken file is logged and skipped.
func LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !isThemeFile(e) {
			continue
		}
		t, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Warn("skipping custom theme", "file", e.Name(), "err", err)
			continue
		}
		tint.Register(t)
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// LoadFile decodes one bubbletint JSON theme. The id defaults to the
// lowercased file stem. Colors it leaves out are completed from the
// built-in palette.
func LoadFile(path string) (*tint.Tint, error) {
	// #nosec G304 - the path comes from the user's themes directory
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme %s: %w", path, err)
	}

	t := new(tint.Tint)
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, fmt.Errorf("failed to decode theme %s: %w", path, err)
	}

	if t.ID == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.ID = strings.ToLower(stem)
	}
	if t.ID == "" {
		return nil, ErrNoThemeID
	}
	if t.DisplayName == "" {
		t.DisplayName = t.ID
	}

	completePalette(t)
	return t, nil
}

func rgbColor(rgb [3]uint8) *tint.Color {
	return &tint.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
}

// completePalette fills nil colors. The eight normal colors fall back to
// grid.Palette and each bright color to a copy of its normal one.
func completePalette(t *tint.Tint) {
	if t.Fg == nil {
		t.Fg = rgbColor(grid.DefaultForeground)
	}
	if t.Bg == nil {
		t.Bg = rgbColor([3]uint8{})
	}
	if t.Cursor == nil {
		t.Cursor = cloneColor(t.Fg)
	}

	pairs := [8][2]**tint.Color{
		{&t.Black, &t.BrightBlack},
		{&t.Red, &t.BrightRed},
		{&t.Green, &t.BrightGreen},
		{&t.Yellow, &t.BrightYellow},
		{&t.Blue, &t.BrightBlue},
		{&t.Purple, &t.BrightPurple},
		{&t.Cyan, &t.BrightCyan},
		{&t.White, &t.BrightWhite},
	}
	for i, p := range pairs {
		normal, bright := p[0], p[1]
		if *normal == nil {
			*normal = rgbColor(grid.Palette[i])
		}
		if *bright == nil {
			*bright = cloneColor(*normal)
		}
	}
}

func cloneColor(c *tint.Color) *tint.Color {
	if c == nil {
		return nil
	}
	dup := *c
	return &dup
}
