// Package prefs remembers per-terminal choices between runs: the colour
// theme and the user id last acted as. The file lives at
// ~/.config/seatlock/prefs.toml unless a path is given.
//
// A missing or unreadable prefs file is never fatal; callers get defaults.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultPrefsPath = "~/.config/seatlock/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Prefs holds what the UI restores on start. UserID zero defers to config.
type Prefs struct {
	Theme  string `toml:"theme"`
	UserID int64  `toml:"user_id,omitempty"`
}

// Defaults returns the preferences used before anything has been saved.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// normalize replaces values the UI cannot use.
func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	if p.UserID < 0 {
		p.UserID = 0
	}
	return p
}

// DefaultPath returns the unexpanded default location.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads prefs from path. Garbage in the file yields Defaults.
func Load(path string) (Prefs, error) {
	resolved, err := resolve(path)
	if err != nil {
		return Defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults(), nil
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), nil
	}
	return p.normalize(), nil
}

// Save writes p to path through a temp file so a crash never leaves a
// half-written prefs file behind.
func Save(path string, p Prefs) error {
	resolved, err := resolve(path)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolve(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(p, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		p = filepath.Join(home, rest)
	}
	return filepath.Abs(p)
}
