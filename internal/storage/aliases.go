package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// Aliases resolves shortcut names such as "downloads" to host folders
type Aliases struct {
	home      string
	overrides map[string]string
}

var aliasFolders = map[string]string{
	"downloads": "Downloads",
	"desktop":   "Desktop",
	"documents": "Documents",
	"pictures":  "Pictures",
}

// NewAliases creates a resolver rooted at home. Overrides map alias names to
// explicit paths.
func NewAliases(home string, overrides map[string]string) *Aliases {
	normalized := make(map[string]string, len(overrides))
	for name, path := range overrides {
		if path != "" {
			normalized[strings.ToLower(name)] = path
		}
	}
	return &Aliases{home: home, overrides: normalized}
}

// DefaultAliases resolves against the current user's home directory
func DefaultAliases(overrides map[string]string) *Aliases {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return NewAliases(home, overrides)
}

// IsAlias reports whether name is a known shortcut
func (a *Aliases) IsAlias(name string) bool {
	_, ok := aliasFolders[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Resolve maps an alias, "~" or "/" to a host path. Anything else is
// returned cleaned. An alias whose folder does not exist falls back to home.
func (a *Aliases) Resolve(path string) string {
	trimmed := strings.TrimSpace(path)
	key := strings.ToLower(trimmed)

	switch {
	case key == "" || key == "~" || key == "/":
		return a.home
	case strings.HasPrefix(trimmed, "~/"):
		return filepath.Join(a.home, trimmed[2:])
	}

	if override, ok := a.overrides[key]; ok {
		return override
	}

	if folder, ok := aliasFolders[key]; ok {
		candidate := filepath.Join(a.home, folder)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		return a.home
	}

	return filepath.Clean(trimmed)
}
