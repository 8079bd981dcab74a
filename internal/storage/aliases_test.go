package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeffanddom/organizex/internal/storage"
)

func TestAliases_Resolve(t *testing.T) {
	home := t.TempDir()
	mustMkdir(t, filepath.Join(home, "Downloads"))

	aliases := storage.NewAliases(home, map[string]string{"Pictures": "/srv/photos"})

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"existing alias folder", "downloads", filepath.Join(home, "Downloads")},
		{"alias is case insensitive", "DOWNLOADS", filepath.Join(home, "Downloads")},
		{"missing alias folder falls back to home", "desktop", home},
		{"override wins", "pictures", "/srv/photos"},
		{"root maps to home", "/", home},
		{"tilde maps to home", "~", home},
		{"tilde prefix joins home", "~/Music", filepath.Join(home, "Music")},
		{"plain path is cleaned", "/tmp/a/../b", "/tmp/b"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := aliases.Resolve(tc.input); got != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, got)
			}
		})
	}

	if !aliases.IsAlias("Documents") || aliases.IsAlias("music") {
		t.Error("unexpected alias membership")
	}
	_ = os.Remove(filepath.Join(home, "Downloads"))
}
