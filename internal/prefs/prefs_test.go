package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_DefaultLocationUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Defaults() {
		t.Fatalf("Load() = %+v, want defaults", p)
	}

	dir := filepath.Join(home, ".config", "seatlock")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Slate\"\nuser_id = 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err = Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" || p.UserID != 3 {
		t.Fatalf("Load() = %+v, want Slate/3", p)
	}
}

func TestLoad_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Prefs
	}{
		{"empty theme", "theme = \"\"\n", Prefs{Theme: defaultTheme}},
		{"padded theme", "theme = \"  Kanagawa \"\n", Prefs{Theme: "Kanagawa"}},
		{"negative user", "theme = \"Kanagawa\"\nuser_id = -4\n", Prefs{Theme: "Kanagawa"}},
		{"user only", "user_id = 12\n", Prefs{Theme: defaultTheme, UserID: 12}},
		{"invalid toml", "not valid toml {{{\n", Defaults()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writePrefs(t, tt.body))
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSave_RoundTripsAndCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")

	want := Prefs{Theme: "Slate", UserID: 7}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only prefs.toml", len(entries))
	}
}

func TestSave_OverwritesAndNormalizes(t *testing.T) {
	path := writePrefs(t, "theme = \"Slate\"\nuser_id = 9\n")

	if err := Save(path, Prefs{Theme: " ", UserID: -1}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("Load() = %+v, want defaults", got)
	}
}
