package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateSessionPath(t *testing.T) {
	path := GenerateSessionPath("sessions")

	if !strings.HasPrefix(filepath.Base(path), "session_") {
		t.Errorf("Path should start with 'session_': %s", path)
	}
	if filepath.Dir(path) != "sessions" {
		t.Errorf("Path should be in sessions: %s", path)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("Path should be yaml: %s", path)
	}
}

func TestFindLatestSession(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		filepath.Join(dir, "session_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "session_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "session_2026-02-11_15-30-00.yaml"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}
	// not a session
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	latest, err := FindLatestSession(dir)
	if err != nil {
		t.Fatalf("FindLatestSession failed: %v", err)
	}
	if latest != files[len(files)-1] {
		t.Errorf("Expected latest to be %s, got %s", files[len(files)-1], latest)
	}
}

func TestFindLatestSessionEmpty(t *testing.T) {
	if _, err := FindLatestSession(t.TempDir()); err == nil {
		t.Error("expected error for empty directory")
	}
	if _, err := FindLatestSession(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestReadSessionRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"not yaml", "cameras: [unclosed\n"},
		{"no version", "id: abc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			os.WriteFile(path, []byte(tt.body), 0644)
			if _, err := ReadSession(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
