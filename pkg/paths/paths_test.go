package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDirs(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("DWLB_CONFIG_DIR", "")
	t.Setenv("HOME", tmp)
	ResetForTest()
	return tmp
}

func TestConfigDir_EnvOverride(t *testing.T) {
	tmp := setupTestDirs(t)
	override := filepath.Join(tmp, "custom-config")
	t.Setenv("DWLB_CONFIG_DIR", override)
	ResetForTest()

	if got := ConfigDir(); got != override {
		t.Errorf("ConfigDir() = %q, want %q", got, override)
	}
}

func TestConfigDir_Default(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".config", "dwlb")
	if got := ConfigDir(); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigPath(t *testing.T) {
	tmp := setupTestDirs(t)
	want := filepath.Join(tmp, ".config", "dwlb", "config.yaml")
	if got := ConfigPath(); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestEnsureConfigDir_Creates(t *testing.T) {
	tmp := setupTestDirs(t)
	expected := filepath.Join(tmp, ".config", "dwlb")

	dir, err := EnsureConfigDir()
	if err != nil {
		t.Fatalf("EnsureConfigDir() error: %v", err)
	}
	if dir != expected {
		t.Errorf("EnsureConfigDir() = %q, want %q", dir, expected)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("config dir not created: %v", err)
	}
}

func TestRuntimeDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", tmp)

	dir, err := EnsureRuntimeDir()
	if err != nil {
		t.Fatalf("EnsureRuntimeDir() error: %v", err)
	}
	if want := filepath.Join(tmp, "dwlb"); dir != want {
		t.Errorf("EnsureRuntimeDir() = %q, want %q", dir, want)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat runtime dir: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("runtime dir mode = %o, want 700", perm)
	}
}

func TestRuntimeDir_Unset(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if _, err := RuntimeDir(); !errors.Is(err, ErrNoRuntimeDir) {
		t.Errorf("RuntimeDir() error = %v, want ErrNoRuntimeDir", err)
	}
}

func TestSocketNames(t *testing.T) {
	if got := SocketPath("/run/user/1/dwlb", 3); got != "/run/user/1/dwlb/dwlb-3" {
		t.Errorf("SocketPath() = %q", got)
	}
	tests := map[string]bool{
		"dwlb-0":      true,
		"dwlb-49":     true,
		"dwlb-0.lock": false,
		"dwlb-":       false,
		"dwlb":        false,
		"other-1":     false,
	}
	for name, want := range tests {
		if got := IsSocketName(name); got != want {
			t.Errorf("IsSocketName(%q) = %v, want %v", name, got, want)
		}
	}
}
