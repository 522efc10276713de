// Package paths resolves where dwlb keeps its config and control sockets.
//
// Layout:
//
//	Config:  ~/.config/dwlb/config.yaml      (override: DWLB_CONFIG_DIR)
//	Runtime: $XDG_RUNTIME_DIR/dwlb/dwlb-N    (one socket per running bar)
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// SocketPrefix starts every control socket name.
const SocketPrefix = "dwlb-"

// ErrNoRuntimeDir is returned when XDG_RUNTIME_DIR is unset.
var ErrNoRuntimeDir = errors.New("XDG_RUNTIME_DIR is not set")

var (
	configDirOnce   sync.Once
	configDirCached string
)

// ConfigDir resolves the config directory.
// Priority: DWLB_CONFIG_DIR env > ~/.config/dwlb/
func ConfigDir() string {
	configDirOnce.Do(func() {
		if env := os.Getenv("DWLB_CONFIG_DIR"); env != "" {
			configDirCached = env
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				configDirCached = "."
			} else {
				configDirCached = filepath.Join(home, ".config", "dwlb")
			}
		}
	})
	return configDirCached
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// EnsureConfigDir creates the config directory if it doesn't exist and returns its path.
func EnsureConfigDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", dir, err)
	}
	return dir, nil
}

// RuntimeDir is the directory holding control sockets. It is not cached:
// the control client and tests may point it elsewhere between calls.
func RuntimeDir() (string, error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		return "", ErrNoRuntimeDir
	}
	return filepath.Join(base, "dwlb"), nil
}

// EnsureRuntimeDir creates the socket directory, private to the user.
func EnsureRuntimeDir() (string, error) {
	dir, err := RuntimeDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create runtime dir %s: %w", dir, err)
	}
	return dir, nil
}

// SocketName is the file name of socket slot n.
func SocketName(n int) string {
	return SocketPrefix + strconv.Itoa(n)
}

// SocketPath joins dir and the name of slot n.
func SocketPath(dir string, n int) string {
	return filepath.Join(dir, SocketName(n))
}

// IsSocketName reports whether name looks like a control socket, as
// opposed to its lock file or anything else in the directory.
func IsSocketName(name string) bool {
	rest, ok := strings.CutPrefix(name, SocketPrefix)
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// ResetForTest clears cached values so tests can re-run resolution logic.
// Only use in tests.
func ResetForTest() {
	configDirOnce = sync.Once{}
	configDirCached = ""
}
