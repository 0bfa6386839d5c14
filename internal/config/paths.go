package config

import (
	"os"
	"path/filepath"
)

// LocalDirName is the per-project data directory.
const LocalDirName = ".taskgraph"

// GetGlobalDir returns ~/.taskgraph. It is a variable so tests can redirect it.
var GetGlobalDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, LocalDirName), nil
}

// DefaultDataDir picks the data directory when data.dir is unset.
// First match wins:
//  1. ./.taskgraph if it exists
//  2. $XDG_DATA_HOME/taskgraph
//  3. ~/.taskgraph
func DefaultDataDir() (string, error) {
	if info, err := os.Stat(LocalDirName); err == nil && info.IsDir() {
		return LocalDirName, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskgraph"), nil
	}
	return GetGlobalDir()
}
