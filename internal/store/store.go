package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultVersionFile = "version.properties"
	DefaultHistoryFile = "vista-history.db"
)

// CheckExists verifies if a regular file exists at the given path.
// Returns true if the file exists, false otherwise.
func CheckExists(filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("path is a directory, expected file: %s", filePath)
	}
	return true, nil
}

// GetFilePath returns the version file path for a project directory.
// An empty name selects DefaultVersionFile; an absolute name is returned as is.
func GetFilePath(projectDir, name string) string {
	if name == "" {
		name = DefaultVersionFile
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if projectDir == "" {
		projectDir = "."
	}
	return filepath.Join(projectDir, name)
}

// GetLockPath returns the advisory lock path that guards filePath.
func GetLockPath(filePath string) string {
	return filePath + ".lock"
}
