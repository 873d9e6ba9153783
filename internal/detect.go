package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StoragePaths holds the detected default locations of both sources.
type StoragePaths struct {
	GlobalStorage string // editor globalStorage directory
	SessionsRoot  string // agent JSONL sessions root
}

// DetectStoragePaths resolves platform defaults: the editor's
// globalStorage under its user config dir, and the agent's per-project
// session logs under the home directory.
func DetectStoragePaths() (StoragePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var basePath string
	switch runtime.GOOS {
	case "darwin":
		basePath = filepath.Join(home, "Library/Application Support/Cursor/User")
	case "linux":
		basePath = filepath.Join(home, ".config/Cursor/User")
	default:
		return StoragePaths{}, fmt.Errorf("unsupported OS: %s (only macOS and Linux are supported)", runtime.GOOS)
	}

	return StoragePaths{
		GlobalStorage: filepath.Join(basePath, "globalStorage"),
		SessionsRoot:  filepath.Join(home, ".claude", "projects"),
	}, nil
}

// GetGlobalStorageDBPath returns the path to the globalStorage
// state.vscdb file.
func (sp StoragePaths) GetGlobalStorageDBPath() string {
	return filepath.Join(sp.GlobalStorage, "state.vscdb")
}

// GlobalStorageExists checks if the key-value store database exists.
func (sp StoragePaths) GlobalStorageExists() bool {
	_, err := os.Stat(sp.GetGlobalStorageDBPath())
	return err == nil
}

// SessionsRootExists checks if the agent sessions directory exists.
func (sp StoragePaths) SessionsRootExists() bool {
	info, err := os.Stat(sp.SessionsRoot)
	return err == nil && info.IsDir()
}
