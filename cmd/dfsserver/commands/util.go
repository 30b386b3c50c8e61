package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ardalan-oss/godfs/internal/config"
	"github.com/ardalan-oss/godfs/internal/logger"
)

// InitLogger configures the package-level logger from cfg.
func InitLogger(cfg *config.ServerConfig) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetDefaultStateDir returns the directory dfsserver uses for its PID and
// log files.
func GetDefaultStateDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "godfs")
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "godfs")
		}
		return filepath.Join(home, "AppData", "Local", "godfs")
	}

	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "godfs")
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "godfs")
}

// GetDefaultPidFile returns the default PID file path for dfsserver.
func GetDefaultPidFile() string {
	return filepath.Join(GetDefaultStateDir(), "dfsserver.pid")
}

// GetDefaultLogFile returns the default daemon-mode log file path.
func GetDefaultLogFile() string {
	return filepath.Join(GetDefaultStateDir(), "dfsserver.log")
}
