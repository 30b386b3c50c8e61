package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ardalan-oss/godfs/internal/config"
	"github.com/ardalan-oss/godfs/internal/dfsclient"
	"github.com/ardalan-oss/godfs/internal/logger"
	"github.com/ardalan-oss/godfs/internal/rpc"
)

// InitLogger configures the package-level logger from cfg.
func InitLogger(cfg *config.ClientConfig) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads the ClientConfig honoring the --config flag.
func loadConfig() (*config.ClientConfig, error) {
	return config.LoadClientConfig(GetConfigFile())
}

// dialClient loads the client config, dials the server, and returns a
// ready-to-use dfsclient.Client. Callers must close the returned
// connection.
func dialClient(cfg *config.ClientConfig) (*dfsclient.Client, *grpc.ClientConn, error) {
	cc, err := grpc.NewClient(cfg.ServerAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", cfg.ServerAddr, err)
	}

	rpcClient := rpc.NewClient(cc)
	client := dfsclient.New(rpcClient, cfg.MountPath, cfg.ClientID, int(cfg.ChunkSize), cfg.DeadlineTimeout)
	return client, cc, nil
}

// GetDefaultStateDir returns the directory dfsclient uses for its PID and
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

// GetDefaultPidFile returns the default PID file path for dfsclient.
func GetDefaultPidFile() string {
	return filepath.Join(GetDefaultStateDir(), "dfsclient.pid")
}

// GetDefaultLogFile returns the default daemon-mode log file path.
func GetDefaultLogFile() string {
	return filepath.Join(GetDefaultStateDir(), "dfsclient.log")
}
