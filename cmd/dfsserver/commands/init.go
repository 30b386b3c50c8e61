package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default server configuration file",
	Long: `Write a default server configuration file to the default location
(or the path given by --config) so it can be edited before the server is
started.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath("server")
	}

	cfg := config.DefaultServerConfig()
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote default server configuration to %s\n", path)
	return nil
}
