package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default client configuration file",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath("client")
	}

	cfg := config.DefaultClientConfig()
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote default client configuration to %s\n", path)
	return nil
}
