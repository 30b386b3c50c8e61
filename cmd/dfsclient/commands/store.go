package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store <name>",
	Short: "Upload a local file to the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runStore,
}

func runStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	code, err := client.Store(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("store %s: %w", args[0], err)
	}
	fmt.Printf("store %s: %s\n", args[0], code)
	return nil
}
