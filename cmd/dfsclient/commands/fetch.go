package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <name>",
	Short: "Download a file from the server into the mount",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	code, err := client.Fetch(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("fetch %s: %w", args[0], err)
	}
	fmt.Printf("fetch %s: %s\n", args[0], code)
	return nil
}
