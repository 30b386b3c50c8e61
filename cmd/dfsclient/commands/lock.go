package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/rpc"
)

var lockCmd = &cobra.Command{
	Use:   "lock <name>",
	Short: "Acquire the write lock on a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLock,
}

func runLock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	if _, err := client.AcquireWriteLock(context.Background(), &rpc.LockReq{Name: args[0], ClientID: cfg.ClientID}); err != nil {
		return fmt.Errorf("lock %s: %w", args[0], err)
	}
	fmt.Printf("lock %s: granted\n", args[0])
	return nil
}
