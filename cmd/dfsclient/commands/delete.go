package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/cli/prompt"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a file on the server and locally",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s", args[0]), deleteYes)
	if err != nil {
		if err == prompt.ErrAborted {
			fmt.Println("aborted")
			return nil
		}
		return err
	}
	if !ok {
		fmt.Println("aborted")
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	code, err := client.Delete(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Printf("delete %s: %s\n", args[0], code)
	return nil
}
