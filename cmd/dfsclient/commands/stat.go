package commands

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/cli/output"
)

var statCmd = &cobra.Command{
	Use:   "stat <name>",
	Short: "Show the server's metadata for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	meta, err := client.Stat(context.Background(), args[0])
	if err != nil {
		return err
	}

	return output.SimpleTable(os.Stdout, [][2]string{
		{"name", meta.Name},
		{"size", strconv.FormatInt(meta.Size, 10)},
		{"mtime", time.Unix(meta.Mtime, 0).Format(time.RFC3339)},
		{"crc32", strconv.FormatUint(uint64(meta.Crc32), 10)},
	})
}
