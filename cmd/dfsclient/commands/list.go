package commands

import (
	"context"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ardalan-oss/godfs/internal/cli/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every file the server currently holds",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, cc, err := dialClient(cfg)
	if err != nil {
		return err
	}
	defer cc.Close()

	files, err := client.List(context.Background())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	table := output.NewTableData("NAME", "MTIME")
	for _, name := range names {
		mtime := time.Unix(files[name], 0).Format(time.RFC3339)
		table.AddRow(name, mtime+" ("+strconv.FormatInt(files[name], 10)+")")
	}
	return output.PrintTable(os.Stdout, table)
}
