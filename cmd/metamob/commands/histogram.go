package commands

import (
	"fmt"

	"metamob-tracker/cmd/metamob/utils"
	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var histogramWidth *int64

func init() {
	histogramWidth = histogramCmd.Flags().Int64("width", 1, "Bucket width in owned quantity.")
	rootCmd.AddCommand(histogramCmd)
}

var histogramCmd = &cobra.Command{
	Use:   "histogram <monster> [--width <n>]",
	Short: "Shows how many of a monster each holder owns.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store, database := openStore(cfg)
		defer database.Close()
		service := tracker.Service{Store: store}

		monster, buckets, err := service.Histogram(cmd.Context(), args[0], *histogramWidth)
		if err != nil {
			serviceutil.Fatal("failed to build histogram", err)
		}

		t := utils.NewTable()
		t.SetTitle(monster.Name)
		t.AppendHeader(table.Row{"Owned", "Users"})
		for _, bucket := range buckets {
			label := fmt.Sprintf("%d", bucket.Lo)
			if bucket.Hi != bucket.Lo {
				label = fmt.Sprintf("%d-%d", bucket.Lo, bucket.Hi)
			}
			t.AppendRow(table.Row{label, bucket.Count})
		}
		t.Render()
	},
}
