package commands

import (
	"metamob-tracker/cmd/metamob/utils"
	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	statsTrade *bool
	statsTop   *int
	statsFull  *bool
)

func init() {
	statsTrade = statsCmd.Flags().Bool(
		"trade", false,
		"Rank by quantity proposed for trade instead of owned.",
	)
	statsTop = statsCmd.Flags().IntP("top", "k", tracker.DefaultTopK, "How many rows per extreme.")
	statsFull = statsCmd.Flags().Bool("full", false, "Include common monsters.")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [--trade] [--top <k>]",
	Short: "Prints the most and least common monsters across all users.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store, database := openStore(cfg)
		defer database.Close()
		service := tracker.Service{Store: store}

		by := tracker.ByOwned
		if *statsTrade {
			by = tracker.ByTrade
		}
		extremes, err := service.Stats(cmd.Context(), by, *statsTop, !*statsFull)
		if err != nil {
			serviceutil.Fatal("failed to rank monsters", err)
		}

		render := func(title string, rows []tracker.MonsterTotal) {
			t := utils.NewTable()
			t.SetTitle(title)
			t.AppendHeader(table.Row{"Monster", "Zone", "Total"})
			for _, row := range rows {
				t.AppendRow(table.Row{row.Monster.Name, row.Monster.Zone, row.Total})
			}
			t.Render()
		}
		render("Most common", extremes.Top)
		render("Most rare", extremes.Bottom)
	},
}
