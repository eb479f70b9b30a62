package commands

import (
	"fmt"
	"strings"

	"metamob-tracker/cmd/metamob/utils"
	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var unbalancedFactor *float64

func init() {
	unbalancedFactor = unbalancedCmd.Flags().Float64(
		"factor", 2,
		"How far above a player's average a count must be to flag them.",
	)
	rootCmd.AddCommand(unbalancedCmd)
}

var unbalancedCmd = &cobra.Command{
	Use:   "unbalanced [--factor <f>]",
	Short: "Finds players hoarding some monsters while missing others.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store, database := openStore(cfg)
		defer database.Close()
		service := tracker.Service{Store: store}

		players, err := service.Unbalanced(cmd.Context(), *unbalancedFactor)
		if err != nil {
			serviceutil.Fatal("failed to scan for unbalanced players", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"User", "Average", "Hoarded", "Missing"})
		for _, player := range players {
			high := make([]string, len(player.High))
			for i, mc := range player.High {
				high[i] = fmt.Sprintf("%s (%d)", mc.Name, mc.Count)
			}
			t.AppendRow(table.Row{
				player.Pseudo,
				fmt.Sprintf("%.1f", player.Average),
				strings.Join(high, ", "),
				len(player.Missing),
			})
		}
		t.Render()
	},
}
