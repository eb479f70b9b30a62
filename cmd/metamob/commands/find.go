package commands

import (
	"context"

	"metamob-tracker/cmd/metamob/utils"
	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(findTradeCmd)
	rootCmd.AddCommand(findResearchCmd)
}

var findTradeCmd = &cobra.Command{
	Use:   "find-trade <monster>",
	Short: "Lists the users proposing a monster for trade.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runFind(cmd, args[0], tracker.Service.FindTrade)
	},
}

var findResearchCmd = &cobra.Command{
	Use:   "find-research <monster>",
	Short: "Lists the users searching for a monster.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runFind(cmd, args[0], tracker.Service.FindResearch)
	},
}

func runFind(
	cmd *cobra.Command,
	item string,
	query func(tracker.Service, context.Context, string) (tracker.Monster, []tracker.TradeOffer, []tracker.UserInfo, error),
) {
	cfg := readConfig()
	store, database := openStore(cfg)
	defer database.Close()
	service := tracker.Service{Store: store}

	monster, offers, users, err := query(service, cmd.Context(), item)
	if err != nil {
		serviceutil.Fatal("failed to find offers", err)
	}

	t := utils.NewTable()
	t.SetTitle(monster.Name)
	t.AppendHeader(table.Row{"User", "Quantity", "Last seen", "Profile"})
	for i, offer := range offers {
		lastSeen := ""
		if !users[i].LastSeen.IsZero() {
			lastSeen = users[i].LastSeen.Format("2006-01-02")
		}
		t.AppendRow(table.Row{offer.Pseudo, offer.Quantity, lastSeen, users[i].ProfileURL})
	}
	t.Render()
}
