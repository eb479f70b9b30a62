package commands

import (
	"fmt"
	"log/slog"
	"time"

	"metamob-tracker/lib/serviceutil"

	"github.com/spf13/cobra"
)

var refreshFull *bool

func init() {
	refreshFull = refreshInventoryCmd.Flags().Bool(
		"full", false,
		"Crawl every monster instead of only archimonsters.",
	)
	rootCmd.AddCommand(refreshInventoryCmd)
}

var refreshInventoryCmd = &cobra.Command{
	Use:   "refresh-inventory [--full]",
	Short: "Crawls every known user's monster inventory into the local database.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		service, database := newService(cfg)
		defer database.Close()

		t1 := time.Now()
		summary, err := service.RefreshInventory(cmd.Context(), !*refreshFull)
		if err != nil {
			serviceutil.Fatal("crawl aborted", err)
		}

		for _, failure := range summary.Failed {
			slog.Warn("user not merged", "pseudo", failure.Pseudo, "reason", failure.Reason)
		}
		fmt.Printf(
			"%d users merged, %d failed in %.1fs\n",
			summary.Merged, len(summary.Failed), time.Since(t1).Seconds(),
		)
	},
}
