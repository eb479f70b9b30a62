package commands

import (
	"fmt"
	"log/slog"

	"metamob-tracker/lib/metamob"
	"metamob-tracker/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(refreshUsersCmd)
}

var refreshUsersCmd = &cobra.Command{
	Use:   "refresh-users",
	Short: "Scrapes the recently active accounts and refreshes their profiles.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		site, err := metamob.NewSiteClient(metamob.SiteOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize site client", err)
		}
		err = site.Login(ctx, cfg.Login, cfg.Password)
		if err != nil {
			serviceutil.Fatal("failed to login to metamob", err)
		}

		service, database := newService(cfg)
		defer database.Close()
		service.Listing = site

		result, err := service.RefreshUsers(ctx)
		if err != nil {
			serviceutil.Fatal("failed to refresh users", err)
		}

		for _, failure := range result.Failed {
			slog.Warn("profile not refreshed", "pseudo", failure.Pseudo, "reason", failure.Reason)
		}
		fmt.Printf(
			"%d users listed, %d new, %d profiles refreshed, %d failed\n",
			result.Listed, len(result.Added), result.Refreshed, len(result.Failed),
		)
	},
}
