package commands

import (
	"fmt"
	"os"

	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/lib/sqliteutil"
	"metamob-tracker/services/tracker"
	"metamob-tracker/services/tracker/db"

	"github.com/spf13/cobra"
)

var compareTrade *bool

func init() {
	compareTrade = compareCmd.Flags().Bool(
		"trade", false,
		"Compare market listings instead of owned quantities.",
	)
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare <path/to/old.db> [--trade]",
	Short: "Diffs the current database against an older copy.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		// OpenDB would silently create an empty database at a mistyped
		// path and diff against nothing
		if _, err := os.Stat(args[0]); err != nil {
			serviceutil.Fatal("old database does not exist", err)
		}

		oldDatabase, err := sqliteutil.OpenDB(db.Schema, args[0])
		if err != nil {
			serviceutil.Fatal("failed to open old database", err)
		}
		defer oldDatabase.Close()
		old, err := tracker.NewStore(oldDatabase).Snapshot(ctx)
		if err != nil {
			serviceutil.Fatal("failed to snapshot old database", err)
		}

		store, database := openStore(cfg)
		defer database.Close()
		service := tracker.Service{Store: store}

		diffs, err := service.Compare(ctx, old, *compareTrade)
		if err != nil {
			serviceutil.Fatal("failed to compare databases", err)
		}

		for _, diff := range diffs {
			switch {
			case diff.Gone:
				fmt.Printf("%s: no longer tracked\n", diff.Pseudo)
				continue
			case diff.NewPlayer:
				fmt.Printf("%s (new):\n", diff.Pseudo)
			default:
				fmt.Printf("%s:\n", diff.Pseudo)
			}
			for _, change := range diff.Changes {
				fmt.Printf("  %s: %d -> %d\n", change.Monster, change.Old, change.New)
			}
		}
	},
}
