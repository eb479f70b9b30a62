package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"metamob-tracker/lib/configutil"
	"metamob-tracker/lib/metamob"
	"metamob-tracker/lib/quota"
	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/lib/sqliteutil"
	"metamob-tracker/services/tracker"
	"metamob-tracker/services/tracker/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "metamob",
	Short: "metamob crawls metamob.fr and reports on archimonster trading.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type QuotaConfig struct {
	// Calls per window, defaults to the api's documented 60/minute.
	Calls         int `json:"calls"`
	WindowSeconds int `json:"window_seconds"`
}

type Config struct {
	// Login and Password authenticate the website session used to scrape
	// the recent-user listing.
	Login    string `json:"login" envconfig:"LOGIN"`
	Password string `json:"password" envconfig:"PASSWORD"`
	// APIKey authenticates the json API.
	APIKey   string      `json:"apikey" envconfig:"APIKEY"`
	Database string      `json:"database" envconfig:"DATABASE"`
	Quota    QuotaConfig `json:"quota"`
	Workers  int         `json:"workers" envconfig:"WORKERS"`
	Retries  int         `json:"retries" envconfig:"RETRIES"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfigEnv[Config]("metamob.json5", "metamob")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Database == "" {
		cfg.Database = "metamob.db"
	}
	return cfg
}

func openStore(cfg Config) (tracker.Store, *sql.DB) {
	database, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	return tracker.NewStore(database), database
}

func newFetcher(cfg Config) *tracker.Fetcher {
	calls := cfg.Quota.Calls
	if calls <= 0 {
		calls = quota.DefaultLimit
	}
	window := time.Duration(cfg.Quota.WindowSeconds) * time.Second
	if window <= 0 {
		window = quota.DefaultWindow
	}
	governor, err := quota.New(calls, window)
	if err != nil {
		serviceutil.Fatal("invalid quota config", err)
	}

	client, err := metamob.NewClient(metamob.ClientOptions{APIKey: cfg.APIKey})
	if err != nil {
		serviceutil.Fatal("failed to initialize api client", err)
	}

	return &tracker.Fetcher{
		Remote:      client,
		Governor:    governor,
		MaxAttempts: cfg.Retries,
	}
}

// newService wires the full stack; the caller owns the returned handle.
func newService(cfg Config) (tracker.Service, *sql.DB) {
	store, database := openStore(cfg)
	return tracker.Service{
		Store:   store,
		Fetcher: newFetcher(cfg),
		Workers: cfg.Workers,
	}, database
}
