package main

import (
	"context"
	"log/slog"

	"metamob-tracker/cmd/metamob/commands"
	"metamob-tracker/lib/serviceutil"
	"metamob-tracker/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(false)
	if _, err := telemetry.SetupFromEnv(ctx, "metamob-cli"); err != nil {
		slog.Warn("telemetry setup failed", "err", err)
	}
	defer telemetry.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
