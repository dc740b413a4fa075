package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/pawfeeds/companion/internal/cli"
	"github.com/pawfeeds/companion/internal/logger"
	"github.com/pawfeeds/companion/internal/registry"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"Registry file path (.json or a SQLite db)." type:"path" default:"~/.config/pawfeeds/registry.json" env:"PAWFEEDS_REGISTRY"`
	LogLevel  string `help:"Log verbosity (debug|info|warn|error)." default:"info" env:"PAWFEEDS_LOG_LEVEL"`
	LogFormat string `help:"Log format (console|json)." default:"console" env:"PAWFEEDS_LOG_FORMAT"`
	RelayURL  string `help:"Cloud relay command endpoint." env:"PAWFEEDS_RELAY_URL"`
	AuthToken string `help:"Bearer token for the cloud relay." env:"PAWFEEDS_AUTH_TOKEN"`
	UID       string `help:"Account id stamped into provisioning requests." env:"PAWFEEDS_UID"`

	Init      cli.InitCmd      `cmd:"" help:"Create a fresh registry with the default two slots."`
	Scan      cli.ScanCmd      `cmd:"" help:"Find feeders on the local network and refresh the registry."`
	Provision cli.ProvisionCmd `cmd:"" help:"Walk a factory-fresh device onto your Wi-Fi."`
	Feed      cli.FeedCmd      `cmd:"" help:"Dispense food from a slot right now."`
	Slots     cli.SlotsCmd     `cmd:"" help:"Show the registered feeder slots."`
	Profile   struct {
		Set cli.ProfileSetCmd `cmd:"" help:"Update a pet profile and recompute portions."`
	} `cmd:"" help:"Manage pet profiles."`
	Schedule struct {
		Add    cli.ScheduleAddCmd    `cmd:"" help:"Add a feeding schedule."`
		List   cli.ScheduleListCmd   `cmd:"" help:"List feeding schedules."`
		Toggle cli.ScheduleToggleCmd `cmd:"" help:"Enable or disable a schedule."`
		Remove cli.ScheduleRemoveCmd `cmd:"" help:"Delete a schedule."`
	} `cmd:"" help:"Manage feeding schedules."`
	Run    cli.RunCmd    `cmd:"" help:"Run the schedule trigger loop in the foreground."`
	Reset  cli.ResetCmd  `cmd:"" help:"Factory-reset a device back into setup mode."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks."`
}

func main() {
	// A .env in the working directory is the easiest place for the relay
	// token during development; missing is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("pawfeeds"),
		kong.Description("Companion for pawfeeds smart pet feeders: discovery, provisioning, and feeding schedules"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	log, err := logger.New(CLI.LogLevel, CLI.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Storage backend follows the file extension
	var store registry.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = registry.NewJSONStore(CLI.Config).WithLogger(log)
	} else {
		store = registry.NewSQLiteStore(CLI.Config).WithLogger(log)
	}

	err = ctx.Run(&cli.Context{
		Store:     store,
		Logger:    log,
		RelayURL:  CLI.RelayURL,
		AuthToken: CLI.AuthToken,
		UID:       CLI.UID,
	})
	if cerr := store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
