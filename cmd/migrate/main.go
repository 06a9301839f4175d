// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate [-config configs/config.yaml] up|down|version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/unisphere/academics/internal/app/migrations"
	"github.com/unisphere/academics/internal/bootstrap"
	"github.com/unisphere/academics/internal/config"
	"github.com/unisphere/academics/internal/db"
	"github.com/unisphere/academics/internal/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum duration of the migration")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|version\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	command := flag.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	bootstrap.ConfigureLogger(cfg)
	lgr := logger.Logger()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	migrator := migrations.NewMigrator(database.StdDB(), lgr)
	switch command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "version":
	default:
		flag.Usage()
		return 2
	}
	if err != nil {
		lgr.Error().Err(err).Str("command", command).Msg("Migration failed")
		return 1
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Could not read schema version")
		return 1
	}
	lgr.Info().Int64("version", version).Str("command", command).Msg("Schema migration finished")
	return 0
}
