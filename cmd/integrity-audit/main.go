// Command integrity-audit re-checks stored curricula, seat ledgers, calendars
// and evaluation weights, prints every violation found and exits non-zero
// when there is at least one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/unisphere/academics/internal/app/repositories"
	"github.com/unisphere/academics/internal/app/rules"
	"github.com/unisphere/academics/internal/app/services"
	"github.com/unisphere/academics/internal/bootstrap"
	"github.com/unisphere/academics/internal/config"
	"github.com/unisphere/academics/internal/db"
	"github.com/unisphere/academics/internal/pkg/logger"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code: 0 when clean, 1 when violations were
// found and 2 when the audit could not run.
func run() int {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum duration of the audit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return 2
	}
	bootstrap.ConfigureLogger(cfg)
	lgr := logger.Logger()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return 2
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	audit := services.NewAuditService(repositories.NewAuditRepository(database.Pool), bootstrap.EngineOptions(cfg), lgr)
	findings, err := audit.Run(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Integrity audit failed")
		return 2
	}

	if len(findings) == 0 {
		color.Green("No integrity violations found.")
		return 0
	}
	printFindings(findings)
	return 1
}

func printFindings(findings []rules.Finding) {
	color.Yellow("\n%d integrity violation(s) found", len(findings))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Severity", "Code", "Subject", "Detail"})
	table.SetAutoWrapText(false)

	errorCount := 0
	for _, f := range findings {
		severity := string(f.Severity)
		if f.Severity == rules.SeverityError {
			errorCount++
			severity = color.RedString(severity)
		} else {
			severity = color.YellowString(severity)
		}
		table.Append([]string{severity, f.Code, f.Subject, f.Detail})
	}
	table.Render()

	fmt.Printf("%d error(s), %d warning(s)\n", errorCount, len(findings)-errorCount)
}
