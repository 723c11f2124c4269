package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/tally/internal/cli"
	"github.com/alexanderramin/tally/internal/config"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/graphql"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/mattn/go-isatty"
)

// quietLevel silences the call logs until logging.log_calls or
// --verbose turns them on.
const quietLevel = slog.LevelError + 4

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}

	// Config file: TALLY_CONFIG or ~/.tally/config.yaml
	cfgPath := os.Getenv("TALLY_CONFIG")
	if cfgPath == "" {
		cfgPath = config.DefaultPath(home)
	}
	cfg, err := config.Load(home, cfgPath)
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	level.Set(quietLevel)
	if cfg.Logging.LogCalls {
		level.Set(cfg.LogLevel())
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Open snapshot database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	snapshotRepo := repository.NewSQLiteSnapshotRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire the GraphQL backend
	client := graphql.NewClient(cfg.GraphQLClientConfig(), graphql.NewLogObserver(logger))
	fetcher := graphql.NewTimesheetAPI(client)

	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Reports:   service.NewReportService(fetcher, snapshotRepo, observer),
		Snapshots: service.NewSnapshotService(fetcher, snapshotRepo, uow, observer),
		Config:    cfg,
		LogLevel:  level,
	}

	// Prompts and spinners only run on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
