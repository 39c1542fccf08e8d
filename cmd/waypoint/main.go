package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alexanderramin/waypoint/internal/cli"
	"github.com/alexanderramin/waypoint/internal/config"
	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	timelineRepo := repository.NewSQLiteTimelineItemRepo(database)
	testingRepo := repository.NewSQLiteTestingCardRepo(database)
	templateRepo := repository.NewSQLiteTemplateRepo(database)
	templateItemRepo := repository.NewSQLiteTemplateItemRepo(database)
	settingsRepo := repository.NewSQLiteSettingsRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	opts := service.Options{
		Concurrency:   cfg.Publish.Concurrency,
		RetryAttempts: cfg.Retry.Attempts,
		RetryBackoff:  cfg.Retry.Backoff,
		Now:           time.Now,
	}

	var observers []service.UseCaseObserver
	if cfg.Log.UseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	app := &cli.App{
		Projects:    service.NewProjectService(projectRepo, opts, observers...),
		Templates:   service.NewTemplateService(templateRepo, templateItemRepo, projectRepo, timelineRepo, uow, opts, observers...),
		Features:    service.NewFeatureService(projectRepo, settingsRepo, observers...),
		Collections: service.NewCollections(projectRepo, timelineRepo, testingRepo, opts, observers...),
		Config:      cfg,
		Logger:      logger,
	}

	// Prompts and the editor only run on a real terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}
