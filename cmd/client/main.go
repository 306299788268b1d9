package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/scholarkeeper/internal/client/api"
	"github.com/iudanet/scholarkeeper/internal/client/cache"
	"github.com/iudanet/scholarkeeper/internal/client/cli"
	"github.com/iudanet/scholarkeeper/internal/client/scholars"
	"github.com/iudanet/scholarkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("scholarkeeper", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintUsage(os.Stderr) }

	showVersion := fs.Bool("version", false, "Show version information")
	serverURL := fs.String("server", "http://localhost:8080", "Server URL")
	dbPath := fs.String("db", "scholarkeeper-client.db", "Path to local database")
	passwordFile := fs.String("password-file", "", "Path to file containing the password")
	debug := fs.Bool("debug", false, "Verbose logging to stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		printVersion()
		return 0
	}

	// Получаем команду
	rest := fs.Args()
	if len(rest) == 0 {
		cli.PrintUsage(os.Stderr)
		return 1
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	apiClient, err := api.NewClient(*serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	lookupCache := cache.New(logger, boltStorage)
	lookup := scholars.NewService(logger, apiClient, lookupCache)

	app := cli.New(logger, apiClient, lookup, lookupCache, boltStorage, cli.WithPasswordFile(*passwordFile))
	if err := app.LoadSession(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := app.Run(ctx, rest[0], rest[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(os.Stderr)
		}
		return 1
	}

	return 0
}

func printVersion() {
	fmt.Printf("ScholarKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
