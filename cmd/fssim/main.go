package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertwitch/fssim/internal/configuration"
	"github.com/desertwitch/fssim/internal/schema"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	shellMode  = flag.Bool("shell", false, "run the interactive shell instead of a command file")
	mkdisk     = flag.String("mkdisk", "", "create an empty volume image at this path and exit")
	configFile = flag.String("config", configuration.DefaultConfigFile, "read the configuration from this file")
	logLevel   = flag.String("loglevel", "", "minimum log level (debug, info, warn, error)")
)

func setupLogging(logs *SlogManager, level slog.Leveler) {
	logs.SetHandler(terminalLogHandler, newTintHandler(os.Stderr, level, false))
	slog.SetDefault(slog.New(logs))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()
}

func loadConfig(level *slog.LevelVar) (*configuration.AppConfiguration, error) {
	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{})

	config, err := configHandler.Load(*configFile)
	if err != nil {
		return nil, err
	}

	if *logLevel != "" {
		l, err := configuration.ParseLevel(*logLevel)
		if err != nil {
			return nil, err
		}
		config.LogLevel = l
	}

	level.Set(config.LogLevel)

	return config, nil
}

func run(ctx context.Context, cancel context.CancelFunc, app *App, level slog.Leveler) error {
	switch {
	case *mkdisk != "":
		if err := app.MakeDisk(*mkdisk); err != nil {
			slog.Error("Failed to create the volume image.", "disk", *mkdisk, "err", err)

			return err
		}

		return nil

	case *shellMode:
		if err := app.LaunchShell(ctx, cancel, level); err != nil {
			slog.Error("Shell failure.", "err", err)

			return err
		}

		return nil

	case flag.NArg() != 1:
		fmt.Fprintln(os.Stderr, "Command Error: , 0")

		return ErrUsage

	default:
		return app.Launch(ctx, flag.Arg(0))
	}
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Parse()

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	logs := NewSlogManager()
	setupLogging(logs, level)
	setupSignalHandlers(cancel)

	config, err := loadConfig(level)
	if err != nil {
		slog.Error("Failed to load the configuration.",
			"err", err,
		)
		ExitCode = 1

		return
	}

	slog.Debug("Starting fssim", "version", Version, "config", *configFile)

	app := NewApp(config, &schema.OS{}, &schema.Unix{}, logs, os.Stdout, os.Stderr)
	defer app.Close()

	if err := run(ctx, cancel, app, level); err != nil {
		slog.Debug("Exiting with failure.", "err", err)
		ExitCode = 1
	}
}
