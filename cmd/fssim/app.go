package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/desertwitch/fssim/internal/allocation"
	"github.com/desertwitch/fssim/internal/command"
	"github.com/desertwitch/fssim/internal/configuration"
	"github.com/desertwitch/fssim/internal/defrag"
	"github.com/desertwitch/fssim/internal/filesystem"
	fsio "github.com/desertwitch/fssim/internal/io"
	"github.com/desertwitch/fssim/internal/schema"
	"github.com/desertwitch/fssim/internal/storage"
	"github.com/desertwitch/fssim/internal/ui"
)

// ErrUsage is returned when the program is started with wrong arguments.
var ErrUsage = errors.New("wrong arguments")

type App struct {
	config         *configuration.AppConfiguration
	osHandler      *schema.OS
	storageHandler *storage.Handler
	fsHandler      *filesystem.Handler
	logs           *SlogManager
	stdout         io.Writer
	stderr         io.Writer
}

func NewApp(config *configuration.AppConfiguration,
	osHandler *schema.OS,
	unixHandler *schema.Unix,
	logs *SlogManager,
	stdout io.Writer,
	stderr io.Writer,
) *App {
	storageHandler := storage.NewHandler(osHandler, unixHandler, config.SyncWrites)
	ioHandler := fsio.NewHandler(config.VerifyTransfers)

	fsHandler := filesystem.NewHandler(
		NewStorageAdapter(storageHandler),
		allocation.NewHandler(ioHandler),
		defrag.NewHandler(ioHandler),
	)

	return &App{
		config:         config,
		osHandler:      osHandler,
		storageHandler: storageHandler,
		fsHandler:      fsHandler,
		logs:           logs,
		stdout:         stdout,
		stderr:         stderr,
	}
}

// Launch runs all commands of the command file at path against the session.
// Files that cannot be read are reported like a syntax error on line 0.
func (app *App) Launch(ctx context.Context, path string) error {
	f, err := app.osHandler.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		fmt.Fprintf(app.stderr, "Command Error: %s, 0\n", path)

		return fmt.Errorf("(app) %w", err)
	}
	defer f.Close()

	it := command.NewInterpreter(app.fsHandler, app.stdout, app.stderr, app.config.Summary)

	if _, err := it.Run(ctx, path, f); err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	return nil
}

// LaunchShell runs the interactive shell against the session. Logs are shown
// inside the shell for as long as it runs.
func (app *App) LaunchShell(ctx context.Context, cancel context.CancelFunc, level slog.Leveler) error {
	console := ui.NewConsole()
	it := command.NewInterpreter(app.fsHandler, console, console, false)
	uiHandler := ui.NewHandler(ctx, cancel, it, app.fsHandler, console)

	app.logs.SetHandler(uiLogHandler, newTintHandler(uiHandler.LogWriter, level, false))
	app.logs.RemoveHandler(terminalLogHandler)

	defer func() {
		app.logs.RemoveHandler(uiLogHandler)
		app.logs.SetHandler(terminalLogHandler, newTintHandler(app.stderr, level, false))
	}()

	if err := uiHandler.Launch(); err != nil {
		return fmt.Errorf("(app-ui) %w", err)
	}

	return nil
}

// MakeDisk creates a new, empty volume image at path.
func (app *App) MakeDisk(path string) error {
	if err := app.storageHandler.Create(path); err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	return nil
}

// Close releases the mounted volume, if any.
func (app *App) Close() error {
	if err := app.fsHandler.Close(); err != nil {
		return fmt.Errorf("(app) %w", err)
	}

	return nil
}
