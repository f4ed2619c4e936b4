// Package ui implements an interactive command shell using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/fssim/internal/command"
	"github.com/desertwitch/fssim/internal/filesystem"
)

type shellProvider interface {
	Execute(source string, cmd *command.Command) error
}

type volumeProvider interface {
	DiskName() string
	Stats() (filesystem.VolumeStats, error)
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	program *tea.Program

	LogWriter *TeaLogWriter

	Ready  atomic.Bool
	Failed atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler]. Commands
// entered are run by shell; their output is expected to be written to
// console.
func NewHandler(ctx context.Context, cancel context.CancelFunc, shell shellProvider, volume volumeProvider, console *Console) *Handler {
	handler := &Handler{}

	model := NewTeaModel(handler, shell, volume, console, cancel)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}
