package main

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

const (
	terminalLogHandler = "terminal"
	uiLogHandler       = "ui"
)

// SlogManager is a [slog.Handler] fanning out records to a set of named
// handlers, which can be exchanged while the program runs. The shell uses
// this to move logs from the terminal into the user interface and back.
type SlogManager struct {
	sync.RWMutex
	handlers map[string]slog.Handler
	attrs    []slog.Attr
	groups   []string
}

func NewSlogManager() *SlogManager {
	return &SlogManager{
		handlers: make(map[string]slog.Handler),
	}
}

func (m *SlogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *SlogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}

	return nil
}

func (m *SlogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	newLm := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    append(slices.Clone(m.attrs), attrs...),
		groups:   slices.Clone(m.groups),
	}

	for name, h := range m.handlers {
		newLm.handlers[name] = h.WithAttrs(attrs)
	}

	return newLm
}

func (m *SlogManager) WithGroup(name string) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	newLm := &SlogManager{
		handlers: make(map[string]slog.Handler, len(m.handlers)),
		attrs:    slices.Clone(m.attrs),
		groups:   append(slices.Clone(m.groups), name),
	}

	for handlerName, h := range m.handlers {
		newLm.handlers[handlerName] = h.WithGroup(name)
	}

	return newLm
}

// SetHandler adds the handler under name, replacing any previous one. Attrs
// and groups already bound to the manager are applied to it.
func (m *SlogManager) SetHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	h := handler
	if len(m.attrs) > 0 {
		h = h.WithAttrs(m.attrs)
	}

	for _, group := range m.groups {
		h = h.WithGroup(group)
	}

	m.handlers[name] = h
}

func (m *SlogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	delete(m.handlers, name)
}

// newTintHandler returns the handler used for all log output.
func newTintHandler(w io.Writer, level slog.Leveler, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
}
