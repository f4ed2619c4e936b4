package ui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// LogMsg is a regular string containing a log message. It is typed for
// identification as [tea.Msg] within a [tea.Program].
type LogMsg string

// TeaLogWriter is an implementation of an [io.Writer], for use inside a
// [slog.Handler], that sends any logs to a [tea.Program] as [tea.Msg].
type TeaLogWriter struct {
	program  teaProgramProvider
	doneChan chan struct{}
	stopOnce sync.Once
	logChan  chan LogMsg
}

// NewTeaLogWriter returns a pointer to a new [TeaLogWriter]. It also starts the
// internal log processing function, which should eventually be stopped e.g.
// with a deferred [TeaLogWriter.Stop] call.
func NewTeaLogWriter(program teaProgramProvider) *TeaLogWriter {
	wr := &TeaLogWriter{
		program:  program,
		doneChan: make(chan struct{}),
		logChan:  make(chan LogMsg, 1000), //nolint:mnd
	}

	go wr.processLogs()

	return wr
}

// Stop stops any log message processing. Logs written after the call are
// discarded. Stop can be called more than once.
func (wr *TeaLogWriter) Stop() {
	wr.stopOnce.Do(func() {
		close(wr.doneChan)
	})
}

func (wr *TeaLogWriter) processLogs() {
	for {
		select {
		case <-wr.doneChan:
			return
		case msg := <-wr.logChan:
			wr.program.Send(msg)
		}
	}
}

// Write receives a byte slice containing a log message from e.g. a
// [slog.Handler] and queues it for the [tea.Program].
func (wr *TeaLogWriter) Write(p []byte) (int, error) {
	select {
	case <-wr.doneChan:
	case wr.logChan <- LogMsg(p):
	}

	return len(p), nil
}

// Console is an [io.Writer] collecting the output of commands run from the
// shell, until the output is taken by [Console.Drain].
type Console struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewConsole returns a pointer to a new, empty [Console].
func NewConsole() *Console {
	return &Console{}
}

func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buf.Write(p)
}

// Drain returns and removes all output collected so far.
func (c *Console) Drain() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.buf.String()
	c.buf.Reset()

	return s
}
