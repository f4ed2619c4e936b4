// Package command implements the interpreter for the line-oriented command
// language driving a file system session. Every line holds one command:
//
//	M <disk>          mount a volume image
//	C <name> <size>   create a file of size blocks, or a directory for size 0
//	D <name>          delete a file or directory
//	R <name> <block>  read a block of a file into the buffer
//	W <name> <block>  write the buffer to a block of a file
//	B <content>       set the buffer to the rest of the line
//	L                 list the current directory
//	E <name> <size>   resize a file
//	O                 defragment the volume
//	Y <name>          change the current directory
//
// Listings are written to stdout; errors reported by the file system, and
// "Command Error: <source>, <line>" for lines that cannot be parsed, go to
// stderr.
package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/desertwitch/fssim/internal/defrag"
	"github.com/desertwitch/fssim/internal/filesystem"
	"github.com/desertwitch/fssim/internal/queue"
	"github.com/dustin/go-humanize"
)

type fsProvider interface {
	Mount(disk string) error
	Create(name string, size int) error
	Delete(name string) error
	Read(name string, index int) error
	Write(name string, index int) error
	SetBuffer(content []byte) error
	List() ([]filesystem.Entry, error)
	Resize(name string, newSize int) error
	Defragment() (defrag.Report, error)
	ChangeDirectory(name string) error
	Stats() (filesystem.VolumeStats, error)
}

// Interpreter is the principal implementation of the command interpreter.
type Interpreter struct {
	fsHandler fsProvider
	stdout    io.Writer
	stderr    io.Writer
	summary   bool
}

// NewInterpreter returns a pointer to a new [Interpreter] running commands
// against fsHandler. With summary set, a summary is logged after every
// batch.
func NewInterpreter(fsHandler fsProvider, stdout io.Writer, stderr io.Writer, summary bool) *Interpreter {
	return &Interpreter{
		fsHandler: fsHandler,
		stdout:    stdout,
		stderr:    stderr,
		summary:   summary,
	}
}

// Run reads commands from r and processes each one as soon as it has been
// read. Source is the name of the input used in syntax error reports. An
// error is only returned if reading the input fails or the context is
// cancelled; failed commands are reported and skipped.
func (it *Interpreter) Run(ctx context.Context, source string, r io.Reader) (queue.Progress, error) {
	q := queue.NewGenericQueue[*Command]()
	br := bufio.NewReaderSize(r, maxLineLength)

	process := func(cmd *Command) queue.Decision {
		if err := it.Execute(source, cmd); err != nil {
			return queue.DecisionSkipped
		}

		return queue.DecisionSuccess
	}

	var err error

	for lineNum := 1; ; lineNum++ {
		line, tooLong, rerr := readLine(br)
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			err = fmt.Errorf("(command) failed to read %s: %w", source, rerr)

			break
		}

		if tooLong {
			q.Enqueue(&Command{Line: lineNum, Err: fmt.Errorf("%w: line too long", ErrSyntax)})
		} else {
			q.Enqueue(Parse(lineNum, line))
		}

		if perr := q.DequeueAndProcess(ctx, process); perr != nil {
			err = fmt.Errorf("(command) %w", perr)

			break
		}
	}

	progress := q.Progress()

	if it.summary {
		it.logSummary(source, q)
	}

	return progress, err
}

// readLine returns the next line of r without its terminator. Lines longer
// than maxLineLength are consumed entirely and reported as too long. At the
// end of the input, io.EOF is returned.
func readLine(r *bufio.Reader) (string, bool, error) {
	var line []byte
	tooLong := false

	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err //nolint:wrapcheck
		}

		if !tooLong {
			if len(line)+len(chunk) > maxLineLength {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		if !isPrefix {
			return string(line), tooLong, nil
		}
	}
}

// Execute runs one parsed command. Any failure is reported to stderr and
// returned.
func (it *Interpreter) Execute(source string, cmd *Command) error {
	if cmd.Err != nil {
		fmt.Fprintf(it.stderr, "Command Error: %s, %d\n", source, cmd.Line)
		slog.Debug("Rejected command", "source", source, "line", cmd.Line, "err", cmd.Err)

		return cmd.Err
	}

	err := it.dispatch(cmd)
	if err != nil {
		fmt.Fprintln(it.stderr, err.Error())

		var fsErr *filesystem.Error
		if !errors.As(err, &fsErr) {
			slog.Error("Command failed", "source", source, "line", cmd.Line, "err", err)
		}
	}

	return err
}

func (it *Interpreter) dispatch(cmd *Command) error {
	switch cmd.Op {
	case OpMount:
		return it.fsHandler.Mount(cmd.Name)

	case OpCreate:
		return it.fsHandler.Create(cmd.Name, cmd.Number)

	case OpDelete:
		return it.fsHandler.Delete(cmd.Name)

	case OpRead:
		return it.fsHandler.Read(cmd.Name, cmd.Number)

	case OpWrite:
		return it.fsHandler.Write(cmd.Name, cmd.Number)

	case OpBuffer:
		return it.fsHandler.SetBuffer(cmd.Content)

	case OpList:
		entries, err := it.fsHandler.List()
		if err != nil {
			return err
		}

		return filesystem.WriteListing(it.stdout, entries)

	case OpResize:
		return it.fsHandler.Resize(cmd.Name, cmd.Number)

	case OpDefrag:
		_, err := it.fsHandler.Defragment()

		return err

	case OpCd:
		return it.fsHandler.ChangeDirectory(cmd.Name)
	}

	return fmt.Errorf("(command) %w: unknown command %q", ErrSyntax, cmd.Op)
}

func (it *Interpreter) logSummary(source string, q *queue.GenericQueue[*Command]) {
	slog.Info("Processed commands", it.summaryAttrs(source, q)...)
}

func (it *Interpreter) summaryAttrs(source string, q *queue.GenericQueue[*Command]) []any {
	progress := q.Progress()

	attrs := []any{
		"source", source,
		"commands", progress.TotalItems,
		"succeeded", progress.SuccessItems,
		"failed", progress.SkippedItems,
		"elapsed", progress.Elapsed().String(),
	}

	if q.HasRemainingItems() {
		attrs = append(attrs, "progress", fmt.Sprintf("%.1f%%", progress.ProgressPct()))
	}

	if skipped := q.GetSkipped(); len(skipped) > 0 {
		lines := make([]int, 0, len(skipped))
		for _, cmd := range skipped {
			lines = append(lines, cmd.Line)
		}
		attrs = append(attrs, "failed_lines", lines)
	}

	if stats, err := it.fsHandler.Stats(); err == nil {
		attrs = append(attrs,
			"used", humanize.IBytes(stats.UsedBytes()),
			"free", humanize.IBytes(stats.FreeBytes()),
			"inodes", stats.InodesUsed,
		)
	}

	return attrs
}
