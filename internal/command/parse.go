package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/desertwitch/fssim/internal/schema"
)

// Op identifies a command by its letter.
type Op byte

// Commands understood by the [Interpreter].
const (
	OpMount  Op = 'M'
	OpCreate Op = 'C'
	OpDelete Op = 'D'
	OpRead   Op = 'R'
	OpWrite  Op = 'W'
	OpBuffer Op = 'B'
	OpList   Op = 'L'
	OpResize Op = 'E'
	OpDefrag Op = 'O'
	OpCd     Op = 'Y'
)

const (
	maxArgLength  = 1024
	maxLineLength = 4 * maxArgLength
	maxBlockIndex = schema.BlockCount - 1
)

// Command is one parsed line of input. A line that could not be parsed is
// still a Command, carrying its syntax error, so that it is reported in
// order with the others.
type Command struct {
	Line    int
	Op      Op
	Name    string
	Number  int
	Content []byte
	Err     error
}

// Parse parses one line of input. The line must not contain the line
// terminator.
func Parse(lineNum int, line string) *Command {
	cmd := &Command{Line: lineNum}

	if err := cmd.parse(line); err != nil {
		cmd.Err = err
	}

	return cmd
}

func (c *Command) parse(line string) error {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	if trimmed == "" {
		return fmt.Errorf("%w: empty line", ErrSyntax)
	}

	c.Op = Op(trimmed[0])
	args := strings.Fields(trimmed[1:])

	switch c.Op {
	case OpMount:
		if len(args) < 1 || len(args[0]) > maxArgLength {
			return fmt.Errorf("%w: mount needs a disk", ErrSyntax)
		}
		c.Name = args[0]

	case OpCreate:
		return c.parseNameNumber(args, 0, schema.MaxFileSize)

	case OpRead, OpWrite:
		return c.parseNameNumber(args, 0, maxBlockIndex)

	case OpResize:
		return c.parseNameNumber(args, 1, schema.MaxFileSize)

	case OpDelete:
		if len(args) < 1 {
			return fmt.Errorf("%w: missing name", ErrSyntax)
		}

		return c.setName(args[0])

	case OpCd:
		if len(args) != 1 {
			return fmt.Errorf("%w: needs exactly one name", ErrSyntax)
		}

		return c.setName(args[0])

	case OpBuffer:
		i := strings.IndexByte(line, ' ')
		if i < 0 {
			return fmt.Errorf("%w: missing buffer content", ErrSyntax)
		}
		content := line[i+1:]
		if len(content) > schema.BlockSize {
			return fmt.Errorf("%w: buffer content of %d bytes", ErrSyntax, len(content))
		}
		c.Content = []byte(content)

	case OpList, OpDefrag:
		if len(args) != 0 {
			return fmt.Errorf("%w: unexpected arguments", ErrSyntax)
		}

	default:
		return fmt.Errorf("%w: unknown command %q", ErrSyntax, c.Op)
	}

	return nil
}

func (c *Command) parseNameNumber(args []string, lo, hi int) error {
	if len(args) < 2 { //nolint:mnd
		return fmt.Errorf("%w: needs a name and a number", ErrSyntax)
	}

	if err := c.setName(args[0]); err != nil {
		return err
	}

	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if n < lo || n > hi {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrSyntax, n, lo, hi)
	}
	c.Number = n

	return nil
}

func (c *Command) setName(name string) error {
	if len(name) > schema.NameLength {
		return fmt.Errorf("%w: name %q too long", ErrSyntax, name)
	}
	c.Name = name

	return nil
}
