package command

import "errors"

var (
	// ErrSyntax is an error that occurs when a line of input is not a valid
	// command.
	ErrSyntax = errors.New("syntax error")
)
