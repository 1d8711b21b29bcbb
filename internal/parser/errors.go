package parser

import "github.com/pkg/errors"

// SyntaxError wraps a parse failure with the byte offset it was detected
// at. The parser never recovers from one: the caller's only option is to
// abort.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string { return e.Msg }

func newSyntaxError(pos int, format string, args ...interface{}) error {
	return errors.WithStack(&SyntaxError{Pos: pos, Msg: errors.Errorf(format, args...).Error()})
}
