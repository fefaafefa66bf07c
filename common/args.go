package common

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrArgNotFound = errors.New("expected argument, but none provided")
	ErrArgParse    = errors.New("could not convert argument to expected type")
)

// ArgsCursor walks the remaining arguments of a command in order.
type ArgsCursor struct {
	args [][]byte
	pos  int
}

func NewArgsCursor(args [][]byte) *ArgsCursor {
	return &ArgsCursor{args: args}
}

func NewArgsCursorFromStrings(args ...string) *ArgsCursor {
	bargs := make([][]byte, 0, len(args))
	for _, a := range args {
		bargs = append(bargs, []byte(a))
	}
	return NewArgsCursor(bargs)
}

func (ac *ArgsCursor) NumRemaining() int {
	return len(ac.args) - ac.pos
}

func (ac *ArgsCursor) IsAtEnd() bool {
	return ac.pos >= len(ac.args)
}

// Peek returns the next argument without consuming it.
func (ac *ArgsCursor) Peek() ([]byte, error) {
	if ac.IsAtEnd() {
		return nil, ErrArgNotFound
	}
	return ac.args[ac.pos], nil
}

// GetBytes returns a reference to the next argument.
func (ac *ArgsCursor) GetBytes() ([]byte, error) {
	b, err := ac.Peek()
	if err != nil {
		return nil, err
	}
	ac.pos++
	return b, nil
}

// GetString returns a copy of the next argument.
func (ac *ArgsCursor) GetString() (string, error) {
	b, err := ac.GetBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetDouble parses the next argument as a float64. The cursor does not
// advance if the argument can not be parsed. NaN is never accepted.
func (ac *ArgsCursor) GetDouble() (float64, error) {
	b, err := ac.Peek()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(v) {
		return 0, ErrArgParse
	}
	ac.pos++
	return v, nil
}

func (ac *ArgsCursor) GetInt64() (int64, error) {
	b, err := ac.Peek()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrArgParse
	}
	ac.pos++
	return v, nil
}

func (ac *ArgsCursor) GetUint64() (uint64, error) {
	b, err := ac.Peek()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, ErrArgParse
	}
	ac.pos++
	return v, nil
}
