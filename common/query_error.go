package common

import (
	"errors"
	"fmt"
)

type QueryErrorCode int

const (
	QueryErrOK QueryErrorCode = iota
	QueryErrArgCount
	QueryErrBadArgs
	QueryErrUnknownUnit
	QueryErrSyntax
	QueryErrIndexLookup
)

var (
	ErrArgCount       = errors.New("wrong number of arguments")
	ErrBadArgs        = errors.New("bad arguments")
	ErrUnknownUnit    = errors.New("unknown distance unit")
	ErrRangeViolation = errors.New("value out of range")
	ErrIndexLookup    = errors.New("index lookup failed")
)

func (c QueryErrorCode) String() string {
	switch c {
	case QueryErrOK:
		return "OK"
	case QueryErrArgCount:
		return "ArgumentCount"
	case QueryErrBadArgs:
		return "ArgumentType"
	case QueryErrUnknownUnit:
		return "UnknownUnit"
	case QueryErrSyntax:
		return "RangeValidation"
	case QueryErrIndexLookup:
		return "IndexLookup"
	default:
		return "unknown"
	}
}

func (c QueryErrorCode) sentinel() error {
	switch c {
	case QueryErrArgCount:
		return ErrArgCount
	case QueryErrBadArgs:
		return ErrBadArgs
	case QueryErrUnknownUnit:
		return ErrUnknownUnit
	case QueryErrSyntax:
		return ErrRangeViolation
	case QueryErrIndexLookup:
		return ErrIndexLookup
	default:
		return nil
	}
}

// QueryError carries a user facing message and the machine readable code.
// errors.Is matches it against the sentinel of its code.
type QueryError struct {
	Code QueryErrorCode
	Msg  string
	// Cause is the lower level error, if any.
	Cause error
}

func (e *QueryError) Error() string {
	return e.Msg
}

func (e *QueryError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Code.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewQueryError(code QueryErrorCode, f string, args ...interface{}) *QueryError {
	return &QueryError{
		Code: code,
		Msg:  fmt.Sprintf(f, args...),
	}
}

// NewBadArgsError reports an argument that failed to be read from the
// cursor, naming the argument.
func NewBadArgsError(name string, cause error) *QueryError {
	return &QueryError{
		Code:  QueryErrBadArgs,
		Msg:   fmt.Sprintf("Bad arguments for %s: %v", name, cause),
		Cause: cause,
	}
}

// CodeOf returns the query error code of err, QueryErrOK for nil and
// QueryErrBadArgs for errors not created by this package.
func CodeOf(err error) QueryErrorCode {
	if err == nil {
		return QueryErrOK
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return QueryErrBadArgs
}
