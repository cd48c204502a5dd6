package errcode

import (
	"errors"

	"diagcode-go/drivers/kline"
)

// Code is a stable error identifier for the layers above the drivers.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	EchoTimeout   Code = "echo_timeout"
	EchoMismatch  Code = "echo_mismatch"
	LineFault     Code = "line_fault"
	InvalidParams Code = "invalid_params"
	Unsupported   Code = "unsupported"
	Timeout       Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapLineErr maps the K-line driver's sentinel errors to a Code.
func MapLineErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, kline.ErrEchoTimeout):
		return EchoTimeout
	case errors.Is(err, kline.ErrEchoMismatch):
		return EchoMismatch
	default:
		return Error
	}
}
