package main

import (
	"context"
	"errors"
	"fmt"
)

const (
	exitFailure      = 1
	exitInvalidInput = 2
	exitThreshold    = 3
	exitCanceled     = 130
)

type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// runError maps a command failure to its exit code. Cancellation exits
// quietly with 130.
func runError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return &exitError{code: exitCanceled, err: err, silent: true}
	}
	return &exitError{code: exitFailure, err: err}
}

func invalidInput(err error) error {
	return &exitError{code: exitInvalidInput, err: err}
}

// failure is a command error resolved to its exit code and the error shown
// to the user.
type failure struct {
	code  int
	err   error
	quiet bool
}

func classify(err error) failure {
	var ee *exitError
	switch {
	case errors.As(err, &ee):
		f := failure{code: ee.code, err: err, quiet: ee.silent}
		if ee.err != nil {
			f.err = ee.err
		}
		return f
	case errors.Is(err, context.Canceled):
		return failure{code: exitCanceled, err: err}
	default:
		return failure{code: exitFailure, err: err}
	}
}

// summary is the log message for a structured report and the prefix of a
// plain one.
func (f failure) summary() string {
	switch f.code {
	case exitInvalidInput:
		return "invalid input"
	case exitThreshold:
		return "severity threshold reached"
	case exitCanceled:
		return "command canceled"
	default:
		return "command failed"
	}
}
