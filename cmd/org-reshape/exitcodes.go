package main

import (
	"errors"

	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitIO         = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// classify attaches the exit code matching the error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *reshape.SchemaError
	if errors.As(err, &se) {
		return withCode(exitValidation, err)
	}
	var ie *tabular.IOError
	if errors.As(err, &ie) {
		return withCode(exitIO, err)
	}
	return err
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
