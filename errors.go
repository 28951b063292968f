package main

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Exit codes surfaced by the CLI. Integrity and schema failures share a code;
// both mean the store rejected the request as invalid.
const (
	exitOK          = 0
	exitIntegrity   = 1
	exitTransaction = 2
	exitUsage       = 3
)

type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

type integrityError struct {
	Constraint string
	msg        string
}

func (e integrityError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s (constraint %q)", e.msg, e.Constraint)
	}
	return e.msg
}

func integrityErrorf(format string, args ...interface{}) error {
	return integrityError{msg: fmt.Sprintf(format, args...)}
}

type transactionError struct {
	Unit  string
	Step  string
	Cause error
}

func (e transactionError) Error() string {
	return fmt.Sprintf("transaction %q rolled back at step %q: %v", e.Unit, e.Step, e.Cause)
}

func (e transactionError) Unwrap() error {
	return e.Cause
}

type schemaError struct {
	msg string
}

func (e schemaError) Error() string {
	return e.msg
}

func schemaErrorf(format string, args ...interface{}) error {
	return schemaError{msg: fmt.Sprintf(format, args...)}
}

// mapStoreError translates lib/pq failures into the CLI taxonomy. Class 23
// covers every declared constraint (FK, unique, check, not-null); class 22
// means the supplied value could not even be coerced into the column type,
// which is the caller's fault.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Class() {
	case "23":
		return integrityError{Constraint: pqErr.Constraint, msg: pqErr.Message}
	case "22":
		return usageError{msg: pqErr.Message}
	}
	return err
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var (
		usage usageError
		txn   transactionError
	)
	switch {
	case errors.As(err, &txn):
		return exitTransaction
	case errors.As(err, &usage):
		return exitUsage
	}
	return exitIntegrity
}
