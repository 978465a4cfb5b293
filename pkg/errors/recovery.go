// Package errors provides comprehensive error handling utilities for scibench.
//
// This file contains panic recovery utilities. The worker pool uses them to
// report a panicking unit as an error from the fan-in wait.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError represents an error that was created from a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string

	// Cause is the error the function had already set when it panicked, if any.
	Cause error
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("panic in %s: %v (original error: %v)", e.Operation, e.PanicValue, e.Cause)
	}
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns the error that was pending when the panic happened.
func (e *PanicError) Unwrap() error {
	return e.Cause
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("%s\nStack trace:\n%s", e.Error(), e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover is used with defer to convert a panic into a *PanicError stored in *err.
//
// Usage:
//
//	func SomeMethod() (err error) {
//	    defer Recover(&err, "SomeMethod")
//	    // ... method implementation ...
//	    return nil
//	}
//
// If the function had already set an error, it is kept as the PanicError's Cause.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		panicErr.Cause = *err
		*err = panicErr
	}
}

// SafeExecute executes fn and converts any panic into a PanicError.
//
// Example:
//
//	err := SafeExecute("sum of squares", func() error {
//	    return doWork()
//	})
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
