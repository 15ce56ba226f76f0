package errors

import (
	"fmt"
)

// ErrorWrapper tags errors with the pipeline stage that produced them, as a
// module ("retrieval", "chat") and an operation within it ("scrape_news").
type ErrorWrapper struct {
	module    string
	operation string
}

// NewWrapper returns a wrapper for one pipeline stage.
func NewWrapper(module, operation string) *ErrorWrapper {
	return &ErrorWrapper{module: module, operation: operation}
}

// Wrap annotates err with the stage and a short description of the failed
// step. A nil err stays nil.
func (w *ErrorWrapper) Wrap(err error, step string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{Module: w.module, Operation: w.operation, Step: step, Cause: err}
}

// Wrapf is Wrap with a formatted step description.
func (w *ErrorWrapper) Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return w.Wrap(err, fmt.Sprintf(format, args...))
}

// WrappedError is an error annotated with its pipeline stage. The cause keeps
// its type; PublicMessage and HTTPStatus look through to it.
type WrappedError struct {
	Module    string
	Operation string
	Step      string
	Cause     error
}

// Stage returns "module:operation", the label used in logs and Error.
func (e *WrappedError) Stage() string {
	return e.Module + ":" + e.Operation
}

func (e *WrappedError) Error() string {
	return "[" + e.Stage() + "] " + e.Step + ": " + e.Cause.Error()
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}
