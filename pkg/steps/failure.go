package steps

import (
	"errors"
	"fmt"
)

// Kind classifies a step failure.
type Kind string

const (
	KindMissingState         Kind = "MissingState"
	KindInvalidMountPoint    Kind = "InvalidMountPoint"
	KindMissingConfiguration Kind = "MissingConfiguration"
	KindUnsupportedVariant   Kind = "UnsupportedVariant"
	KindCommandFailed        Kind = "CommandFailed"
	KindExecution            Kind = "Execution"
)

// Failure is the structured outcome of a step that did not succeed.
// Title is a short summary; Message carries the detail shown to the operator.
type Failure struct {
	Kind    Kind
	Title   string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Title, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure returns the Failure in err's chain, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func newFailure(kind Kind, title, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Title: title, Message: fmt.Sprintf(format, args...)}
}
