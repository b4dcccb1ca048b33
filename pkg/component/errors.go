package component

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingRun        = errors.New("component must expose a run method")
	ErrOutputMismatch    = errors.New("sync/async output specifications differ")
	ErrInvalidReturnType = errors.New("return type must be a schema model or unspecified")
	ErrInvalidSignature  = errors.New("invalid run method signature")
	ErrOutputAlreadySet  = errors.New("output types are already set")
	ErrNilValue          = errors.New("component value must be set")
)

// ContractError reports a component whose declared interface cannot be used by a pipeline.
// It is never retried: the component definition has to change.
type ContractError struct {
	Component string
	Err       error
	Detail    string
}

func newContractError(component string, err error, format string, args ...interface{}) *ContractError {
	return &ContractError{
		Component: component,
		Err:       err,
		Detail:    fmt.Sprintf(format, args...),
	}
}

func (ce *ContractError) Error() string {
	msg := fmt.Sprintf("component %s: %s", ce.Component, ce.Err)
	if ce.Detail != "" {
		msg += ": " + ce.Detail
	}

	return msg
}

func (ce *ContractError) Unwrap() error {
	return ce.Err
}
