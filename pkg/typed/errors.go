package typed

import "github.com/pkg/errors"

var (
	ErrOutputNotFound   = errors.New("no output for component")
	ErrUnexpectedOutput = errors.New("output has an unexpected type")
)
