package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrComponentMustBeSet     = errors.New("component must be set")
	ErrInvalidComponentName   = errors.New("component name must be set and must not contain a dot")
	ErrComponentExists        = errors.New("component name already used")
	ErrComponentReused        = errors.New("component already added to the pipeline")
	ErrComponentNotFound      = errors.New("component not found")
	ErrSocketNotFound         = errors.New("socket not found")
	ErrAmbiguousSocket        = errors.New("socket must be specified")
	ErrSocketAlreadyConnected = errors.New("input socket already connected")
	ErrIncompatibleSockets    = errors.New("sockets have incompatible types")
	ErrMissingInput           = errors.New("mandatory input is missing")
	ErrNonMappingOutput       = errors.New("component must return a map[string]any")
)
