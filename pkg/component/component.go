package component

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

const (
	RunMethodName      = "Run"
	RunAsyncMethodName = "RunAsync"
)

// OutputTyper is implemented by values that attach output types to their Run method.
type OutputTyper interface {
	OutputTypes() OutputSockets
}

// AsyncOutputTyper is implemented by values that attach output types to their RunAsync method.
type AsyncOutputTyper interface {
	AsyncOutputTypes() OutputSockets
}

// InputTyper is implemented by values that declare their input sockets explicitly.
type InputTyper interface {
	InputTypes() InputSockets
}

// Component wraps a value so it can be added to a pipeline.
type Component struct {
	value    any
	name     string
	deriver  Deriver
	inputs   InputSockets
	mu       sync.RWMutex
	run      *Method
	runAsync *Method

	outputMu sync.Mutex
	outputs  OutputSockets
}

// Option configures a component.
type Option func(c *Component)

// WithOutputTypes sets the output contract explicitly. The deriver is not used.
func WithOutputTypes(sockets OutputSockets) Option {
	return func(c *Component) {
		c.outputs = sockets.Clone()
		if c.outputs == nil {
			c.outputs = OutputSockets{}
		}
	}
}

// WithInputTypes replaces the input sockets of the component.
func WithInputTypes(sockets InputSockets) Option {
	return func(c *Component) {
		c.inputs = sockets.Clone()
	}
}

// WithDeriver sets the deriver used to compute the output contract.
func WithDeriver(d Deriver) Option {
	return func(c *Component) {
		c.deriver = d
	}
}

// New wraps v. The Run and RunAsync methods of v become the component entrypoints.
func New(v any, opts ...Option) (*Component, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	c := &Component{
		value:   v,
		name:    fmt.Sprintf("%T", v),
		deriver: DefaultDeriver,
	}

	run, err := FromValue(v, RunMethodName)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read run method")
	}
	runAsync, err := FromValue(v, RunAsyncMethodName)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read run async method")
	}
	if ot, ok := v.(OutputTyper); ok && run != nil {
		run.SetOutputTypesCache(ot.OutputTypes())
	}
	if aot, ok := v.(AsyncOutputTyper); ok && runAsync != nil {
		runAsync.SetOutputTypesCache(aot.AsyncOutputTypes())
	}
	c.run = run
	c.runAsync = runAsync

	switch it, ok := v.(InputTyper); {
	case ok:
		c.inputs = it.InputTypes().Clone()
	case run != nil:
		c.inputs = run.InputSockets()
	default:
		c.inputs = InputSockets{}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(v any, opts ...Option) *Component {
	c, err := New(v, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Value returns the wrapped value.
func (c *Component) Value() any {
	return c.value
}

// Name returns the type name of the wrapped value.
func (c *Component) Name() string {
	return c.name
}

// Run returns the current Run entrypoint.
func (c *Component) Run() *Method {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.run
}

// SetRun replaces the Run entrypoint.
func (c *Component) SetRun(m *Method) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run = m
}

// RunAsync returns the RunAsync entrypoint, nil when the value has none.
func (c *Component) RunAsync() *Method {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.runAsync
}

// InputSockets returns the input sockets of the component.
func (c *Component) InputSockets() InputSockets {
	return c.inputs
}

// OutputSockets returns the output contract, deriving it on first use.
func (c *Component) OutputSockets() (OutputSockets, error) {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	if c.outputs != nil {
		return c.outputs, nil
	}
	outputs, err := c.deriver.Derive(c)
	if err != nil {
		return nil, err
	}
	c.outputs = outputs

	return outputs, nil
}

// SetOutputTypes sets the output contract explicitly. It fails once a contract exists.
func (c *Component) SetOutputTypes(sockets OutputSockets) error {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	if c.outputs != nil {
		return errors.Wrapf(ErrOutputAlreadySet, "component %s", c.name)
	}
	c.outputs = sockets.Clone()
	if c.outputs == nil {
		c.outputs = OutputSockets{}
	}

	return nil
}
