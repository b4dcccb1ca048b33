package typed

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/askiada/go-typed-pipeline/pkg/component"
	"github.com/askiada/go-typed-pipeline/pkg/pipeline"
	"github.com/askiada/go-typed-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/go-typed-pipeline/pkg/schema"
)

// Pipeline wraps a base pipeline so components can return schema models.
type Pipeline struct {
	base *pipeline.Pipeline
	mu   sync.Mutex
}

// New creates a typed pipeline on top of a new base pipeline.
func New(opts ...pipeline.Option) (*Pipeline, error) {
	base, err := pipeline.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	return Wrap(base), nil
}

// Wrap creates a typed pipeline on top of base.
func Wrap(base *pipeline.Pipeline) *Pipeline {
	return &Pipeline{base: base}
}

// Base returns the wrapped pipeline.
func (p *Pipeline) Base() *pipeline.Pipeline {
	return p.base
}

// AddComponent registers c under name. See pipeline.Pipeline.AddComponent.
func (p *Pipeline) AddComponent(name string, c *component.Component) error {
	return p.base.AddComponent(name, c)
}

// Connect links two sockets. See pipeline.Pipeline.Connect.
func (p *Pipeline) Connect(sender, receiver string) error {
	return p.base.Connect(sender, receiver)
}

// Draw writes the pipeline graph to wrt in the DOT format.
func (p *Pipeline) Draw(wrt io.Writer) error {
	d := drawer.NewDOTDrawer("")
	for _, name := range p.base.Components() {
		c, _ := p.base.Component(name)
		err := d.AddComponent(name, c.Name())
		if err != nil {
			return errors.Wrapf(err, "unable to draw component %s", name)
		}
	}
	for _, conn := range p.base.Connections() {
		err := d.AddLink(conn.Sender, conn.Receiver, conn.SenderSocket+" -> "+conn.ReceiverSocket)
		if err != nil {
			return errors.Wrapf(err, "unable to draw link from %s to %s", conn.Sender, conn.Receiver)
		}
	}

	return d.DrawTo(wrt)
}

// Run executes the pipeline once.
//
// The result maps a component name to the model returned by its Run method, or to the mapping it
// returned when Run does not return a model. When includeOutputsFrom is nil every component is
// included, so models consumed by other components are still complete.
//
// Errors returned by the base pipeline are returned as they are. Run calls are serialized.
func (p *Pipeline) Run(ctx context.Context, data map[string]any, includeOutputsFrom []string) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger := p.base.Logger().With(zap.String("run_id", uuid.NewString()))
	if includeOutputsFrom == nil {
		includeOutputsFrom = p.base.Components()
	}

	results, err := p.execute(ctx, logger, data, includeOutputsFrom)
	if err != nil {
		return nil, err
	}

	out, err := p.reconstruct(results)
	if err != nil {
		return nil, err
	}
	logger.Debug("typed run finished", zap.Strings("components", sortedKeys(out)))

	return out, nil
}

// execute runs the base pipeline with model entrypoints swapped for adapters.
func (p *Pipeline) execute(
	ctx context.Context,
	logger *zap.Logger,
	data map[string]any,
	includeOutputsFrom []string,
) (map[string]map[string]any, error) {
	originals := p.patch()
	defer p.restore(originals)
	logger.Debug("run entrypoints patched", zap.Strings("components", sortedKeys(originals)))

	results, err := p.base.Run(ctx, data, includeOutputsFrom)
	if err != nil {
		logger.Debug("typed run failed", zap.Error(err))
		return nil, err
	}

	return results, nil
}

// patch swaps the Run entrypoint of every component returning a model.
// It returns the original entrypoints by component name.
func (p *Pipeline) patch() map[string]*component.Method {
	originals := make(map[string]*component.Method)
	for _, name := range p.base.Components() {
		c, _ := p.base.Component(name)
		original := c.Run()
		if original == nil || !schema.IsModel(original.ReturnType()) {
			continue
		}
		originals[name] = original
		c.SetRun(adapter(name, original))
	}

	return originals
}

func (p *Pipeline) restore(originals map[string]*component.Method) {
	for name, original := range originals {
		c, ok := p.base.Component(name)
		if !ok {
			continue
		}
		c.SetRun(original)
	}
}

// adapter calls original and turns the returned model into a mapping.
func adapter(name string, original *component.Method) *component.Method {
	return component.NewMethod(original.Name(), nil, func(ctx context.Context, inputs map[string]any) (any, error) {
		res, err := original.Call(ctx, inputs)
		if err != nil {
			return nil, err
		}
		values, err := schema.Encode(res)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read the output of %s", name)
		}

		return values, nil
	})
}

// reconstruct turns the outputs of components returning a model back into models.
func (p *Pipeline) reconstruct(results map[string]map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(results))
	for name, values := range results {
		c, ok := p.base.Component(name)
		if !ok || c.Run() == nil || !schema.IsModel(c.Run().ReturnType()) {
			out[name] = values
			continue
		}
		val, err := schema.Decode(c.Run().ReturnType(), values)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to rebuild the output of %s", name)
		}
		out[name] = val.Interface()
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)

	return keys
}

// Output returns the output of the component name as a T.
func Output[T any](outputs map[string]any, name string) (T, error) {
	var zero T
	v, ok := outputs[name]
	if !ok {
		return zero, errors.Wrapf(ErrOutputNotFound, "%s", name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrUnexpectedOutput, "%s returned %T, expected %T", name, v, zero)
	}

	return typed, nil
}
