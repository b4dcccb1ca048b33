package pipeline

import (
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-typed-pipeline/internal/store"
	"github.com/askiada/go-typed-pipeline/pkg/component"
	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

// Pipeline is a graph of components.
// It must not be run concurrently with itself or modified while running.
type Pipeline struct {
	graph       graph.Graph[string, string]
	store       store.CustomStore[string, string]
	components  map[string]*component.Component
	infos       map[string]*model.ComponentInfo
	order       []string
	connections []*model.ConnectionInfo
	opts        []model.PipelineOption
	concurrent  int
	logger      *zap.Logger
}

// New creates a new pipeline.
func New(opts ...Option) (*Pipeline, error) {
	s := store.NewMemoryStore[string, string]()
	pipe := &Pipeline{
		store:      s,
		graph:      graph.NewWithStore(graph.StringHash, s, graph.Directed(), graph.PreventCycles()),
		components: make(map[string]*component.Component),
		infos:      make(map[string]*model.ComponentInfo),
		concurrent: 1,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(pipe)
	}
	if pipe.concurrent < 1 {
		pipe.concurrent = 1
	}

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Logger returns the pipeline logger.
func (p *Pipeline) Logger() *zap.Logger {
	return p.logger
}

// AddComponent registers c under name. The output contract of c is derived here,
// so a component with an unusable contract is rejected before any run.
func (p *Pipeline) AddComponent(name string, c *component.Component) error {
	if c == nil {
		return ErrComponentMustBeSet
	}
	if name == "" || strings.Contains(name, ".") {
		return errors.Wrapf(ErrInvalidComponentName, "%q", name)
	}
	if _, ok := p.components[name]; ok {
		return errors.Wrapf(ErrComponentExists, "%s", name)
	}
	for existing, other := range p.components {
		if other == c {
			return errors.Wrapf(ErrComponentReused, "%s is already added as %s", name, existing)
		}
	}

	outputs, err := c.OutputSockets()
	if err != nil {
		return errors.Wrapf(err, "unable to add component %s", name)
	}

	err = p.graph.AddVertex(name, graph.VertexAttribute("type", c.Name()))
	if err != nil {
		return errors.Wrapf(err, "unable to add component %s", name)
	}

	info := &model.ComponentInfo{
		Name:    name,
		Type:    c.Name(),
		Inputs:  c.InputSockets().Names(),
		Outputs: outputs.Names(),
	}
	for _, opt := range p.opts {
		err := opt.PrepareComponent(info)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare component function")
		}
	}

	p.components[name] = c
	p.infos[name] = info
	p.order = append(p.order, name)
	p.logger.Debug("component added",
		zap.String("component", name),
		zap.String("type", c.Name()),
		zap.Strings("inputs", info.Inputs),
		zap.Strings("outputs", info.Outputs),
	)

	return nil
}

// Component returns the component registered under name.
func (p *Pipeline) Component(name string) (*component.Component, bool) {
	c, ok := p.components[name]
	return c, ok
}

// Components returns the component names in the order they were added.
func (p *Pipeline) Components() []string {
	return append([]string(nil), p.order...)
}

// Connections returns every connection in the order they were made.
func (p *Pipeline) Connections() []model.ConnectionInfo {
	out := make([]model.ConnectionInfo, len(p.connections))
	for i, conn := range p.connections {
		out[i] = *conn
	}

	return out
}
