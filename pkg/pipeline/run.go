package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

// runState holds the values produced during one run.
type runState struct {
	mu       sync.Mutex
	hooksMu  sync.Mutex
	start    time.Time
	outputs  map[string]map[string]any
	finished map[string]time.Time
}

func (rs *runState) output(name, socket string) (any, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	v, ok := rs.outputs[name][socket]
	return v, ok
}

func (rs *runState) done(name string, out map[string]any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.outputs[name] = out
	rs.finished[name] = time.Now()
}

func (rs *runState) waits(senders []string, startedAt time.Time) map[string]time.Duration {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	waits := make(map[string]time.Duration, len(senders))
	for _, sender := range senders {
		if at, ok := rs.finished[sender]; ok {
			waits[sender] = startedAt.Sub(at)
		}
	}

	return waits
}

// Run executes every component once and returns their outputs.
//
// data maps a component name to the inputs of that component, or an input socket name to a value
// given to every component where that socket is not connected.
//
// The outputs of the components named in includeOutputsFrom are returned in full. For the other
// components only the outputs no other component consumed are returned, and a component
// without any such output is left out.
func (p *Pipeline) Run(ctx context.Context, data map[string]any, includeOutputsFrom []string) (map[string]map[string]any, error) {
	state := &runState{
		start:    time.Now(),
		outputs:  make(map[string]map[string]any, len(p.components)),
		finished: make(map[string]time.Time, len(p.components)),
	}

	supplied := p.prepareInputs(data)
	layers, err := p.layers()
	if err != nil {
		return nil, err
	}

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "pipeline run interrupted")
		}

		inputs := make(map[string]map[string]any, len(layer))
		for _, name := range layer {
			in, err := p.collectInputs(name, supplied[name], state)
			if err != nil {
				return nil, err
			}
			inputs[name] = in
		}

		errGrp, dCtx := errgroup.WithContext(ctx)
		errGrp.SetLimit(p.concurrent)
		for _, name := range layer {
			localName := name
			errGrp.Go(func() error {
				return p.runComponent(dCtx, localName, inputs[localName], state)
			})
		}
		err := errGrp.Wait()
		if err != nil {
			return nil, err
		}
	}

	result := p.collectOutputs(state.outputs, includeOutputsFrom)

	err = p.finishRun()
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// layers groups components so that every component comes after all its senders.
// Components of the same layer do not depend on each other.
func (p *Pipeline) layers() ([][]string, error) {
	order, err := graph.StableTopologicalSort(p.graph, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort components")
	}

	level := make(map[string]int, len(order))
	var layers [][]string
	for _, name := range order {
		lvl := 0
		for _, pred := range p.store.Predecessors(name) {
			if level[pred]+1 > lvl {
				lvl = level[pred] + 1
			}
		}
		level[name] = lvl
		for len(layers) <= lvl {
			layers = append(layers, nil)
		}
		layers[lvl] = append(layers[lvl], name)
	}

	return layers, nil
}

// prepareInputs dispatches the run data to the components.
// Values given for a component take precedence over values given by socket name.
func (p *Pipeline) prepareInputs(data map[string]any) map[string]map[string]any {
	supplied := make(map[string]map[string]any, len(p.components))
	set := func(name, socket string, v any) {
		if supplied[name] == nil {
			supplied[name] = make(map[string]any)
		}
		supplied[name][socket] = v
	}

	byComponent := make(map[string]map[string]any)
	for key, v := range data {
		if _, ok := p.components[key]; ok {
			if values, ok := v.(map[string]any); ok {
				byComponent[key] = values
				continue
			}
		}

		matched := false
		for _, name := range p.order {
			s, ok := p.components[name].InputSockets()[key]
			if ok && len(s.Senders) == 0 {
				set(name, key, v)
				matched = true
			}
		}
		if !matched {
			p.logger.Warn("input does not match any free input socket", zap.String("input", key))
		}
	}

	for name, values := range byComponent {
		for socket, v := range values {
			set(name, socket, v)
		}
	}

	return supplied
}

// collectInputs builds the inputs of a component from its senders, the run data and the socket defaults.
func (p *Pipeline) collectInputs(name string, supplied map[string]any, state *runState) (map[string]any, error) {
	sockets := p.components[name].InputSockets()
	in := make(map[string]any, len(sockets))

	for _, socketName := range sockets.Names() {
		s := sockets[socketName]
		if len(s.Senders) > 0 {
			sender, senderSocket := splitAddress(s.Senders[0])
			if v, ok := state.output(sender, senderSocket); ok {
				in[socketName] = v
				continue
			}
		} else if v, ok := supplied[socketName]; ok {
			in[socketName] = v
			continue
		}
		if s.HasDefault {
			in[socketName] = s.Default
			continue
		}

		return nil, errors.Wrapf(ErrMissingInput, "component %s, input %s", name, socketName)
	}

	// values for sockets the component does not declare are handed over as they are
	for key, v := range supplied {
		if _, ok := sockets[key]; !ok {
			in[key] = v
		}
	}

	return in, nil
}

func (p *Pipeline) runComponent(ctx context.Context, name string, in map[string]any, state *runState) error {
	c := p.components[name]
	info := p.infos[name]

	startedAt := time.Now()
	waits := state.waits(p.store.Predecessors(name), startedAt)
	res, err := c.Run().Call(ctx, in)
	duration := time.Since(startedAt)
	if err != nil {
		p.logger.Debug("component failed", zap.String("component", name), zap.Error(err))
		return errors.Wrapf(err, "component %s", name)
	}
	out, ok := res.(map[string]any)
	if !ok {
		return errors.Wrapf(ErrNonMappingOutput, "component %s returned %T", name, res)
	}

	state.done(name, out)
	err = p.store.UpdateVertex(name, graph.VertexAttribute("duration", duration.String()))
	if err != nil {
		return errors.Wrapf(err, "unable to update component %s", name)
	}

	run := &model.RunInfo{
		Duration: duration,
		Elapsed:  time.Since(state.start),
		Waits:    waits,
	}
	err = p.onComponentRun(state, info, run)
	if err != nil {
		return err
	}
	p.logger.Debug("component ran",
		zap.String("component", name),
		zap.Duration("duration", duration),
		zap.Strings("outputs", lo.Keys(out)),
	)

	return nil
}

// onComponentRun calls the hooks one component at a time.
func (p *Pipeline) onComponentRun(state *runState, info *model.ComponentInfo, run *model.RunInfo) error {
	state.hooksMu.Lock()
	defer state.hooksMu.Unlock()

	for _, opt := range p.opts {
		err := opt.OnComponentRun(info, run)
		if err != nil {
			return errors.Wrap(err, "unable to run on component run function")
		}
	}

	return nil
}

// collectOutputs drops the consumed outputs of the components not in includeOutputsFrom.
func (p *Pipeline) collectOutputs(outputs map[string]map[string]any, includeOutputsFrom []string) map[string]map[string]any {
	result := make(map[string]map[string]any, len(outputs))
	for name, out := range outputs {
		if lo.Contains(includeOutputsFrom, name) {
			result[name] = lo.Assign(out)
			continue
		}

		sockets, err := p.components[name].OutputSockets()
		if err != nil {
			continue
		}
		rest := lo.PickBy(out, func(key string, _ any) bool {
			s, ok := sockets[key]
			return !ok || len(s.Receivers) == 0
		})
		if len(rest) > 0 {
			result[name] = rest
		}
	}

	return result
}
