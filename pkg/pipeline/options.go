package pipeline

import (
	"go.uber.org/zap"

	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

type Option func(p *Pipeline)

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConcurrency sets how many independent components can run at the same time.
func WithConcurrency(concurrent int) Option {
	return func(p *Pipeline) {
		p.concurrent = concurrent
	}
}

// WithHooks registers pipeline options such as measure.PipelineMeasure or drawer.PipelineDrawer.
func WithHooks(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}
