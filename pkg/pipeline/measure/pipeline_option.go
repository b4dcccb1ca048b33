package measure

import (
	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareComponent(component *model.ComponentInfo) error {
	pm.AddMetric(component.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareConnection(connection *model.ConnectionInfo) error {
	return nil
}

func (pm *pipelineMeasure) OnComponentRun(component *model.ComponentInfo, run *model.RunInfo) error {
	mt := pm.AddMetric(component.Name)
	mt.AddDuration(run.Duration)
	mt.SetTotalDuration(run.Elapsed)
	for sender, wait := range run.Waits {
		mt.AddTransportDuration(sender, wait)
	}

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records component durations into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
