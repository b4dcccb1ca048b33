package drawer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/askiada/go-typed-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	return nil
}

func (pd *pipelineDrawer) PrepareComponent(component *model.ComponentInfo) error {
	err := pd.AddComponent(component.Name, component.Type)
	if err != nil {
		return errors.Wrapf(err, "unable to add component %s to drawer", component.Name)
	}

	return nil
}

func (pd *pipelineDrawer) PrepareConnection(connection *model.ConnectionInfo) error {
	label := fmt.Sprintf("%s -> %s", connection.SenderSocket, connection.ReceiverSocket)
	err := pd.AddLink(connection.Sender, connection.Receiver, label)
	if err != nil {
		return errors.Wrapf(err, "unable to add link %s to %s to drawer", connection.Sender, connection.Receiver)
	}

	return nil
}

func (pd *pipelineDrawer) OnComponentRun(component *model.ComponentInfo, run *model.RunInfo) error {
	if pd.m != nil {
		return nil
	}
	err := pd.SetTotalTime(component.Name, run.Elapsed)
	if err != nil {
		return errors.Wrapf(err, "unable to set total time of %s", component.Name)
	}

	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline after every run. When measure is set, components and
// links are labelled with their average durations.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
