package model

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineComponentOption
	pipelineConnectionOption

	// Finish runs after a pipeline run is finished.
	Finish() error
}

// pipelineComponentOption defines the interface for component options at the pipeline level.
type pipelineComponentOption interface {
	// PrepareComponent runs when the component is added to the pipeline.
	PrepareComponent(component *ComponentInfo) error
	// OnComponentRun runs everytime the component entrypoint returns.
	OnComponentRun(component *ComponentInfo, run *RunInfo) error
}

// pipelineConnectionOption defines the interface for connection options at the pipeline level.
type pipelineConnectionOption interface {
	// PrepareConnection runs when two components are connected.
	PrepareConnection(connection *ConnectionInfo) error
}
