package model

import "time"

// ComponentInfo describes a component registered in a pipeline.
type ComponentInfo struct {
	Name    string
	Type    string
	Inputs  []string
	Outputs []string
}

// ConnectionInfo describes a link from an output socket to an input socket.
type ConnectionInfo struct {
	Sender         string
	SenderSocket   string
	Receiver       string
	ReceiverSocket string
}

// RunInfo describes one execution of a component.
type RunInfo struct {
	// Duration is the time spent in the component entrypoint.
	Duration time.Duration
	// Elapsed is the time since the start of the pipeline run, when the component finished.
	Elapsed time.Duration
	// Waits is, for each sender, the time between the sender finishing and this component starting.
	Waits map[string]time.Duration
}
