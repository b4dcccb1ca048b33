// Package pipeline provides a pipeline of components exchanging mappings.
//
// Components are added under a unique name and connected from an output socket of one component to an
// input socket of another. Running the pipeline executes every component once, in topological order, and
// passes the values of output sockets to the connected input sockets. Components which do not depend on
// each other can run concurrently.
//
// The pipeline only knows about map[string]any values: whatever a component returns must be a mapping from
// output socket name to value. The pipeline stops on the first error returned by a component.
//
// Pipeline options are hooks called when components are added, connected and run. The measure and drawer
// packages use them to record durations and render the pipeline graph.
package pipeline
