// Package typed runs a pipeline whose components exchange schema models.
//
// The base pipeline only moves map[string]any values between components. A component whose Run method
// returns a schema model is adapted for the duration of one run: its output is turned into a mapping
// keyed by the model field names, and once the run succeeds the mapping is turned back into the model.
// The original Run entrypoints are restored before Run returns, whether the run failed or not.
//
// Components returning a map[string]any are left as they are, so both kinds can be connected together.
package typed
