// Package model provides the data structures shared by the pipeline package and its options.
// It defines the records describing components, connections and component runs,
// and the hooks a pipeline option implements.
package model
