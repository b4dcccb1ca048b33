package drawer

import (
	"io"
	"time"

	"github.com/askiada/go-typed-pipeline/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddComponent adds a component to the pipeline drawer.
	AddComponent(name, label string) error
	// AddLink adds a link between sender and receiver components.
	AddLink(senderName, receiverName, label string) error
	// Draw creates a file with the pipeline graph.
	Draw() error
	// DrawTo writes the pipeline graph to wrt.
	DrawTo(wrt io.Writer) error
	// SetTotalTime sets the total time for the component.
	SetTotalTime(name string, totalTime time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
