package drawer

import (
	"time"

	"github.com/filterline/go-filterline/pkg/filterline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddFilter adds a filter vertex to the pipeline graph.
	AddFilter(filterName string) error
	// AddLink adds an execution-order link between two filters.
	AddLink(parentFilterName, childFilterName string) error
	// Draw creates a file with the pipeline graph.
	Draw() error
	// SetTotalTime sets the total time label on a vertex.
	SetTotalTime(filterName string, startTime time.Time) error
	// AddMeasure overlays timing metrics onto the pipeline graph.
	AddMeasure(measure measure.Measure) error
}
