package drawer

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/filterline/go-filterline/pkg/filterline/measure"
	"github.com/filterline/go-filterline/pkg/filterline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time

	// mu serializes graph mutations; executions run concurrently and the
	// pipeline does not synchronize its option callbacks.
	mu sync.Mutex

	// lastFilter tracks the tail of each target's chain so filters link up
	// in execution order.
	lastFilter map[string]string
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddFilter(model.StartInfo.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start vertex to drawer")
	}
	err = pd.AddFilter(model.EndInfo.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end vertex to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareFilter(target string, info *model.FilterInfo) error {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	err := pd.AddFilter(info.Name)
	if err != nil {
		return err
	}

	parent, ok := pd.lastFilter[target]
	if !ok {
		parent = model.StartInfo.Name
	}
	err = pd.AddLink(parent, info.Name)
	if err != nil {
		return err
	}
	pd.lastFilter[target] = info.Name

	return nil
}

func (pd *pipelineDrawer) OnPhase(info *model.FilterInfo, stage model.StageType, phase model.Phase, elapsed time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish(total time.Duration) error {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	for _, tail := range pd.lastFilter {
		err := pd.AddLink(tail, model.EndInfo.Name)
		if err != nil {
			return errors.Wrap(err, "unable to close pipeline chain")
		}
	}

	if pd.m != nil {
		err := pd.SetTotalTime(model.EndInfo.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
		err = pd.AddMeasure(pd.m)
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

// PipelineDrawer draws the pipeline's filters in execution order, with the
// given measure's timings overlaid when one is supplied.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.Option {
	return &pipelineDrawer{
		Drawer:     drawer,
		m:          measure,
		startTime:  time.Now(),
		lastFilter: make(map[string]string),
	}
}
