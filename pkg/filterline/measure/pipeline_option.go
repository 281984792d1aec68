package measure

import (
	"time"

	"github.com/filterline/go-filterline/pkg/filterline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartInfo.Name)
	pm.AddMetric(model.EndInfo.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareFilter(target string, info *model.FilterInfo) error {
	pm.AddMetric(info.Name)

	return nil
}

func (pm *pipelineMeasure) OnPhase(info *model.FilterInfo, stage model.StageType, phase model.Phase, elapsed time.Duration) error {
	mt := pm.GetMetric(info.Name)
	if mt == nil {
		mt = pm.AddMetric(info.Name)
	}
	mt.AddDuration(elapsed)
	mt.AddPhaseDuration(string(stage)+":"+string(phase), elapsed)

	return nil
}

func (pm *pipelineMeasure) Finish(total time.Duration) error {
	pm.GetMetric(model.EndInfo.Name).SetTotalDuration(total)

	return nil
}

// PipelineMeasure observes every stage phase of a pipeline and aggregates
// per-filter timing into the given measure.
func PipelineMeasure(measure Measure) model.Option {
	return &pipelineMeasure{measure}
}
