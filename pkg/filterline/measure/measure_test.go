package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filterline/go-filterline/pkg/filterline/measure"
	"github.com/filterline/go-filterline/pkg/filterline/model"
)

func TestAddMetricIdempotent(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	first := m.AddMetric("auth")
	second := m.AddMetric("auth")

	assert.Same(t, first, second)
	assert.Len(t, m.AllMetrics(), 1)
}

func TestGetMetricUnknown(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	assert.Nil(t, m.GetMetric("unknown"))
}

func TestMetricAverages(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.AddMetric("auth")

	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, mt.AVGDuration())

	mt.AddPhaseDuration("action:pre", 2*time.Millisecond)
	mt.AddPhaseDuration("action:pre", 4*time.Millisecond)
	mt.AddPhaseDuration("action:post", 5*time.Millisecond)

	phases := mt.AVGPhaseDuration()
	require.Len(t, phases, 2)
	assert.Equal(t, 3*time.Millisecond, phases["action:pre"].Elapsed)
	assert.Equal(t, 5*time.Millisecond, phases["action:post"].Elapsed)
}

func TestMetricEmptyAverage(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.AddMetric("auth")
	assert.Equal(t, time.Duration(0), mt.AVGDuration())
}

func TestMetricTotalDuration(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.AddMetric("auth")
	mt.SetTotalDuration(3 * time.Second)
	assert.Equal(t, 3*time.Second, mt.GetTotalDuration())
}

func TestPipelineMeasureOption(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(m)

	require.NoError(t, opt.New())
	assert.NotNil(t, m.GetMetric(model.StartInfo.Name))
	assert.NotNil(t, m.GetMetric(model.EndInfo.Name))

	info := &model.FilterInfo{Name: "auth", Scope: model.ScopeGlobal}
	require.NoError(t, opt.PrepareFilter("svc/list", info))
	require.NoError(t, opt.OnPhase(info, model.StageAuthorization, model.PhasePre, 8*time.Millisecond))

	mt := m.GetMetric("auth")
	require.NotNil(t, mt)
	assert.Equal(t, 8*time.Millisecond, mt.AVGDuration())

	phases := mt.AllPhases()
	require.Contains(t, phases, "authorization:pre")
	assert.Equal(t, 8*time.Millisecond, phases["authorization:pre"].Elapsed)

	require.NoError(t, opt.Finish(time.Second))
	assert.Equal(t, time.Second, m.GetMetric(model.EndInfo.Name).GetTotalDuration())
}
