package measure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-typed-pipeline/pkg/pipeline/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	m := NewDefaultMeasure()
	mt := m.AddMetric("gen")
	assert.Same(t, mt, m.AddMetric("gen"))
	assert.Equal(t, time.Duration(0), mt.AVGDuration())

	mt.AddDuration(2 * time.Second)
	mt.AddDuration(4 * time.Second)
	assert.Equal(t, 3*time.Second, mt.AVGDuration())
	assert.Equal(t, int64(2), mt.Runs())

	mt.AddTransportDuration("src", 10*time.Millisecond)
	mt.AddTransportDuration("src", 30*time.Millisecond)
	avg := mt.AVGTransportDuration()
	require.Contains(t, avg, "src")
	assert.Equal(t, 20*time.Millisecond, avg["src"].Elapsed)
	assert.Equal(t, 40*time.Millisecond, mt.AllTransports()["src"].Elapsed)

	mt.SetTotalDuration(time.Minute)
	assert.Equal(t, time.Minute, mt.GetTotalDuration())
}

func TestRound(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in       time.Duration
		expected time.Duration
	}{
		"nanoseconds":  {in: 999, expected: 999},
		"milliseconds": {in: 1500 * time.Microsecond, expected: 1500 * time.Microsecond},
		"seconds":      {in: 1500*time.Millisecond + 300*time.Microsecond, expected: 1500 * time.Millisecond},
		"minutes":      {in: 90*time.Second + 400*time.Millisecond, expected: 90 * time.Second},
		"hours":        {in: 2*time.Hour + 10*time.Second, expected: 2 * time.Hour},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, round(tc.in))
		})
	}
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := NewDefaultMeasure()
	opt := PipelineMeasure(m)
	require.NoError(t, opt.New())

	info := &model.ComponentInfo{Name: "echo"}
	require.NoError(t, opt.PrepareComponent(info))
	require.NoError(t, opt.OnComponentRun(info, &model.RunInfo{
		Duration: time.Millisecond,
		Elapsed:  5 * time.Millisecond,
		Waits:    map[string]time.Duration{"gen": 2 * time.Millisecond},
	}))
	require.NoError(t, opt.Finish())

	mt := m.GetMetric("echo")
	require.NotNil(t, mt)
	assert.Equal(t, time.Millisecond, mt.AVGDuration())
	assert.Equal(t, 5*time.Millisecond, mt.GetTotalDuration())
	assert.Equal(t, 2*time.Millisecond, mt.AllTransports()["gen"].Elapsed)
}
