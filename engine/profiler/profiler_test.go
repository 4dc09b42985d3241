package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerReportsRates(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer common.SetLogger(nil)

	now := time.Unix(100, 0)
	p := NewProfiler(WithInterval(2 * time.Second))
	p.now = func() time.Time { return now }
	p.lastTime = now

	for range 60 {
		p.Render()
	}
	for range 30 {
		p.Update()
	}
	p.Skip()

	now = now.Add(time.Second)
	_, ok := p.Tick()
	assert.False(t, ok)

	now = now.Add(time.Second)
	stats, ok := p.Tick()
	require.True(t, ok)
	assert.InDelta(t, 30, stats.FPS, 1e-9)
	assert.InDelta(t, 15, stats.UPS, 1e-9)
	assert.Equal(t, 1, stats.Skipped)
	assert.Contains(t, buf.String(), "fps=30")

	now = now.Add(2 * time.Second)
	stats, ok = p.Tick()
	require.True(t, ok)
	assert.Zero(t, stats.FPS)
	assert.Zero(t, stats.Skipped)
}
