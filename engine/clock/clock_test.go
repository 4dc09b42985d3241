package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	updates []float64
	deltas  []float64
	renders []float64
	ticks   []string

	onUpdate func()
}

func (r *recorder) Update(now, delta float64) {
	r.updates = append(r.updates, now)
	r.deltas = append(r.deltas, delta)
	r.ticks = append(r.ticks, "update")
	if r.onUpdate != nil {
		r.onUpdate()
	}
}

func (r *recorder) Render(now float64) {
	r.renders = append(r.renders, now)
	r.ticks = append(r.ticks, "render")
}

func fireAt(link *LoopLink, hz float64, n int) {
	for i := range n {
		link.Fire(float64(i) / hz)
	}
}

func TestRateRangeValidate(t *testing.T) {
	tests := []struct {
		name  string
		rate  RateRange
		valid bool
	}{
		{"default", RateRange{Min: 10, Max: 60, Preferred: 60}, true},
		{"unthrottled", RateRange{Preferred: 60}, true},
		{"zero preferred", RateRange{Min: 10, Max: 60}, false},
		{"negative min", RateRange{Min: -1, Max: 60, Preferred: 30}, false},
		{"below min", RateRange{Min: 30, Max: 60, Preferred: 20}, false},
		{"above max", RateRange{Min: 10, Max: 60, Preferred: 120}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rate.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRateRange)
			}
		})
	}
}

func TestClockDecouplesUpdateFromRender(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link, WithUpdateRate(30))
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, c.Start(rec))
	fireAt(link, 60, 12)

	assert.Len(t, rec.renders, 12)
	assert.Len(t, rec.updates, 6)
	for i, now := range rec.updates {
		assert.InDelta(t, float64(2*i)/60, now, 1e-9)
	}
	assert.Equal(t, 0.0, rec.deltas[0])
	for _, d := range rec.deltas[1:] {
		assert.InDelta(t, 1.0/30, d, 1e-9)
	}
	assert.Equal(t, []string{"update", "render", "render", "update", "render"}, rec.ticks[:5])
}

func TestClockUpdatesEveryTickWhenFasterThanDisplay(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link, WithUpdateRate(120))
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, c.Start(rec))
	fireAt(link, 60, 5)

	assert.Len(t, rec.updates, 5)
	assert.Len(t, rec.renders, 5)
}

func TestClockStop(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link)
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, c.Start(rec))
	assert.True(t, c.Running())
	assert.Equal(t, 1, link.Len())

	c.Stop()
	assert.False(t, c.Running())
	assert.Equal(t, 0, link.Len())
	assert.Equal(t, 0, link.Fire(1))
	assert.Empty(t, rec.ticks)

	c.Stop()
}

func TestClockStopDuringUpdateSkipsRender(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link)
	require.NoError(t, err)

	rec := &recorder{}
	rec.onUpdate = c.Stop
	require.NoError(t, c.Start(rec))
	link.Fire(0)
	link.Fire(1)

	assert.Equal(t, []string{"update"}, rec.ticks)
}

func TestClockRestartUpdatesImmediately(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link, WithUpdateRate(1))
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, c.Start(rec))
	link.Fire(0)
	c.Stop()
	require.NoError(t, c.Start(rec))
	link.Fire(0.1)

	assert.Equal(t, []float64{0, 0.1}, rec.updates)
}

func TestClockStartErrors(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Start(nil), ErrNilHandler)
	require.NoError(t, c.Start(&recorder{}))
	assert.ErrorIs(t, c.Start(&recorder{}), ErrRunning)
}

func TestNewClockRejectsBadRates(t *testing.T) {
	_, err := NewClock(NewLoopLink(), WithUpdateRate(0))
	assert.Error(t, err)

	_, err = NewClock(NewLoopLink(), WithRateRange(RateRange{Min: 60, Max: 30, Preferred: 45}))
	assert.ErrorIs(t, err, ErrInvalidRateRange)

	_, err = NewClock(nil)
	assert.Error(t, err)
}

func TestLoopLinkThrottlesToMax(t *testing.T) {
	link := NewLoopLink()
	var fired []float64
	_, err := link.Register(RateRange{Min: 10, Max: 60, Preferred: 60}, func(now float64) {
		fired = append(fired, now)
	})
	require.NoError(t, err)

	fireAt(link, 120, 8)
	assert.Len(t, fired, 4)
}

func TestLoopLinkUnregisterDuringFire(t *testing.T) {
	link := NewLoopLink()
	var order []string
	var second Handle
	first, err := link.Register(RateRange{Preferred: 60}, func(float64) {
		order = append(order, "first")
		link.Unregister(second)
	})
	require.NoError(t, err)
	second, err = link.Register(RateRange{Preferred: 60}, func(float64) {
		order = append(order, "second")
	})
	require.NoError(t, err)

	link.Fire(0)
	link.Fire(1)
	assert.Equal(t, []string{"first", "first"}, order)

	link.Unregister(first)
	link.Unregister(first)
	assert.Equal(t, 0, link.Len())
}

func TestLoopLinkRegisterErrors(t *testing.T) {
	link := NewLoopLink()
	_, err := link.Register(RateRange{Preferred: 60}, nil)
	assert.ErrorIs(t, err, ErrNilTick)
	_, err = link.Register(RateRange{}, func(float64) {})
	assert.ErrorIs(t, err, ErrInvalidRateRange)
}

func TestTickerLinkFiresUntilUnregistered(t *testing.T) {
	link := NewTickerLink()
	defer link.Close()

	var ticks atomic.Int64
	h, err := link.Register(RateRange{Preferred: 200}, func(float64) {
		ticks.Add(1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	link.Unregister(h)
	stopped := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), stopped+1)
}

func TestTickerLinkDrivesClock(t *testing.T) {
	link := NewTickerLink()
	defer link.Close()

	c, err := NewClock(link, WithUpdateRate(50), WithRateRange(RateRange{Preferred: 200}))
	require.NoError(t, err)

	var updates, renders atomic.Int64
	require.NoError(t, c.Start(handlerFuncs{
		update: func(float64, float64) { updates.Add(1) },
		render: func(float64) { renders.Add(1) },
	}))

	require.Eventually(t, func() bool { return updates.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	link.Close()
	assert.GreaterOrEqual(t, renders.Load(), updates.Load())
}

func TestClockWithValueHandlerStoppedDuringUpdate(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link)
	require.NoError(t, err)

	var updates, renders int
	require.NoError(t, c.Start(handlerFuncs{
		update: func(float64, float64) {
			updates++
			c.Stop()
		},
		render: func(float64) { renders++ },
	}))

	assert.NotPanics(t, func() { link.Fire(0) })
	assert.Equal(t, 1, updates)
	assert.Zero(t, renders)
	assert.False(t, c.Running())
}

func TestClockWithValueHandlerRestartedDuringUpdate(t *testing.T) {
	link := NewLoopLink()
	c, err := NewClock(link)
	require.NoError(t, err)

	var renders int
	h := handlerFuncs{update: func(float64, float64) {}, render: func(float64) { renders++ }}
	h.update = func(float64, float64) {
		c.Stop()
		require.NoError(t, c.Start(handlerFuncs{update: func(float64, float64) {}, render: func(float64) {}}))
	}
	require.NoError(t, c.Start(h))

	link.Fire(0)
	assert.Zero(t, renders)
	assert.True(t, c.Running())
}

func TestTickerLinkStopThroughDo(t *testing.T) {
	link := NewTickerLink()
	defer link.Close()

	c, err := NewClock(link, WithUpdateRate(100), WithRateRange(RateRange{Preferred: 200}))
	require.NoError(t, err)

	var calls atomic.Int64
	require.NoError(t, c.Start(handlerFuncs{
		update: func(float64, float64) { calls.Add(1) },
		render: func(float64) { calls.Add(1) },
	}))
	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)

	link.Do(c.Stop)
	stopped := calls.Load()
	assert.False(t, c.Running())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestClockStopFromHostGoroutine(t *testing.T) {
	link := NewTickerLink()
	defer link.Close()

	c, err := NewClock(link, WithUpdateRate(200), WithRateRange(RateRange{Preferred: 400}))
	require.NoError(t, err)

	var calls atomic.Int64
	require.NoError(t, c.Start(handlerFuncs{
		update: func(float64, float64) { calls.Add(1) },
		render: func(float64) { calls.Add(1) },
	}))
	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)

	c.Stop()
	assert.False(t, c.Running())
	stopped := calls.Load()

	time.Sleep(50 * time.Millisecond)
	// a tick in flight when Stop ran may still finish its current handler call
	assert.LessOrEqual(t, calls.Load(), stopped+1)
}

type handlerFuncs struct {
	update func(now, delta float64)
	render func(now float64)
}

func (h handlerFuncs) Update(now, delta float64) { h.update(now, delta) }
func (h handlerFuncs) Render(now float64)        { h.render(now) }
