package gputest

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsPassAndDraw(t *testing.T) {
	d := NewDevice(640, 480)

	p, err := d.CreateRenderPipeline(gpu.PipelineDescriptor{Key: gpu.PipelineKey{
		Vertex:   gpu.ProgramStandardVertex,
		Fragment: gpu.ProgramUVColoredFragment,
	}})
	require.NoError(t, err)

	uniform := func(label string) gpu.Buffer {
		b, err := d.CreateBuffer(gpu.BufferDescriptor{Label: label, Usage: gpu.BufferUsageUniform, Size: 16})
		require.NoError(t, err)
		return b
	}

	dr, err := d.NextDrawable()
	require.NoError(t, err)
	cb, err := d.CreateCommandBuffer()
	require.NoError(t, err)

	enc, err := cb.BeginPass(gpu.PassDescriptor{Target: dr, ColorLoad: gpu.LoadActionLoad})
	require.NoError(t, err)
	enc.SetPipeline(p)
	require.Error(t, enc.DrawIndexed(gpu.Submesh{IndexCount: 3}, 1))

	enc.SetUniform(gpu.SlotViewProjection, uniform("vp"))
	enc.SetUniform(gpu.SlotGlobals, uniform("globals"))
	enc.SetUniform(gpu.SlotLights, uniform("lights"))
	enc.SetUniform(gpu.SlotModel, uniform("model"))
	require.NoError(t, enc.DrawIndexed(gpu.Submesh{IndexCount: 3}, 1))
	require.NoError(t, enc.End())

	cb.Present(dr)
	require.NoError(t, cb.Commit())

	require.Len(t, d.Draws, 1)
	assert.Equal(t, "model", d.Draws[0].Model.Label)
	assert.Equal(t, 1, d.Presented)
	assert.Equal(t, 1, d.CountLog("BeginPass(load)"))
}

func TestInjectedFailures(t *testing.T) {
	d := NewDevice(1, 1)
	d.NoDrawable = true
	_, err := d.NextDrawable()
	assert.ErrorIs(t, err, gpu.ErrNoDrawable)

	d.PipelineErr = ErrInjected
	_, err = d.CreateRenderPipeline(gpu.PipelineDescriptor{})
	assert.ErrorIs(t, err, ErrInjected)

	d.NoDrawable = false
	d.FailPass = 2
	dr, _ := d.NextDrawable()
	cb, _ := d.CreateCommandBuffer()
	enc, err := cb.BeginPass(gpu.PassDescriptor{Target: dr})
	require.NoError(t, err)
	require.NoError(t, enc.End())
	_, err = cb.BeginPass(gpu.PassDescriptor{Target: dr})
	var de *gpu.DeviceError
	assert.ErrorAs(t, err, &de)
}
