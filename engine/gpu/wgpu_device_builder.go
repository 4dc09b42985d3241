package gpu

import "github.com/cogentcore/webgpu/wgpu"

// WGPUDeviceBuilderOption is a functional option for configuring a WebGPU device.
type WGPUDeviceBuilderOption func(d *wgpuDevice)

// WithVSync selects FIFO presentation when enabled and immediate presentation otherwise.
//
// Parameters:
//   - enabled: true to synchronize presentation with the display
//
// Returns:
//   - WGPUDeviceBuilderOption: option function to apply
func WithVSync(enabled bool) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		if enabled {
			d.presentMode = wgpu.PresentModeFifo
		} else {
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - WGPUDeviceBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithLabel sets the device label shown in backend diagnostics.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - WGPUDeviceBuilderOption: option function to apply
func WithLabel(label string) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.label = label
	}
}
