package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BackendBuilderOption is a functional option applied to a backend during construction via NewBackend.
type BackendBuilderOption func(*wgpuBackendImpl)

// WithSurface attaches a presentable surface to the backend. The descriptor comes
// from the windowing layer. Without this option the backend runs headless and all
// surface operations return ErrNoSurface.
//
// Parameters:
//   - descriptor: the platform surface descriptor for the window to present into
//
// Returns:
//   - BackendBuilderOption: a function that applies the surface option to a backend
func WithSurface(descriptor *wgpu.SurfaceDescriptor) BackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.surfaceDescriptor = descriptor
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode option to a backend
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the
// system (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - BackendBuilderOption: a function that applies the force software renderer option to a backend
func WithForceSoftwareRenderer(force bool) BackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithHighPerformanceAdapter asks the instance for the high performance adapter on
// systems that expose more than one GPU, e.g. laptops with both integrated and
// discrete graphics.
//
// Returns:
//   - BackendBuilderOption: a function that applies the power preference option to a backend
func WithHighPerformanceAdapter() BackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.powerPreference = wgpu.PowerPreferenceHighPerformance
	}
}

// WithDeviceLabel sets the debug label attached to the WebGPU device, visible in
// GPU debuggers and validation messages.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - BackendBuilderOption: a function that applies the device label option to a backend
func WithDeviceLabel(label string) BackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.deviceLabel = label
	}
}
