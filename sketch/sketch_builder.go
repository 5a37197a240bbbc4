package sketch

import (
	"github.com/glazegpu/glaze/sketch/gpu"
)

// SketchBuilderOption is a functional option applied to a sketch during construction via NewSketch.
type SketchBuilderOption func(*glazeSketch)

// WithTitle sets the canvas window title.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - SketchBuilderOption: a function that applies the title option to a sketch
func WithTitle(title string) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.title = title
	}
}

// WithSize sets the sketch's pixel grid, which is also the initial canvas
// size. On high-DPI displays the created framebuffer may be larger and the
// sketch adopts its dimensions.
//
// Parameters:
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - SketchBuilderOption: a function that applies the size option to a sketch
func WithSize(width, height int) SketchBuilderOption {
	return func(s *glazeSketch) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// WithHeadless skips window creation. A headless sketch builds and runs
// passes and reads results back, but Run returns ErrNoCanvas.
//
// Parameters:
//   - headless: true to run without a window
//
// Returns:
//   - SketchBuilderOption: a function that applies the headless option to a sketch
func WithHeadless(headless bool) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.headless = headless
	}
}

// WithResizableCanvas makes the canvas window resizable. Resizing changes
// the presented surface only; the sketch's pixel grid and textures keep
// their creation size and the present blit rescales.
//
// Parameters:
//   - resizable: true to allow window resizing
//
// Returns:
//   - SketchBuilderOption: a function that applies the resizable option to a sketch
func WithResizableCanvas(resizable bool) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.resizableCanvas = resizable
	}
}

// WithPresentMode sets the surface present mode which controls how frames
// are delivered to the display.
//
// Parameters:
//   - mode: the gpu.PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - SketchBuilderOption: a function that applies the present mode option to a sketch
func WithPresentMode(mode gpu.PresentMode) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces the CPU fallback adapter instead of
// hardware acceleration, for machines and CI hosts without a usable GPU.
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - SketchBuilderOption: a function that applies the software renderer option to a sketch
func WithForceSoftwareRenderer(force bool) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.forceFallback = force
	}
}

// WithHighPerformanceAdapter asks for the high performance adapter on
// systems that expose more than one GPU.
//
// Returns:
//   - SketchBuilderOption: a function that applies the power preference option to a sketch
func WithHighPerformanceAdapter() SketchBuilderOption {
	return func(s *glazeSketch) {
		s.highPerformance = true
	}
}

// WithProfiler enables per-second frame timing and allocation reports
// during the frame loop.
//
// Parameters:
//   - enabled: true to log profiling reports
//
// Returns:
//   - SketchBuilderOption: a function that applies the profiler option to a sketch
func WithProfiler(enabled bool) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.profilerEnabled = enabled
	}
}

// WithUpdateWorkers sets the worker count for OnUpdate handlers. The
// default leaves one CPU free for the frame loop itself.
//
// Parameters:
//   - workers: the worker pool size, values below 1 are ignored
//
// Returns:
//   - SketchBuilderOption: a function that applies the worker count option to a sketch
func WithUpdateWorkers(workers int) SketchBuilderOption {
	return func(s *glazeSketch) {
		if workers > 0 {
			s.updateWorkers = workers
		}
	}
}

// WithBackend supplies a ready backend instead of creating one, for
// embedders that manage their own device and for tests. The sketch then
// creates no canvas and no surface.
//
// Parameters:
//   - backend: the backend to drive
//
// Returns:
//   - SketchBuilderOption: a function that applies the backend option to a sketch
func WithBackend(backend gpu.Backend) SketchBuilderOption {
	return func(s *glazeSketch) {
		s.prebuiltBackend = backend
	}
}
