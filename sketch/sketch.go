// Package sketch is the top-level creative-coding surface of glaze. A
// Sketch owns the GPU device, the canvas window, and the small set of
// well-known resources shader snippets can reference by bare name
// (mouse, time, renderTxtr, feedbackTxtr, the noise offsets). Callers
// write shader bodies, let the sketch resolve bindings and synthesize
// entry points, and drive everything through RunPasses or the Run frame
// loop.
package sketch

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/glazegpu/glaze/common"
	"github.com/glazegpu/glaze/sketch/binding"
	"github.com/glazegpu/glaze/sketch/canvas"
	"github.com/glazegpu/glaze/sketch/gpu"
	"github.com/glazegpu/glaze/sketch/layout"
	"github.com/glazegpu/glaze/sketch/pass"
	"github.com/glazegpu/glaze/sketch/profiler"
	"github.com/glazegpu/glaze/sketch/shader"
)

//go:embed assets/blit.wgsl
var blitWGSL string

var (
	// ErrDeviceNotReady is returned when passes are built or run before the
	// GPU device finished initializing.
	ErrDeviceNotReady = errors.New("device is not ready")
	// ErrMultipleSplits is returned when more than one entry of a binding
	// list is a chunked buffer; only one entry may fan a pass out.
	ErrMultipleSplits = errors.New("binding list has more than one chunked buffer")
	// ErrNoCanvas is returned by Run on a headless sketch, which has no
	// surface to present to.
	ErrNoCanvas = errors.New("sketch has no canvas")
)

// noiseOffsetScale bounds the random offsets that shift the noise field,
// so every run of a sketch samples a different region.
const noiseOffsetScale = 1000.0

// Sketch is a configured GPU drawing context.
type Sketch interface {
	// Width returns the sketch's pixel grid width.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the sketch's pixel grid height.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Time returns the seconds elapsed since the sketch was created. The
	// same value is uploaded to the time shader binding each frame.
	//
	// Returns:
	//   - float32: elapsed seconds
	Time() float32

	// Pointer returns the current pointer state in canvas pixels. The same
	// values are uploaded to the mouse shader binding each frame.
	//
	// Returns:
	//   - common.PointerState: position and primary-button state
	Pointer() common.PointerState

	// Backend returns the GPU backend the sketch drives. Callers needing
	// raw device access drop down through it.
	//
	// Returns:
	//   - gpu.Backend: the backend, never nil after NewSketch succeeds
	Backend() gpu.Backend

	// Canvas returns the sketch's window, or nil for a headless sketch.
	//
	// Returns:
	//   - canvas.Canvas: the canvas, or nil
	Canvas() canvas.Canvas

	// OutputTexture returns the primary output surface, referenced in
	// shader code as renderTxtr.
	//
	// Returns:
	//   - *binding.Texture: the output texture
	OutputTexture() *binding.Texture

	// FeedbackTexture returns the previous frame's output, referenced in
	// shader code as feedbackTxtr. The frame loop copies the output into it
	// after every presented frame.
	//
	// Returns:
	//   - *binding.Texture: the feedback texture
	FeedbackTexture() *binding.Texture

	// CreateBuffer packs records against a struct layout and allocates
	// storage for them, splitting into chunks above the per-buffer element
	// ceiling. The sketch releases the buffers with Release.
	//
	// Parameters:
	//   - name: the shader-side identifier for the buffer
	//   - structType: the record layout
	//   - records: one or more records to pack
	//
	// Returns:
	//   - binding.Split: one buffer per chunk, usually a single element
	//   - error: an error if validation or allocation fails
	CreateBuffer(name string, structType *layout.Struct, records ...layout.Record) (binding.Split, error)

	// CreateValueBuffer allocates storage for loose float values with the
	// shader-side type inferred from the value count.
	//
	// Parameters:
	//   - name: the shader-side identifier for the buffer
	//   - values: the initial contents
	//
	// Returns:
	//   - *binding.Buffer: the allocated buffer
	//   - error: an error if validation or allocation fails
	CreateValueBuffer(name string, values ...float32) (*binding.Buffer, error)

	// CreateTexture allocates a 2D texture usable as a storage target, a
	// sampled source, a render attachment, and a copy endpoint.
	//
	// Parameters:
	//   - name: the shader-side identifier for the texture
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - format: the pixel format
	//
	// Returns:
	//   - *binding.Texture: the allocated texture
	//   - error: an error if validation or allocation fails
	CreateTexture(name string, width, height int, format wgpu.TextureFormat) (*binding.Texture, error)

	// Compute assembles a compute pass from a shader body and an explicit
	// binding list, dispatching the given workgroup grid. The body goes
	// through environment substitution, noise-library injection, and
	// entry-point synthesis; referenced well-known resources are appended
	// to the binding list automatically. If one binding is a chunked
	// buffer the returned pass is a group with one pass per chunk, each
	// dispatched across its own element count.
	//
	// Parameters:
	//   - body: the shader body or complete program text
	//   - bindings: explicit bindings in slot order, may be nil
	//   - x, y, z: workgroup counts, ignored for fanned-out chunks
	//
	// Returns:
	//   - pass.Pass: the constructed pass or pass group
	//   - error: an error if validation, compilation, or binding fails
	Compute(body string, bindings []binding.Binding, x, y, z uint32) (pass.Pass, error)

	// ComputeSurface assembles a compute pass dispatched once per output
	// pixel, for full-surface image shaders.
	//
	// Parameters:
	//   - body: the shader body or complete program text
	//   - bindings: explicit bindings in slot order
	//
	// Returns:
	//   - pass.Pass: the constructed pass
	//   - error: an error if validation, compilation, or binding fails
	ComputeSurface(body string, bindings ...binding.Binding) (pass.Pass, error)

	// ComputeFor assembles a compute pass dispatched once per element of
	// the given buffer, which binds at slot 0. Chunked buffers fan out
	// into one pass per chunk.
	//
	// Parameters:
	//   - over: the element buffer driving the dispatch size
	//   - body: the shader body or complete program text
	//   - bindings: additional explicit bindings following slot 0
	//
	// Returns:
	//   - pass.Pass: the constructed pass or pass group
	//   - error: an error if validation, compilation, or binding fails
	ComputeFor(over binding.Split, body string, bindings ...binding.Binding) (pass.Pass, error)

	// Render assembles a render pass drawing one full-target triangle with
	// the given complete shader source (vs_main and fs_main entry points).
	// The source receives environment substitution and automatic binding
	// resolution but no entry-point synthesis.
	//
	// Parameters:
	//   - target: the texture to draw into, or nil for the output surface
	//   - source: complete WGSL with vs_main and fs_main
	//   - bindings: explicit bindings in slot order
	//
	// Returns:
	//   - pass.Pass: the constructed pass
	//   - error: an error if validation, compilation, or binding fails
	Render(target *binding.Texture, source string, bindings ...binding.Binding) (pass.Pass, error)

	// RunPasses records the given passes, in order, repeated the given
	// number of times, into one command encoder and submits it as a single
	// unit of device work. Nested groups encode their members in order on
	// the same encoder.
	//
	// Parameters:
	//   - repeats: how many times to record the whole list; values below 1 run once
	//   - passes: the passes to record, in execution order
	//
	// Returns:
	//   - error: an error if the device is not ready, a pass is invalid, or
	//     submission fails
	RunPasses(repeats int, passes ...pass.Pass) error

	// OnUpdate registers a handler executed on the worker pool before each
	// frame callback. Handlers run concurrently with one another and the
	// loop waits for all of them before continuing.
	//
	// Parameters:
	//   - handler: the per-frame host work to run
	OnUpdate(handler func())

	// Run drives the frame loop until the canvas closes or the callback
	// fails: poll events, upload clock and pointer state, run update
	// handlers, invoke the frame callback, then blit the output to the
	// surface, present, and copy it into the feedback texture.
	//
	// Parameters:
	//   - frame: the per-frame callback, typically building and running passes
	//
	// Returns:
	//   - error: the callback's error, a recovered callback panic, or
	//     ErrNoCanvas on a headless sketch
	Run(frame func(s Sketch) error) error

	// Quit asks the frame loop to stop after the current iteration. Safe to
	// call more than once.
	Quit()

	// Release frees every GPU resource the sketch created, then the backend
	// and the canvas. The sketch must not be used afterwards.
	Release()
}

// glazeSketch is the implementation of the Sketch interface.
type glazeSketch struct {
	// mu guards the tracked-resource slices, the pointer state, and the
	// pass-label counter. It is never held across device work or callbacks.
	mu *sync.Mutex

	// backend is the GPU device layer.
	backend gpu.Backend

	// cv is the window, nil for headless sketches.
	cv canvas.Canvas

	// width and height fix the sketch's pixel grid. The window surface may
	// differ (high-DPI, resizable windows); the present blit rescales.
	width  int
	height int

	// start anchors the clock uploaded to the time binding.
	start time.Time

	// pointer mirrors the latest canvas pointer events.
	pointer common.PointerState

	// pointerBuf, clockBuf, outputTxtr and feedbackTxtr are the well-known
	// resources resolved by name in shader source.
	pointerBuf   *binding.Buffer
	clockBuf     *binding.Buffer
	outputTxtr   *binding.Texture
	feedbackTxtr *binding.Texture

	// noiseOnce guards the lazy noise offset buffer; noiseBuf stays nil
	// until a shader references a noise function.
	noiseOnce sync.Once
	noiseBuf  *binding.Buffer

	// updatePool runs OnUpdate handlers; workers persist across frames. A
	// WaitGroup provides the per-frame barrier since pool.Wait blocks until
	// workers idle-exit, which is unsuitable for frame-rate workloads.
	updatePool     worker.DynamicWorkerPool
	updateWorkers  int
	updateHandlers []func()

	// prof is non-nil when frame profiling is enabled.
	prof *profiler.Profiler

	// blit state, created on the first Run.
	blitPipeline      *wgpu.RenderPipeline
	blitBindGroup     *wgpu.BindGroup
	feedbackPipeline  *wgpu.RenderPipeline
	feedbackBindGroup *wgpu.BindGroup

	// tracked resources, released together in Release.
	computePipelines []*wgpu.ComputePipeline
	renderPipelines  []*wgpu.RenderPipeline
	bindGroups       []*wgpu.BindGroup
	ownedBuffers     []*binding.Buffer
	ownedTextures    []*binding.Texture

	// passCounter numbers generated pass labels.
	passCounter int

	// quitOnce makes Quit idempotent.
	quitOnce sync.Once

	// released guards against double Release.
	released bool

	// builder state, only read during NewSketch.
	title              string
	headless           bool
	resizableCanvas    bool
	forceFallback      bool
	highPerformance    bool
	profilerEnabled    bool
	pendingPresentMode *gpu.PresentMode
	prebuiltBackend    gpu.Backend
}

var _ Sketch = &glazeSketch{}

// NewSketch creates a Sketch with the specified options: a canvas window
// (unless headless), the GPU backend configured against its surface, and
// the well-known shader resources. Applies default values first, then
// each option in order.
//
// Parameters:
//   - options: functional options to configure the sketch
//
// Returns:
//   - Sketch: the ready sketch
//   - error: an error if the window, device, or initial resources fail
func NewSketch(options ...SketchBuilderOption) (Sketch, error) {
	s := &glazeSketch{
		mu:            &sync.Mutex{},
		title:         "Glaze Sketch",
		width:         640,
		height:        480,
		updateWorkers: max(runtime.NumCPU()-1, 1),
		start:         time.Now(),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.initBackend(); err != nil {
		return nil, err
	}
	if err := s.initWellKnown(); err != nil {
		s.Release()
		return nil, err
	}

	if s.profilerEnabled {
		s.prof = profiler.NewProfiler()
	}
	// Queue size of 256 accommodates typical handler counts with headroom.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)

	common.Logger().Info("sketch ready",
		"width", s.width,
		"height", s.height,
		"headless", s.cv == nil,
	)
	return s, nil
}

// initBackend brings up the canvas window and the GPU backend. A
// caller-supplied backend skips both the window and surface setup.
func (s *glazeSketch) initBackend() error {
	if s.prebuiltBackend != nil {
		s.backend = s.prebuiltBackend
		return nil
	}

	backendOpts := make([]gpu.BackendBuilderOption, 0, 4)
	if !s.headless {
		cv, err := canvas.NewCanvas(
			canvas.WithTitle(s.title),
			canvas.WithSize(s.width, s.height),
			canvas.WithResizable(s.resizableCanvas),
		)
		if err != nil {
			return err
		}
		s.cv = cv
		// The framebuffer may be larger than the requested window on
		// high-DPI displays; the sketch's pixel grid follows it.
		s.width = cv.Width()
		s.height = cv.Height()
		backendOpts = append(backendOpts, gpu.WithSurface(cv.SurfaceDescriptor()))

		cv.SetPointerMoveCallback(func(x, y float32) {
			s.mu.Lock()
			s.pointer.X = x
			s.pointer.Y = y
			s.mu.Unlock()
		})
		cv.SetPointerButtonCallback(func(pressed bool, x, y float32) {
			s.mu.Lock()
			s.pointer.X = x
			s.pointer.Y = y
			if pressed {
				s.pointer.Button = 1
			} else {
				s.pointer.Button = 0
			}
			s.mu.Unlock()
		})
	}
	if s.forceFallback {
		backendOpts = append(backendOpts, gpu.WithForceSoftwareRenderer(true))
	}
	if s.highPerformance {
		backendOpts = append(backendOpts, gpu.WithHighPerformanceAdapter())
	}
	if s.pendingPresentMode != nil {
		backendOpts = append(backendOpts, gpu.WithPresentMode(*s.pendingPresentMode))
	}

	backend, err := gpu.NewBackend(backendOpts...)
	if err != nil {
		if s.cv != nil {
			s.cv.Close()
		}
		return err
	}
	s.backend = backend

	if s.cv != nil {
		if err := s.backend.ConfigureSurface(s.cv.Width(), s.cv.Height()); err != nil {
			s.backend.Release()
			s.cv.Close()
			return err
		}
		s.cv.SetResizeCallback(func(width, height int) {
			// The surface follows the framebuffer; the sketch's pixel grid
			// does not, the present blit rescales.
			if err := s.backend.ConfigureSurface(width, height); err != nil {
				common.Logger().Warn("failed to reconfigure surface", "error", err)
			}
		})
	}
	return nil
}

// initWellKnown creates the four auto-detected resources: the pointer
// buffer, the clock buffer, and the output and feedback textures.
func (s *glazeSketch) initWellKnown() error {
	pointerStruct, err := layout.NewStruct("GlazePointer",
		layout.Field{Name: "pos", Type: layout.Vec2},
		layout.Field{Name: "button", Type: layout.Float},
	)
	if err != nil {
		return err
	}

	split, err := binding.NewBuffer(s.backend, "mouse", pointerStruct, pointerStruct.DefaultRecord())
	if err != nil {
		return err
	}
	s.pointerBuf, err = split.Buffer()
	if err != nil {
		return err
	}
	s.trackBuffer(s.pointerBuf)

	s.clockBuf, err = binding.NewValueBuffer(s.backend, "time", 0)
	if err != nil {
		return err
	}
	s.trackBuffer(s.clockBuf)

	s.outputTxtr, err = binding.NewTexture(s.backend, "renderTxtr", s.width, s.height, wgpu.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}
	s.trackTexture(s.outputTxtr)

	s.feedbackTxtr, err = binding.NewTexture(s.backend, "feedbackTxtr", s.width, s.height, wgpu.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}
	s.trackTexture(s.feedbackTxtr)
	return nil
}

// ensureNoiseBuffer lazily creates the shared noise offset buffer the
// first time a shader pulls in a noise-library block. Later calls are
// no-ops, so two shaders referencing noise share one buffer.
func (s *glazeSketch) ensureNoiseBuffer() {
	s.noiseOnce.Do(func() {
		buf, err := binding.NewValueBuffer(s.backend, "noiseOffsets",
			rand.Float32()*noiseOffsetScale,
			rand.Float32()*noiseOffsetScale,
			rand.Float32()*noiseOffsetScale,
		)
		if err != nil {
			common.Logger().Error("failed to create noise offset buffer", "error", err)
			return
		}
		s.noiseBuf = buf
		s.trackBuffer(buf)
	})
}

// env builds the assembler environment for the sketch's current size.
func (s *glazeSketch) env() shader.Env {
	return shader.Env{
		Width:       float32(s.width),
		Height:      float32(s.height),
		EnsureNoise: s.ensureNoiseBuffer,
	}
}

func (s *glazeSketch) Width() int {
	return s.width
}

func (s *glazeSketch) Height() int {
	return s.height
}

func (s *glazeSketch) Time() float32 {
	return float32(time.Since(s.start).Seconds())
}

func (s *glazeSketch) Pointer() common.PointerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer
}

func (s *glazeSketch) Backend() gpu.Backend {
	return s.backend
}

func (s *glazeSketch) Canvas() canvas.Canvas {
	return s.cv
}

func (s *glazeSketch) OutputTexture() *binding.Texture {
	return s.outputTxtr
}

func (s *glazeSketch) FeedbackTexture() *binding.Texture {
	return s.feedbackTxtr
}

func (s *glazeSketch) CreateBuffer(name string, structType *layout.Struct, records ...layout.Record) (binding.Split, error) {
	split, err := binding.NewBuffer(s.backend, name, structType, records...)
	if err != nil {
		return nil, err
	}
	for _, chunk := range split {
		s.trackBuffer(chunk)
	}
	return split, nil
}

func (s *glazeSketch) CreateValueBuffer(name string, values ...float32) (*binding.Buffer, error) {
	buf, err := binding.NewValueBuffer(s.backend, name, values...)
	if err != nil {
		return nil, err
	}
	s.trackBuffer(buf)
	return buf, nil
}

func (s *glazeSketch) CreateTexture(name string, width, height int, format wgpu.TextureFormat) (*binding.Texture, error) {
	txtr, err := binding.NewTexture(s.backend, name, width, height, format)
	if err != nil {
		return nil, err
	}
	s.trackTexture(txtr)
	return txtr, nil
}

func (s *glazeSketch) RunPasses(repeats int, passes ...pass.Pass) error {
	if s.backend == nil || !s.backend.Ready() {
		return fmt.Errorf("failed to run passes: %w", ErrDeviceNotReady)
	}
	if len(passes) == 0 {
		return nil
	}
	if repeats < 1 {
		repeats = 1
	}

	encoder, err := s.backend.CreateEncoder()
	if err != nil {
		return fmt.Errorf("failed to run passes: %w", err)
	}
	var encodeErr error
	for i := 0; i < repeats && encodeErr == nil; i++ {
		for j, p := range passes {
			if p == nil {
				encodeErr = fmt.Errorf("failed to run passes: entry %d: %w", j, pass.ErrInvalidPass)
				break
			}
			if err := p.Encode(encoder); err != nil {
				encodeErr = fmt.Errorf("failed to run passes: %w", err)
				break
			}
		}
	}
	if encodeErr != nil {
		if encoder != nil {
			encoder.Release()
		}
		return encodeErr
	}
	return s.backend.Submit(encoder)
}

func (s *glazeSketch) OnUpdate(handler func()) {
	if handler == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateHandlers = append(s.updateHandlers, handler)
}

func (s *glazeSketch) Run(frame func(s Sketch) error) error {
	if s.cv == nil {
		return fmt.Errorf("failed to run frame loop: %w", ErrNoCanvas)
	}
	if err := s.ensureBlitPipelines(); err != nil {
		return err
	}

	for s.cv.IsRunning() {
		if !s.cv.ProcessEvents() {
			break
		}

		if err := s.uploadFrameState(); err != nil {
			return err
		}
		s.runUpdateHandlers()

		if err := s.invokeFrame(frame); err != nil {
			return err
		}

		if err := s.presentFrame(); err != nil {
			// Transient surface losses (resize, occlusion) recover on the
			// next acquire; skip the frame rather than stop the sketch.
			common.Logger().Warn("skipping frame", "error", err)
			continue
		}

		if s.prof != nil {
			s.prof.Tick()
		}
	}
	return nil
}

func (s *glazeSketch) Quit() {
	s.quitOnce.Do(func() {
		if s.cv != nil {
			s.cv.RequestClose()
		}
	})
}

func (s *glazeSketch) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true

	for _, bg := range s.bindGroups {
		if bg != nil {
			bg.Release()
		}
	}
	for _, p := range s.computePipelines {
		if p != nil {
			p.Release()
		}
	}
	for _, p := range s.renderPipelines {
		if p != nil {
			p.Release()
		}
	}
	for _, buf := range s.ownedBuffers {
		buf.Release()
	}
	for _, txtr := range s.ownedTextures {
		txtr.Release()
	}
	if s.backend != nil {
		s.backend.Release()
	}
	if s.cv != nil {
		if err := s.cv.Close(); err != nil {
			common.Logger().Warn("failed to close canvas", "error", err)
		}
	}
}

// uploadFrameState writes the clock and pointer values for the coming
// frame. Updates land before any pass is encoded, so every pass in the
// frame observes the same values.
func (s *glazeSketch) uploadFrameState() error {
	if err := s.clockBuf.UpdateValues(s.Time()); err != nil {
		return fmt.Errorf("failed to upload clock: %w", err)
	}
	p := s.Pointer()
	err := s.pointerBuf.Update(layout.Record{
		"pos":    common.Vec2{X: p.X, Y: p.Y},
		"button": p.Button,
	})
	if err != nil {
		return fmt.Errorf("failed to upload pointer state: %w", err)
	}
	return nil
}

// runUpdateHandlers fans the registered handlers out to the worker pool
// and waits for all of them before the frame continues.
func (s *glazeSketch) runUpdateHandlers() {
	s.mu.Lock()
	handlers := s.updateHandlers
	s.mu.Unlock()
	if len(handlers) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i, handler := range handlers {
		wg.Add(1)
		h := handler
		s.updatePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				h()
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// invokeFrame runs the frame callback, converting a panic into an error
// so a broken sketch stops the loop instead of crashing the process.
func (s *glazeSketch) invokeFrame(frame func(s Sketch) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("frame callback panicked", "panic", r)
			err = fmt.Errorf("frame callback panicked: %v", r)
		}
	}()
	return frame(s)
}

// ensureBlitPipelines builds the two present pipelines on first use: one
// drawing the output texture to the surface, one copying it into the
// feedback texture.
func (s *glazeSketch) ensureBlitPipelines() error {
	if s.blitPipeline != nil {
		return nil
	}

	module, err := s.backend.CreateShaderModule("glaze blit", blitWGSL)
	if err != nil {
		return err
	}

	s.blitPipeline, err = s.backend.CreateRenderPipeline("glaze blit surface", module, s.backend.SurfaceFormat())
	if err != nil {
		module.Release()
		return err
	}
	s.trackRenderPipeline(s.blitPipeline)

	s.feedbackPipeline, err = s.backend.CreateRenderPipeline("glaze blit feedback", module, s.feedbackTxtr.Format())
	if err != nil {
		module.Release()
		return err
	}
	s.trackRenderPipeline(s.feedbackPipeline)
	module.Release()

	entries := []wgpu.BindGroupEntry{{Binding: 0, TextureView: s.outputTxtr.View()}}
	s.blitBindGroup, err = s.backend.CreateRenderBindGroup("glaze blit surface", s.blitPipeline, entries)
	if err != nil {
		return err
	}
	s.trackBindGroup(s.blitBindGroup)

	s.feedbackBindGroup, err = s.backend.CreateRenderBindGroup("glaze blit feedback", s.feedbackPipeline, entries)
	if err != nil {
		return err
	}
	s.trackBindGroup(s.feedbackBindGroup)
	return nil
}

// presentFrame blits the output texture to the acquired surface frame
// and into the feedback texture in one submission, then presents.
func (s *glazeSketch) presentFrame() error {
	view, err := s.backend.AcquireFrame()
	if err != nil {
		return err
	}

	encoder, err := s.backend.CreateEncoder()
	if err != nil {
		s.backend.Present()
		return err
	}

	surfaceBlit := pass.NewRender("glaze blit surface", s.blitPipeline, s.blitBindGroup, view)
	feedbackBlit := pass.NewRender("glaze blit feedback", s.feedbackPipeline, s.feedbackBindGroup, s.feedbackTxtr.View())
	if err := surfaceBlit.Encode(encoder); err != nil {
		encoder.Release()
		s.backend.Present()
		return err
	}
	if err := feedbackBlit.Encode(encoder); err != nil {
		encoder.Release()
		s.backend.Present()
		return err
	}
	if err := s.backend.Submit(encoder); err != nil {
		s.backend.Present()
		return err
	}

	s.backend.Present()
	return nil
}

// nextPassLabel numbers generated pass labels per kind.
func (s *glazeSketch) nextPassLabel(kind string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passCounter++
	return fmt.Sprintf("%s-%d", kind, s.passCounter)
}

func (s *glazeSketch) trackBuffer(buf *binding.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownedBuffers = append(s.ownedBuffers, buf)
}

func (s *glazeSketch) trackTexture(txtr *binding.Texture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownedTextures = append(s.ownedTextures, txtr)
}

func (s *glazeSketch) trackComputePipeline(p *wgpu.ComputePipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.computePipelines = append(s.computePipelines, p)
}

func (s *glazeSketch) trackRenderPipeline(p *wgpu.RenderPipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderPipelines = append(s.renderPipelines, p)
}

func (s *glazeSketch) trackBindGroup(bg *wgpu.BindGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindGroups = append(s.bindGroups, bg)
}
