package gpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoSurface is returned by surface operations on a backend that was built headless.
	ErrNoSurface = errors.New("backend has no surface")
)

type wgpuBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeFifo (VSync)

	// Frame state for the currently acquired swapchain texture
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Builder state consumed during NewBackend
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	powerPreference      wgpu.PowerPreference
	deviceLabel          string
	pendingPresentMode   *PresentMode
}

type wgpuBackend interface {
	// Device returns the underlying WebGPU device handle.
	Device() *wgpu.Device

	// Queue returns the device's default submission queue.
	Queue() *wgpu.Queue

	// Ready reports whether the device and queue are available for use.
	Ready() bool

	// HasSurface reports whether the backend was built with a presentable surface.
	// A headless backend (no WithSurface option) returns false and all surface
	// operations return ErrNoSurface.
	HasSurface() bool

	// SurfaceFormat returns the texture format the surface was configured with.
	// Only valid after ConfigureSurface has been called; returns the zero format
	// before that.
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface configures the presentable surface for the given pixel
	// dimensions, choosing the adapter's preferred format and alpha mode. Must be
	// called before the first AcquireFrame and again whenever the window is resized.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: ErrNoSurface if the backend is headless
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode which controls how frames are
	// delivered to the display. A call to ConfigureSurface is required after
	// changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// AcquireFrame acquires the next swapchain texture and returns a view of it
	// for use as a render target. Must be paired with Present once the frame's
	// commands have been submitted.
	//
	// Returns:
	//   - *wgpu.TextureView: a view of the acquired swapchain texture
	//   - error: an error if the surface texture could not be acquired
	AcquireFrame() (*wgpu.TextureView, error)

	// Present presents the acquired surface texture to the display and releases
	// the swapchain references held since AcquireFrame. No-op when no frame is held.
	Present()

	// CreateBuffer creates a GPU buffer initialized with the given contents.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - contents: initial buffer contents; the buffer size equals len(contents)
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if buffer creation fails
	CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// CreateEmptyBuffer creates an uninitialized GPU buffer of the given size.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: buffer size in bytes
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if buffer creation fails
	CreateEmptyBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// CreateTexture creates a 2D texture and a default view of it.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - width: texture width in texels
	//   - height: texture height in texels
	//   - format: the texture format
	//   - usage: texture usage flags
	//
	// Returns:
	//   - *wgpu.Texture: the created texture (caller releases when done)
	//   - *wgpu.TextureView: the default view of the texture
	//   - error: an error if texture or view creation fails
	CreateTexture(label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateShaderModule compiles a WGSL source string into a shader module.
	//
	// Parameters:
	//   - label: debug label for the module
	//   - source: the WGSL source code
	//
	// Returns:
	//   - *wgpu.ShaderModule: the compiled module
	//   - error: an error if compilation fails
	CreateShaderModule(label, source string) (*wgpu.ShaderModule, error)

	// CreateComputePipeline creates a compute pipeline from the given module and
	// entry point. The pipeline layout is omitted so wgpu derives the bind group
	// layout from the shader; retrieve it with GetBindGroupLayout(0).
	//
	// Parameters:
	//   - label: debug label for the pipeline
	//   - module: the shader module containing the entry point
	//   - entryPoint: the compute entry point function name
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the created pipeline
	//   - error: an error if pipeline creation fails
	CreateComputePipeline(label string, module *wgpu.ShaderModule, entryPoint string) (*wgpu.ComputePipeline, error)

	// CreateRenderPipeline creates a render pipeline with vs_main and fs_main entry
	// points targeting a single color attachment of the given format. No vertex
	// buffers, no blending, no depth. The pipeline layout is omitted so wgpu derives
	// the bind group layout from the shaders.
	//
	// Parameters:
	//   - label: debug label for the pipeline
	//   - module: the shader module containing vs_main and fs_main
	//   - format: the color target format
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	//   - error: an error if pipeline creation fails
	CreateRenderPipeline(label string, module *wgpu.ShaderModule, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error)

	// CreateComputeBindGroup creates a bind group binding the given entries
	// against the pipeline's inferred group-zero layout.
	//
	// Parameters:
	//   - label: debug label for the bind group
	//   - pipeline: the compute pipeline whose layout the entries bind to
	//   - entries: the resource entries in binding order
	//
	// Returns:
	//   - *wgpu.BindGroup: the created bind group
	//   - error: an error if the pipeline is nil or bind group creation fails
	CreateComputeBindGroup(label string, pipeline *wgpu.ComputePipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error)

	// CreateRenderBindGroup creates a bind group binding the given entries
	// against the pipeline's inferred group-zero layout.
	//
	// Parameters:
	//   - label: debug label for the bind group
	//   - pipeline: the render pipeline whose layout the entries bind to
	//   - entries: the resource entries in binding order
	//
	// Returns:
	//   - *wgpu.BindGroup: the created bind group
	//   - error: an error if the pipeline is nil or bind group creation fails
	CreateRenderBindGroup(label string, pipeline *wgpu.RenderPipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error)

	// CreateEncoder creates a command encoder for recording GPU commands.
	//
	// Returns:
	//   - *wgpu.CommandEncoder: the created encoder
	//   - error: an error if encoder creation fails
	CreateEncoder() (*wgpu.CommandEncoder, error)

	// Submit finishes the encoder and submits the resulting command buffer to the
	// queue. The encoder is released whether or not submission succeeds.
	//
	// Parameters:
	//   - encoder: the command encoder to finish and submit
	//
	// Returns:
	//   - error: an error if the encoder could not be finished
	Submit(encoder *wgpu.CommandEncoder) error

	// WriteBuffer schedules a write of data into buf at offset zero via the queue.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - data: the bytes to write
	WriteBuffer(buf *wgpu.Buffer, data []byte)

	// ReadBuffer copies size bytes from src into a staging buffer, waits for the
	// GPU, and returns the contents. Blocks until the copy completes.
	//
	// Parameters:
	//   - src: the source buffer; must have CopySrc usage
	//   - size: the number of bytes to read
	//
	// Returns:
	//   - []byte: the buffer contents
	//   - error: an error if the copy or mapping fails
	ReadBuffer(src *wgpu.Buffer, size uint64) ([]byte, error)

	// Release releases all GPU resources held by the backend. The backend must not
	// be used after Release.
	Release()
}

var _ Backend = &wgpuBackendImpl{}

// NewBackend creates a Backend and brings up the WebGPU stack: instance, optional
// surface, adapter, device, and queue. Options are applied before any GPU calls so
// config flags (e.g. forceFallbackAdapter) are available when the adapter is
// requested. Without WithSurface the backend runs headless, the mode used for
// offline generators and tests.
//
// Parameters:
//   - opts: optional BackendBuilderOptions to configure the backend
//
// Returns:
//   - Backend: the initialized backend
//   - error: an error if no suitable adapter or device is available
func NewBackend(opts ...BackendBuilderOption) (Backend, error) {
	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		deviceLabel: "Sketch Device",
	}
	for _, opt := range opts {
		opt(b)
	}

	runtime.LockOSThread()
	b.instance = wgpu.CreateInstance(nil)
	if b.surfaceDescriptor != nil {
		b.surface = b.instance.CreateSurface(b.surfaceDescriptor)
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
		PowerPreference:      b.powerPreference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request GPU adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request GPU device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if b.pendingPresentMode != nil {
		b.SetPresentMode(*b.pendingPresentMode)
		b.pendingPresentMode = nil
	}

	return b, nil
}

func (b *wgpuBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuBackendImpl) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device != nil && b.queue != nil
}

func (b *wgpuBackendImpl) HasSurface() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface != nil
}

func (b *wgpuBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()

	var format wgpu.TextureFormat
	if b.surfaceFormat != nil {
		format = *b.surfaceFormat
	}
	return format
}

func (b *wgpuBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return ErrNoSurface
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	return nil
}

func (b *wgpuBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuBackendImpl) AcquireFrame() (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return nil, ErrNoSurface
	}

	// If a previous frame's surface texture is still held, avoid acquiring
	// another one. wgpu-native reports "Surface image is already acquired"
	// when frames overlap.
	if b.frameSurface != nil {
		return nil, errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}

	b.frameSurface = surfaceTexture
	b.frameView = view

	return view, nil
}

func (b *wgpuBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackendImpl) CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuBackendImpl) CreateEmptyBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	return buf, nil
}

func (b *wgpuBackendImpl) CreateTexture(label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, nil, fmt.Errorf("failed to create view for texture %q: %w", label, err)
	}

	return texture, view, nil
}

func (b *wgpuBackendImpl) CreateShaderModule(label, source string) (*wgpu.ShaderModule, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", label, err)
	}
	return module, nil
}

func (b *wgpuBackendImpl) CreateComputePipeline(label string, module *wgpu.ShaderModule, entryPoint string) (*wgpu.ComputePipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: label,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create compute pipeline %q: %w", label, err)
	}
	return created, nil
}

func (b *wgpuBackendImpl) CreateRenderPipeline(label string, module *wgpu.ShaderModule, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: label,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", label, err)
	}
	return created, nil
}

func (b *wgpuBackendImpl) CreateComputeBindGroup(label string, pipeline *wgpu.ComputePipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("failed to create bind group %q: pipeline is nil", label)
	}
	return b.createBindGroup(label, pipeline.GetBindGroupLayout(0), entries)
}

func (b *wgpuBackendImpl) CreateRenderBindGroup(label string, pipeline *wgpu.RenderPipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("failed to create bind group %q: pipeline is nil", label)
	}
	return b.createBindGroup(label, pipeline.GetBindGroupLayout(0), entries)
}

func (b *wgpuBackendImpl) createBindGroup(label string, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", label, err)
	}
	return bindGroup, nil
}

func (b *wgpuBackendImpl) CreateEncoder() (*wgpu.CommandEncoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	return encoder, nil
}

func (b *wgpuBackendImpl) Submit(encoder *wgpu.CommandEncoder) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	encoder.Release()

	return nil
}

func (b *wgpuBackendImpl) WriteBuffer(buf *wgpu.Buffer, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.queue.WriteBuffer(buf, 0, data)
}

func (b *wgpuBackendImpl) ReadBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Readback Staging",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create readback encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, fmt.Errorf("failed to finish readback encoder: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	done := make(chan struct{})
	var mapStatus wgpu.BufferMapAsyncStatus
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		mapStatus = status
		close(done)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	b.device.Poll(true, nil)
	<-done

	if mapStatus != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("failed to map staging buffer: status %v", mapStatus)
	}

	mapped := staging.GetMappedRange(0, uint(size))
	out := make([]byte, len(mapped))
	copy(out, mapped)
	staging.Unmap()

	return out, nil
}

func (b *wgpuBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
