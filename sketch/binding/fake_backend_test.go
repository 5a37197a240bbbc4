package binding

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/glazegpu/glaze/sketch/gpu"
)

// fakeBackend satisfies gpu.Backend without touching a device. It records
// allocation and write calls so tests can assert on chunk counts, labels, and
// byte lengths.
type fakeBackend struct {
	buffers  []fakeBufferCall
	textures []fakeTextureCall
	writes   []int
	readData []byte
}

type fakeBufferCall struct {
	label string
	size  int
	usage wgpu.BufferUsage
}

type fakeTextureCall struct {
	label         string
	width, height int
	format        wgpu.TextureFormat
	usage         wgpu.TextureUsage
}

var _ gpu.Backend = &fakeBackend{}

func (f *fakeBackend) Device() *wgpu.Device { return nil }

func (f *fakeBackend) Queue() *wgpu.Queue { return nil }

func (f *fakeBackend) Ready() bool { return true }

func (f *fakeBackend) HasSurface() bool { return false }

func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatRGBA8Unorm }

func (f *fakeBackend) ConfigureSurface(width, height int) error { return gpu.ErrNoSurface }

func (f *fakeBackend) SetPresentMode(mode gpu.PresentMode) {}

func (f *fakeBackend) AcquireFrame() (*wgpu.TextureView, error) { return nil, gpu.ErrNoSurface }

func (f *fakeBackend) Present() {}

func (f *fakeBackend) CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	f.buffers = append(f.buffers, fakeBufferCall{label: label, size: len(contents), usage: usage})
	return nil, nil
}

func (f *fakeBackend) CreateEmptyBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	f.buffers = append(f.buffers, fakeBufferCall{label: label, size: int(size), usage: usage})
	return nil, nil
}

func (f *fakeBackend) CreateTexture(label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	f.textures = append(f.textures, fakeTextureCall{label: label, width: width, height: height, format: format, usage: usage})
	return nil, nil, nil
}

func (f *fakeBackend) CreateShaderModule(label, source string) (*wgpu.ShaderModule, error) {
	return nil, nil
}

func (f *fakeBackend) CreateComputePipeline(label string, module *wgpu.ShaderModule, entryPoint string) (*wgpu.ComputePipeline, error) {
	return nil, nil
}

func (f *fakeBackend) CreateRenderPipeline(label string, module *wgpu.ShaderModule, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	return nil, nil
}

func (f *fakeBackend) CreateComputeBindGroup(label string, pipeline *wgpu.ComputePipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	return nil, nil
}

func (f *fakeBackend) CreateRenderBindGroup(label string, pipeline *wgpu.RenderPipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	return nil, nil
}

func (f *fakeBackend) CreateEncoder() (*wgpu.CommandEncoder, error) { return nil, nil }

func (f *fakeBackend) Submit(encoder *wgpu.CommandEncoder) error { return nil }

func (f *fakeBackend) WriteBuffer(buf *wgpu.Buffer, data []byte) {
	f.writes = append(f.writes, len(data))
}

func (f *fakeBackend) ReadBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	return f.readData, nil
}

func (f *fakeBackend) Release() {}
