package sketch

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"

	"github.com/glazegpu/glaze/sketch/gpu"
)

// fakeBackend records every device call so tests can assert on generated
// shader sources, pipeline formats, bind group entries, and submissions
// without a GPU. All returned handles are nil; the sketch treats them as
// opaque and never dereferences handles it did not create itself.
type fakeBackend struct {
	notReady bool

	sources          map[string]string
	sourceOrder      []string
	computePipelines []fakePipelineCall
	renderPipelines  []fakeRenderPipelineCall
	bindGroups       []fakeBindGroupCall
	buffers          []fakeBufferCall
	textures         []fakeTextureCall
	writes           [][]byte
	readData         []byte
	encoders         int
	submits          int
}

type fakePipelineCall struct {
	label      string
	entryPoint string
}

type fakeRenderPipelineCall struct {
	label  string
	format wgpu.TextureFormat
}

type fakeBindGroupCall struct {
	label   string
	entries []wgpu.BindGroupEntry
}

type fakeBufferCall struct {
	label string
	size  uint64
}

type fakeTextureCall struct {
	label  string
	width  int
	height int
	format wgpu.TextureFormat
}

var _ gpu.Backend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sources: map[string]string{}}
}

func (f *fakeBackend) Device() *wgpu.Device { return nil }

func (f *fakeBackend) Queue() *wgpu.Queue { return nil }

func (f *fakeBackend) Ready() bool { return !f.notReady }

func (f *fakeBackend) HasSurface() bool { return false }

func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }

func (f *fakeBackend) ConfigureSurface(width, height int) error { return gpu.ErrNoSurface }

func (f *fakeBackend) SetPresentMode(mode gpu.PresentMode) {}

func (f *fakeBackend) AcquireFrame() (*wgpu.TextureView, error) { return nil, gpu.ErrNoSurface }

func (f *fakeBackend) Present() {}

func (f *fakeBackend) CreateBuffer(label string, contents []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	f.buffers = append(f.buffers, fakeBufferCall{label: label, size: uint64(len(contents))})
	return nil, nil
}

func (f *fakeBackend) CreateEmptyBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	f.buffers = append(f.buffers, fakeBufferCall{label: label, size: size})
	return nil, nil
}

func (f *fakeBackend) CreateTexture(label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	f.textures = append(f.textures, fakeTextureCall{label: label, width: width, height: height, format: format})
	return nil, nil, nil
}

func (f *fakeBackend) CreateShaderModule(label, source string) (*wgpu.ShaderModule, error) {
	f.sources[label] = source
	f.sourceOrder = append(f.sourceOrder, label)
	return nil, nil
}

func (f *fakeBackend) CreateComputePipeline(label string, module *wgpu.ShaderModule, entryPoint string) (*wgpu.ComputePipeline, error) {
	f.computePipelines = append(f.computePipelines, fakePipelineCall{label: label, entryPoint: entryPoint})
	return nil, nil
}

func (f *fakeBackend) CreateRenderPipeline(label string, module *wgpu.ShaderModule, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	f.renderPipelines = append(f.renderPipelines, fakeRenderPipelineCall{label: label, format: format})
	return nil, nil
}

func (f *fakeBackend) CreateComputeBindGroup(label string, pipeline *wgpu.ComputePipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	copied := make([]wgpu.BindGroupEntry, len(entries))
	copy(copied, entries)
	f.bindGroups = append(f.bindGroups, fakeBindGroupCall{label: label, entries: copied})
	return nil, nil
}

func (f *fakeBackend) CreateRenderBindGroup(label string, pipeline *wgpu.RenderPipeline, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	copied := make([]wgpu.BindGroupEntry, len(entries))
	copy(copied, entries)
	f.bindGroups = append(f.bindGroups, fakeBindGroupCall{label: label, entries: copied})
	return nil, nil
}

func (f *fakeBackend) CreateEncoder() (*wgpu.CommandEncoder, error) {
	f.encoders++
	return nil, nil
}

func (f *fakeBackend) Submit(encoder *wgpu.CommandEncoder) error {
	f.submits++
	return nil
}

func (f *fakeBackend) WriteBuffer(buf *wgpu.Buffer, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)
	f.writes = append(f.writes, copied)
}

func (f *fakeBackend) ReadBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	if f.readData != nil {
		return f.readData, nil
	}
	return make([]byte, size), nil
}

func (f *fakeBackend) Release() {}

// source returns the shader text compiled under the label, or an empty
// string when no such module was created.
func (f *fakeBackend) source(label string) string { return f.sources[label] }

// bufferLabels returns the labels of every created buffer, in order.
func (f *fakeBackend) bufferLabels() []string {
	labels := make([]string, 0, len(f.buffers))
	for _, b := range f.buffers {
		labels = append(labels, b.label)
	}
	return labels
}

// bufferCount returns how many buffers were created under the label.
func (f *fakeBackend) bufferCount(label string) int {
	n := 0
	for _, b := range f.buffers {
		if b.label == label {
			n++
		}
	}
	return n
}

// newTestSketch builds a sketch against a fresh recording backend. The
// default 64x32 grid keeps surface dispatch assertions readable.
func newTestSketch(t *testing.T, options ...SketchBuilderOption) (*glazeSketch, *fakeBackend) {
	t.Helper()
	f := newFakeBackend()
	opts := append([]SketchBuilderOption{WithBackend(f), WithSize(64, 32)}, options...)
	s, err := NewSketch(opts...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s.(*glazeSketch), f
}
