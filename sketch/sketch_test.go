package sketch

import (
	"errors"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glazegpu/glaze/common"
	"github.com/glazegpu/glaze/sketch/pass"
)

// recordingPass appends its name to a shared log on every encode so tests
// can assert execution order without a device.
type recordingPass struct {
	name string
	log  *[]string
	err  error
}

func (p *recordingPass) Label() string { return p.name }

func (p *recordingPass) Encode(encoder *wgpu.CommandEncoder) error {
	if p.err != nil {
		return p.err
	}
	*p.log = append(*p.log, p.name)
	return nil
}

func TestNewSketchDefaults(t *testing.T) {
	f := newFakeBackend()
	s, err := NewSketch(WithBackend(f))
	require.NoError(t, err)
	t.Cleanup(s.Release)

	assert.Equal(t, 640, s.Width())
	assert.Equal(t, 480, s.Height())
	assert.Nil(t, s.Canvas())
	assert.Same(t, f, s.Backend())
	assert.Equal(t, common.PointerState{}, s.Pointer())
	assert.GreaterOrEqual(t, s.Time(), float32(0))
}

func TestNewSketchCreatesWellKnownResources(t *testing.T) {
	s, f := newTestSketch(t)

	assert.Contains(t, f.bufferLabels(), "mouse")
	assert.Contains(t, f.bufferLabels(), "time")

	require.Len(t, f.textures, 2)
	for i, want := range []string{"renderTxtr", "feedbackTxtr"} {
		assert.Equal(t, want, f.textures[i].label)
		assert.Equal(t, 64, f.textures[i].width)
		assert.Equal(t, 32, f.textures[i].height)
		assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, f.textures[i].format)
	}

	assert.Equal(t, "renderTxtr", s.OutputTexture().Name())
	assert.Equal(t, "feedbackTxtr", s.FeedbackTexture().Name())
}

func TestRunPassesEncodesInOrder(t *testing.T) {
	s, f := newTestSketch(t)

	var log []string
	a := &recordingPass{name: "a", log: &log}
	b := &recordingPass{name: "b", log: &log}
	c := &recordingPass{name: "c", log: &log}
	d := &recordingPass{name: "d", log: &log}

	err := s.RunPasses(2, a, pass.Group{b, c}, d)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "a", "b", "c", "d"}, log)
	assert.Equal(t, 1, f.encoders)
	assert.Equal(t, 1, f.submits)
}

func TestRunPassesFloorsRepeatsAtOne(t *testing.T) {
	s, f := newTestSketch(t)

	var log []string
	a := &recordingPass{name: "a", log: &log}

	require.NoError(t, s.RunPasses(0, a))
	assert.Equal(t, []string{"a"}, log)
	assert.Equal(t, 1, f.submits)
}

func TestRunPassesEmptyListIsNoop(t *testing.T) {
	s, f := newTestSketch(t)

	require.NoError(t, s.RunPasses(3))
	assert.Zero(t, f.encoders)
	assert.Zero(t, f.submits)
}

func TestRunPassesRequiresReadyDevice(t *testing.T) {
	s, f := newTestSketch(t)
	f.notReady = true

	var log []string
	a := &recordingPass{name: "a", log: &log}

	err := s.RunPasses(1, a)
	require.ErrorIs(t, err, ErrDeviceNotReady)
	assert.Empty(t, log)
	assert.Zero(t, f.encoders)
}

func TestRunPassesRejectsNilPass(t *testing.T) {
	s, f := newTestSketch(t)

	var log []string
	a := &recordingPass{name: "a", log: &log}

	err := s.RunPasses(1, a, nil)
	require.ErrorIs(t, err, pass.ErrInvalidPass)
	assert.Contains(t, err.Error(), "entry 1")
	assert.Equal(t, []string{"a"}, log)
	assert.Zero(t, f.submits)
}

func TestRunPassesPropagatesEncodeError(t *testing.T) {
	s, f := newTestSketch(t)

	boom := errors.New("boom")
	var log []string
	a := &recordingPass{name: "a", log: &log}
	b := &recordingPass{name: "b", log: &log, err: boom}
	c := &recordingPass{name: "c", log: &log}

	err := s.RunPasses(2, a, b, c)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, log)
	assert.Zero(t, f.submits)
}

func TestOnUpdateHandlersRunPerFrame(t *testing.T) {
	s, _ := newTestSketch(t)

	var mu sync.Mutex
	counts := make([]int, 3)
	for i := 0; i < 3; i++ {
		s.OnUpdate(func() {
			mu.Lock()
			counts[i]++
			mu.Unlock()
		})
	}
	s.OnUpdate(nil)

	s.runUpdateHandlers()
	s.runUpdateHandlers()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 2, 2}, counts)
}

func TestUploadFrameState(t *testing.T) {
	s, f := newTestSketch(t)

	s.mu.Lock()
	s.pointer = common.PointerState{X: 10, Y: 20, Button: 1}
	s.mu.Unlock()

	require.NoError(t, s.uploadFrameState())
	require.Len(t, f.writes, 2)

	clock := common.BytesToSlice[float32](f.writes[0])
	require.Len(t, clock, 1)
	assert.GreaterOrEqual(t, clock[0], float32(0))

	pointer := common.BytesToSlice[float32](f.writes[1])
	assert.Equal(t, []float32{10, 20, 1, 0}, pointer)
}

func TestRunWithoutCanvas(t *testing.T) {
	s, _ := newTestSketch(t)

	err := s.Run(func(Sketch) error { return nil })
	require.ErrorIs(t, err, ErrNoCanvas)
}

func TestInvokeFrameRecoversPanic(t *testing.T) {
	s, _ := newTestSketch(t)

	err := s.invokeFrame(func(Sketch) error { panic("kaboom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestInvokeFramePassesErrorThrough(t *testing.T) {
	s, _ := newTestSketch(t)

	boom := errors.New("boom")
	err := s.invokeFrame(func(Sketch) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestQuitWithoutCanvasIsSafe(t *testing.T) {
	s, _ := newTestSketch(t)
	s.Quit()
	s.Quit()
}

func TestReleaseIsIdempotent(t *testing.T) {
	s, _ := newTestSketch(t)
	s.Release()
	s.Release()
}

func TestBuilderOptions(t *testing.T) {
	s, _ := newTestSketch(t, WithProfiler(true), WithUpdateWorkers(2), WithTitle("demo"))

	assert.NotNil(t, s.prof)
	assert.Equal(t, 2, s.updateWorkers)
	assert.Equal(t, "demo", s.title)
}

func TestBuilderIgnoresInvalidValues(t *testing.T) {
	s, _ := newTestSketch(t, WithSize(0, -5), WithUpdateWorkers(0))

	assert.Equal(t, 64, s.Width())
	assert.Equal(t, 32, s.Height())
	assert.GreaterOrEqual(t, s.updateWorkers, 1)
}
