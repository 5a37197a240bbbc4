// Package pass describes units of GPU work that a sketch submits each
// frame. A pass records itself into a command encoder; it holds no
// device state of its own and may be encoded any number of times, so a
// pass list built once can drive every frame of a run.
package pass

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/glazegpu/glaze/common"
)

var (
	// ErrInvalidPass is returned when a pass list contains a nil entry or a
	// pass is missing the pipeline or target it needs to encode.
	ErrInvalidPass = errors.New("pass is nil or incomplete")
)

// Pass is a single schedulable unit of GPU work.
type Pass interface {
	// Label returns the debug label the pass was created with.
	//
	// Returns:
	//   - string: the label supplied at construction.
	Label() string

	// Encode records the pass into the given command encoder. Encoding does
	// not submit any work; the caller owns the encoder and decides when the
	// recorded commands reach the queue.
	//
	// Parameters:
	//   - encoder: the command encoder to record into.
	//
	// Returns:
	//   - error: an error if the pass cannot be encoded.
	Encode(encoder *wgpu.CommandEncoder) error
}

// ComputePass dispatches a compute pipeline over a fixed workgroup grid.
type ComputePass struct {
	label     string
	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup
	groupsX   uint32
	groupsY   uint32
	groupsZ   uint32
}

var _ Pass = &ComputePass{}

// NewCompute creates a pass that dispatches the given pipeline with the
// given bind group. The pipeline and bind group stay owned by whoever
// created them; encoding the pass does not retain or release them.
//
// Parameters:
//   - label: debug label for the pass.
//   - pipeline: the compute pipeline to dispatch.
//   - bindGroup: the bind group for group 0, or nil when the shader binds
//     nothing.
//   - x, y, z: workgroup counts along each axis.
//
// Returns:
//   - *ComputePass: the constructed pass.
func NewCompute(label string, pipeline *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, x, y, z uint32) *ComputePass {
	return &ComputePass{
		label:     label,
		pipeline:  pipeline,
		bindGroup: bindGroup,
		groupsX:   x,
		groupsY:   y,
		groupsZ:   z,
	}
}

func (p *ComputePass) Label() string {
	return p.label
}

// Workgroups returns the dispatch dimensions along x, y and z.
func (p *ComputePass) Workgroups() (uint32, uint32, uint32) {
	return p.groupsX, p.groupsY, p.groupsZ
}

func (p *ComputePass) Encode(encoder *wgpu.CommandEncoder) error {
	if p.pipeline == nil {
		return fmt.Errorf("failed to encode compute pass %q: %w", p.label, ErrInvalidPass)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.pipeline)
	if p.bindGroup != nil {
		pass.SetBindGroup(0, p.bindGroup, nil)
	}
	pass.DispatchWorkgroups(p.groupsX, p.groupsY, p.groupsZ)
	pass.End()
	pass.Release()
	common.Logger().Debug("encoded compute pass",
		"label", p.label,
		"workgroups_x", p.groupsX,
		"workgroups_y", p.groupsY,
		"workgroups_z", p.groupsZ,
	)
	return nil
}

// RenderPass draws a full-target triangle with a render pipeline. The
// fragment shader decides every pixel of the target, so the pass clears
// to opaque black before drawing purely to keep the attachment load
// well defined.
type RenderPass struct {
	label     string
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	target    *wgpu.TextureView
}

var _ Pass = &RenderPass{}

// NewRender creates a pass that draws a single full-target triangle into
// the given texture view. As with compute passes, ownership of the
// pipeline, bind group and target stays with the caller.
//
// Parameters:
//   - label: debug label for the pass.
//   - pipeline: the render pipeline to draw with.
//   - bindGroup: the bind group for group 0, or nil when the shader binds
//     nothing.
//   - target: the texture view to render into.
//
// Returns:
//   - *RenderPass: the constructed pass.
func NewRender(label string, pipeline *wgpu.RenderPipeline, bindGroup *wgpu.BindGroup, target *wgpu.TextureView) *RenderPass {
	return &RenderPass{
		label:     label,
		pipeline:  pipeline,
		bindGroup: bindGroup,
		target:    target,
	}
}

func (p *RenderPass) Label() string {
	return p.label
}

// Target returns the texture view the pass renders into.
func (p *RenderPass) Target() *wgpu.TextureView {
	return p.target
}

func (p *RenderPass) Encode(encoder *wgpu.CommandEncoder) error {
	if p.pipeline == nil || p.target == nil {
		return fmt.Errorf("failed to encode render pass %q: %w", p.label, ErrInvalidPass)
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       p.target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	pass.SetPipeline(p.pipeline)
	if p.bindGroup != nil {
		pass.SetBindGroup(0, p.bindGroup, nil)
	}
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()
	common.Logger().Debug("encoded render pass", "label", p.label)
	return nil
}

// Group encodes a sequence of passes in order. Groups may nest, so a
// frame step built from smaller steps stays a single Pass value.
type Group []Pass

var _ Pass = Group{}

func (g Group) Label() string {
	return "group"
}

func (g Group) Encode(encoder *wgpu.CommandEncoder) error {
	for i, p := range g {
		if p == nil {
			return fmt.Errorf("failed to encode group member %d: %w", i, ErrInvalidPass)
		}
		if err := p.Encode(encoder); err != nil {
			return err
		}
	}
	return nil
}
