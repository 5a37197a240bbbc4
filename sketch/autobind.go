package sketch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/glazegpu/glaze/sketch/binding"
	"github.com/glazegpu/glaze/sketch/pass"
	"github.com/glazegpu/glaze/sketch/shader"
)

// Well-known resource references are detected textually on whole-word
// boundaries, so mouse.pos and mouse both match while mousetrap does not.
// The scan can misfire on comments that spell a resource name; the cost is
// an extra binding, not a broken shader.
var (
	mouseRef    = regexp.MustCompile(`\bmouse\b`)
	timeRef     = regexp.MustCompile(`\btime\b`)
	renderRef   = regexp.MustCompile(`\brenderTxtr\b`)
	feedbackRef = regexp.MustCompile(`\bfeedbackTxtr\b`)
	noiseRef    = regexp.MustCompile(`\bnoiseOffsets\b`)
)

// resolveBindings appends the well-known resources the source references to
// the explicit binding list, skipping names already present. Explicit
// bindings keep their caller-assigned slots; resolved ones follow in a fixed
// order so the generated declarations are stable between runs.
func (s *glazeSketch) resolveBindings(source string, explicit []binding.Binding) []binding.Binding {
	resolved := make([]binding.Binding, 0, len(explicit)+5)
	resolved = append(resolved, explicit...)

	autos := []struct {
		pattern *regexp.Regexp
		bind    binding.Binding
	}{
		{mouseRef, s.pointerBuf},
		{timeRef, s.clockBuf},
		{renderRef, s.outputTxtr.Write()},
		{feedbackRef, s.feedbackTxtr.Read()},
	}
	for _, auto := range autos {
		if !auto.pattern.MatchString(source) || containsName(resolved, auto.bind.Name()) {
			continue
		}
		resolved = append(resolved, auto.bind)
	}

	// The noise offset buffer exists once the assembler injected a noise
	// block, which is also the only producer of noiseOffsets references.
	if s.noiseBuf != nil && noiseRef.MatchString(source) && !containsName(resolved, s.noiseBuf.Name()) {
		resolved = append(resolved, s.noiseBuf)
	}
	return resolved
}

// containsName reports whether a binding with the name is already listed.
func containsName(list []binding.Binding, name string) bool {
	for _, b := range list {
		if b != nil && b.Name() == name {
			return true
		}
	}
	return false
}

// composeSource builds the final shader text: struct declarations first,
// de-duplicated by their generated text so two buffers of one struct type
// declare it once, then one binding line per slot, then the program body.
func composeSource(resolved []binding.Binding, body string) string {
	var sb strings.Builder
	seen := make(map[string]struct{})
	for _, b := range resolved {
		decl := b.StructDeclaration()
		if decl == "" {
			continue
		}
		if _, ok := seen[decl]; ok {
			continue
		}
		seen[decl] = struct{}{}
		sb.WriteString(decl)
		sb.WriteString("\n")
	}
	for slot, b := range resolved {
		sb.WriteString(b.BindingCode(0, slot))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(body)
	return sb.String()
}

// bindingEntries maps each resolved binding to its slot's bind group entry.
func bindingEntries(resolved []binding.Binding) []wgpu.BindGroupEntry {
	entries := make([]wgpu.BindGroupEntry, len(resolved))
	for slot, b := range resolved {
		entries[slot] = b.Entry(uint32(slot))
	}
	return entries
}

func (s *glazeSketch) Compute(body string, bindings []binding.Binding, x, y, z uint32) (pass.Pass, error) {
	return s.buildComputePass(body, bindings, x, y, z)
}

func (s *glazeSketch) ComputeSurface(body string, bindings ...binding.Binding) (pass.Pass, error) {
	return s.buildComputePass(body, bindings, uint32(s.width), uint32(s.height), 1)
}

func (s *glazeSketch) ComputeFor(over binding.Split, body string, bindings ...binding.Binding) (pass.Pass, error) {
	if len(over) == 0 {
		return nil, fmt.Errorf("failed to build compute pass: element buffer is empty: %w", pass.ErrInvalidPass)
	}
	list := make([]binding.Binding, 0, len(bindings)+1)
	list = append(list, over)
	list = append(list, bindings...)
	return s.buildComputePass(body, list, uint32(over.Count()), 1, 1)
}

// buildComputePass assembles the body into a complete program, resolves
// bindings, compiles one pipeline, and produces either a single pass or,
// when one binding is a chunked buffer, a group with one pass per chunk
// sharing the pipeline. Each chunk pass dispatches across its own element
// count; the requested workgroup counts apply to the unchunked case.
func (s *glazeSketch) buildComputePass(body string, explicit []binding.Binding, x, y, z uint32) (pass.Pass, error) {
	label := s.nextPassLabel("compute")
	if s.backend == nil || !s.backend.Ready() {
		return nil, fmt.Errorf("failed to build compute pass %q: %w", label, ErrDeviceNotReady)
	}
	for i, b := range explicit {
		if b == nil {
			return nil, fmt.Errorf("failed to build compute pass %q: binding %d is nil: %w", label, i, pass.ErrInvalidPass)
		}
	}

	program := shader.Assemble(body, s.env())
	resolved := s.resolveBindings(program, explicit)

	fanSlot := -1
	var fan binding.Split
	for slot, b := range resolved {
		split, ok := b.(binding.Split)
		if !ok || len(split) < 2 {
			continue
		}
		if fan != nil {
			return nil, fmt.Errorf("failed to build compute pass %q: %q and %q: %w",
				label, fan.Name(), split.Name(), ErrMultipleSplits)
		}
		fanSlot = slot
		fan = split
	}

	source := composeSource(resolved, program)
	module, err := s.backend.CreateShaderModule(label, source)
	if err != nil {
		return nil, fmt.Errorf("failed to build compute pass %q: %w", label, err)
	}
	pipeline, err := s.backend.CreateComputePipeline(label, module, "main")
	if module != nil {
		module.Release()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build compute pass %q: %w", label, err)
	}
	s.trackComputePipeline(pipeline)

	if fan == nil {
		// A program with no bindings has no group-zero layout to bind
		// against; the pass then encodes without a bind group.
		var bindGroup *wgpu.BindGroup
		if len(resolved) > 0 {
			bindGroup, err = s.backend.CreateComputeBindGroup(label, pipeline, bindingEntries(resolved))
			if err != nil {
				return nil, fmt.Errorf("failed to build compute pass %q: %w", label, err)
			}
			s.trackBindGroup(bindGroup)
		}
		return pass.NewCompute(label, pipeline, bindGroup, x, y, z), nil
	}

	group := make(pass.Group, 0, len(fan))
	for i, chunk := range fan {
		entries := bindingEntries(resolved)
		entries[fanSlot] = chunk.Entry(uint32(fanSlot))

		chunkLabel := fmt.Sprintf("%s.%d", label, i)
		bindGroup, err := s.backend.CreateComputeBindGroup(chunkLabel, pipeline, entries)
		if err != nil {
			return nil, fmt.Errorf("failed to build compute pass %q: %w", chunkLabel, err)
		}
		s.trackBindGroup(bindGroup)
		group = append(group, pass.NewCompute(chunkLabel, pipeline, bindGroup, uint32(chunk.Count()), 1, 1))
	}
	return group, nil
}

func (s *glazeSketch) Render(target *binding.Texture, source string, bindings ...binding.Binding) (pass.Pass, error) {
	label := s.nextPassLabel("render")
	if s.backend == nil || !s.backend.Ready() {
		return nil, fmt.Errorf("failed to build render pass %q: %w", label, ErrDeviceNotReady)
	}
	if target == nil {
		target = s.outputTxtr
	}
	for i, b := range bindings {
		if b == nil {
			return nil, fmt.Errorf("failed to build render pass %q: binding %d is nil: %w", label, i, pass.ErrInvalidPass)
		}
	}

	// Render sources carry their own vertex and fragment entry points, so
	// they receive substitution and noise injection but no synthesis.
	program := shader.Expand(source, s.env())
	resolved := s.resolveBindings(program, bindings)
	for _, b := range resolved {
		if split, ok := b.(binding.Split); ok && len(split) > 1 {
			return nil, fmt.Errorf("failed to build render pass %q: binding %q: %w",
				label, split.Name(), binding.ErrChunked)
		}
	}

	full := composeSource(resolved, program)
	module, err := s.backend.CreateShaderModule(label, full)
	if err != nil {
		return nil, fmt.Errorf("failed to build render pass %q: %w", label, err)
	}
	pipeline, err := s.backend.CreateRenderPipeline(label, module, target.Format())
	if module != nil {
		module.Release()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build render pass %q: %w", label, err)
	}
	s.trackRenderPipeline(pipeline)

	var bindGroup *wgpu.BindGroup
	if len(resolved) > 0 {
		bindGroup, err = s.backend.CreateRenderBindGroup(label, pipeline, bindingEntries(resolved))
		if err != nil {
			return nil, fmt.Errorf("failed to build render pass %q: %w", label, err)
		}
		s.trackBindGroup(bindGroup)
	}
	return pass.NewRender(label, pipeline, bindGroup, target.View()), nil
}
