// Package binding provides the resource handles a pass binds into shader
// code: storage buffers packed from struct records or raw floats, and 2D
// textures with read/write binding views. Every handle knows how to emit its
// own WGSL binding declaration for a slot index and how to produce the
// matching bind group entry, which is what lets shader sources reference
// resources by bare name and have the declarations synthesized around them.
package binding

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrSizeMismatch reports an update whose packed byte length differs from
	// the buffer's allocation. Buffers never grow or shrink in place.
	ErrSizeMismatch = errors.New("update size differs from buffer size")
	// ErrChunked reports a single-handle access on a Split that holds more
	// than one chunk.
	ErrChunked = errors.New("buffer is split into multiple chunks")
)

// Binding is the capability a resource needs to participate in a pass: it can
// declare itself in WGSL for a binding slot and produce the matching bind
// group entry. Implemented by *Buffer, *TextureView, and Split.
type Binding interface {
	// Name returns the identifier shader code uses to reference the resource.
	Name() string

	// BindingCode returns the resource's complete WGSL binding declaration
	// line for the given group and slot.
	//
	// Parameters:
	//   - group: the bind group index
	//   - slot: the binding slot index within the group
	//
	// Returns:
	//   - string: one declaration statement, e.g.
	//     "@group(0) @binding(1) var<storage, read_write> particles: array<Particle>;"
	BindingCode(group, slot int) string

	// StructDeclaration returns the WGSL struct block the declaration depends
	// on, or an empty string for untyped resources.
	StructDeclaration() string

	// Entry returns the bind group entry binding the resource to the slot.
	//
	// Parameters:
	//   - slot: the binding slot index within the group
	//
	// Returns:
	//   - wgpu.BindGroupEntry: the entry for bind group creation
	Entry(slot uint32) wgpu.BindGroupEntry
}

// Split is the result of buffer creation: one chunk when the record count is
// under MaxChunkElements, several consecutive chunks otherwise. All chunks
// share one name and declaration, so a Split acts as a Binding by delegating
// to its first chunk; a Split holding more than one chunk is also the signal
// that fans a pass out into one pass per chunk.
type Split []*Buffer

var _ Binding = Split{}

// Buffer returns the sole chunk of an unsplit buffer.
//
// Returns:
//   - *Buffer: the single underlying buffer
//   - error: wraps ErrChunked when the data was split across several chunks
func (s Split) Buffer() (*Buffer, error) {
	if len(s) == 0 {
		return nil, errors.New("failed to unwrap split: no chunks")
	}
	if len(s) > 1 {
		return nil, fmt.Errorf("failed to unwrap split %q into %d chunks: %w", s.Name(), len(s), ErrChunked)
	}
	return s[0], nil
}

// Count returns the total element count across all chunks.
func (s Split) Count() int {
	total := 0
	for _, b := range s {
		total += b.Count()
	}
	return total
}

func (s Split) Name() string {
	if len(s) == 0 {
		return ""
	}
	return s[0].Name()
}

func (s Split) BindingCode(group, slot int) string {
	if len(s) == 0 {
		return ""
	}
	return s[0].BindingCode(group, slot)
}

func (s Split) StructDeclaration() string {
	if len(s) == 0 {
		return ""
	}
	return s[0].StructDeclaration()
}

func (s Split) Entry(slot uint32) wgpu.BindGroupEntry {
	if len(s) == 0 {
		return wgpu.BindGroupEntry{Binding: slot}
	}
	return s[0].Entry(slot)
}
