package binding

import (
	"errors"
	"fmt"

	"github.com/glazegpu/glaze/common"
	"github.com/glazegpu/glaze/sketch/gpu"
	"github.com/glazegpu/glaze/sketch/layout"

	"github.com/cogentcore/webgpu/wgpu"
)

// MaxChunkElements is the per-buffer element ceiling. Creating a buffer from
// more records than this splits the data into consecutive chunks of at most
// this many elements, each backed by its own device buffer.
const MaxChunkElements = 65000

const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

// Buffer is one device-side storage allocation. A struct-typed buffer packs
// host records against a layout.Struct and declares itself by the struct's
// name; an untyped buffer holds raw floats and declares an inferred scalar or
// vector type from its size. Buffers are created through NewBuffer or
// NewValueBuffer and never reallocate.
type Buffer struct {
	name       string
	structType *layout.Struct
	count      int
	elemFloats int
	isArray    bool
	size       uint64
	handle     *wgpu.Buffer
	backend    gpu.Backend
}

var _ Binding = &Buffer{}

// NewBuffer packs records against a struct layout into one or more storage
// buffers. Fewer than MaxChunkElements records produce a Split of length 1;
// more are cut into consecutive chunks, each carrying its own element count,
// with counts summing to len(records).
//
// Parameters:
//   - backend: the GPU backend that owns the allocation
//   - name: the identifier shader code uses for the buffer
//   - structType: the element layout; frozen against Add by this call
//   - records: one record per element, at least one
//
// Returns:
//   - Split: the created chunk handles
//   - error: a validation error before any device call, a pack error, or a
//     wrapped device error from buffer creation
func NewBuffer(backend gpu.Backend, name string, structType *layout.Struct, records ...layout.Record) (Split, error) {
	if backend == nil {
		return nil, fmt.Errorf("failed to create buffer %q: backend must not be nil", name)
	}
	if name == "" {
		return nil, errors.New("failed to create buffer: name must not be empty")
	}
	if structType == nil {
		return nil, fmt.Errorf("failed to create buffer %q: struct layout must not be nil", name)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to create buffer %q: at least one record is required", name)
	}

	var split Split
	for start := 0; start < len(records); start += MaxChunkElements {
		end := min(start+MaxChunkElements, len(records))
		chunk := records[start:end]

		flat, err := structType.Pack(chunk...)
		if err != nil {
			return nil, fmt.Errorf("failed to create buffer %q: %w", name, err)
		}
		data := common.SliceToBytes(flat)

		label := name
		if len(records) > MaxChunkElements {
			label = fmt.Sprintf("%s.%d", name, len(split))
		}
		handle, err := backend.CreateBuffer(label, data, storageUsage)
		if err != nil {
			return nil, err
		}

		split = append(split, &Buffer{
			name:       name,
			structType: structType,
			count:      len(chunk),
			elemFloats: structType.SizeFloats(),
			isArray:    len(records) > 1,
			size:       uint64(len(data)),
			handle:     handle,
			backend:    backend,
		})
	}
	return split, nil
}

// NewValueBuffer creates one storage buffer from raw float data with no
// struct layout. One to four values declare as f32 through vec4<f32> by size;
// any other length declares as an unbounded array<f32> with one element per
// value. Raw buffers are never chunked.
//
// Parameters:
//   - backend: the GPU backend that owns the allocation
//   - name: the identifier shader code uses for the buffer
//   - values: the initial contents, at least one value
//
// Returns:
//   - *Buffer: the created buffer
//   - error: a validation error before any device call or a wrapped device
//     error from buffer creation
func NewValueBuffer(backend gpu.Backend, name string, values ...float32) (*Buffer, error) {
	if backend == nil {
		return nil, fmt.Errorf("failed to create buffer %q: backend must not be nil", name)
	}
	if name == "" {
		return nil, errors.New("failed to create buffer: name must not be empty")
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("failed to create buffer %q: at least one value is required", name)
	}

	data := common.SliceToBytes(values)
	handle, err := backend.CreateBuffer(name, data, storageUsage)
	if err != nil {
		return nil, err
	}

	b := &Buffer{
		name:       name,
		count:      1,
		elemFloats: len(values),
		size:       uint64(len(data)),
		handle:     handle,
		backend:    backend,
	}
	if len(values) > 4 {
		b.isArray = true
		b.count = len(values)
		b.elemFloats = 1
	}
	return b, nil
}

// Name returns the identifier shader code uses for the buffer.
func (b *Buffer) Name() string { return b.name }

// Count returns the number of elements in this buffer. For a chunk of a split
// buffer this is the chunk's own count, which is also its dispatch size.
func (b *Buffer) Count() int { return b.count }

// SizeBytes returns the allocation size in bytes.
func (b *Buffer) SizeBytes() uint64 { return b.size }

// Handle returns the underlying device buffer.
func (b *Buffer) Handle() *wgpu.Buffer { return b.handle }

// Update re-packs records against the buffer's struct layout and schedules an
// in-place write. The packed byte length must match the allocation exactly;
// there is no growth path.
//
// Parameters:
//   - records: one record per element, matching the creation count
//
// Returns:
//   - error: when the buffer is untyped, packing fails, or the packed length
//     differs from the allocation (wraps ErrSizeMismatch)
func (b *Buffer) Update(records ...layout.Record) error {
	if b.structType == nil {
		return fmt.Errorf("failed to update buffer %q: buffer has no struct layout", b.name)
	}
	flat, err := b.structType.Pack(records...)
	if err != nil {
		return fmt.Errorf("failed to update buffer %q: %w", b.name, err)
	}
	return b.write(common.SliceToBytes(flat))
}

// UpdateValues schedules an in-place write of raw float data. The byte length
// must match the allocation exactly.
//
// Parameters:
//   - values: the new contents, one float per existing float
//
// Returns:
//   - error: when the length differs from the allocation (wraps ErrSizeMismatch)
func (b *Buffer) UpdateValues(values ...float32) error {
	return b.write(common.SliceToBytes(values))
}

func (b *Buffer) write(data []byte) error {
	if uint64(len(data)) != b.size {
		return fmt.Errorf("failed to update buffer %q: %d bytes against a %d-byte allocation: %w",
			b.name, len(data), b.size, ErrSizeMismatch)
	}
	b.backend.WriteBuffer(b.handle, data)
	return nil
}

// Read copies the buffer back to the host and returns its contents as floats.
// Blocks until the device finishes the copy.
//
// Returns:
//   - []float32: the buffer contents, filler fields included
//   - error: a wrapped device error from the readback
func (b *Buffer) Read() ([]float32, error) {
	data, err := b.backend.ReadBuffer(b.handle, b.size)
	if err != nil {
		return nil, fmt.Errorf("failed to read buffer %q: %w", b.name, err)
	}
	return common.BytesToSlice[float32](data), nil
}

// ReadRecords reads the buffer back and unpacks it into one record per
// element through the buffer's struct layout.
//
// Returns:
//   - []layout.Record: one record per element, filler fields omitted
//   - error: when the buffer is untyped or the readback fails
func (b *Buffer) ReadRecords() ([]layout.Record, error) {
	if b.structType == nil {
		return nil, fmt.Errorf("failed to read buffer %q: buffer has no struct layout", b.name)
	}
	flat, err := b.Read()
	if err != nil {
		return nil, err
	}
	records, err := b.structType.Unpack(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to read buffer %q: %w", b.name, err)
	}
	return records, nil
}

// BindingCode returns the buffer's storage binding declaration for the slot.
func (b *Buffer) BindingCode(group, slot int) string {
	t := b.typeToken()
	if b.isArray {
		t = fmt.Sprintf("array<%s>", t)
	}
	return fmt.Sprintf("@group(%d) @binding(%d) var<storage, read_write> %s: %s;", group, slot, b.name, t)
}

// StructDeclaration returns the struct block the declaration references, or
// an empty string for untyped buffers.
func (b *Buffer) StructDeclaration() string {
	if b.structType == nil {
		return ""
	}
	return b.structType.Declaration()
}

// Entry returns the bind group entry binding the whole buffer to the slot.
func (b *Buffer) Entry(slot uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: slot,
		Buffer:  b.handle,
		Offset:  0,
		Size:    b.size,
	}
}

// Release releases the device buffer. The handle must not be used afterwards.
func (b *Buffer) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}

func (b *Buffer) typeToken() string {
	if b.structType != nil {
		return b.structType.Name()
	}
	switch b.elemFloats {
	case 2:
		return "vec2<f32>"
	case 3:
		return "vec3<f32>"
	case 4:
		return "vec4<f32>"
	default:
		return "f32"
	}
}
