// package layout provides the value-type catalogue and struct descriptors used
// to move host-side data into GPU buffers. A ValueType knows its own size and
// shader declaration token and how to convert between host values and the flat
// float sequence the GPU consumes; a Struct combines named fields into a padded
// layout that packs and unpacks whole records.
package layout

import (
	"fmt"

	"github.com/glazegpu/glaze/common"
)

// valueKind identifies one of the fixed value layouts in the catalogue.
type valueKind int

const (
	kindFloat valueKind = iota
	kindVec2
	kindVec3
	kindVec4
	kindColor
)

// valueType is the implementation of the ValueType interface.
type valueType struct {
	kind   valueKind
	floats int
	token  string
}

var _ ValueType = &valueType{}

// ValueType describes one GPU-compatible value layout. Implementations are
// stateless singletons; use the package-level Float, Vec2, Vec3, Vec4 and
// Color values rather than constructing your own.
type ValueType interface {
	// SizeFloats returns the number of 32-bit float slots the value occupies.
	//
	// Returns:
	//   - int: the slot count (1, 2, 3 or 4)
	SizeFloats() int

	// SizeBytes returns the packed size of the value in bytes.
	//
	// Returns:
	//   - int: the byte size, always a multiple of 4
	SizeBytes() int

	// Declare returns the shader type token used in generated declarations.
	//
	// Returns:
	//   - string: a WGSL type token such as "f32" or "vec2<f32>"
	Declare() string

	// Zero returns the zero host value for this type, used to build default
	// records.
	//
	// Returns:
	//   - any: float32(0) for scalars, a zero common.Vec2/Vec3/Vec4/Color otherwise
	Zero() any

	// Pack converts a host value into its flat float representation.
	// Scalars accept float32, float64 or int; composite types accept the
	// matching common struct (common.Vec2 for vec2, and so on).
	//
	// Parameters:
	//   - value: the host value to convert
	//
	// Returns:
	//   - []float32: the packed floats, length SizeFloats()
	//   - error: wraps ErrBadValue when the host value has an unsupported type
	Pack(value any) ([]float32, error)

	// Unpack converts a flat float sequence back into a host value. The input
	// must hold at least SizeFloats() elements or Unpack panics, mirroring the
	// contract of the encoding/binary byte-order helpers.
	//
	// Parameters:
	//   - flat: the packed floats, at least SizeFloats() elements
	//
	// Returns:
	//   - any: float32 for scalars, common.Vec2/Vec3/Vec4/Color otherwise
	Unpack(flat []float32) any
}

// The value-type catalogue. Color packs identically to Vec4 but unpacks into
// common.Color so host code keeps its channel names.
var (
	Float ValueType = &valueType{kind: kindFloat, floats: 1, token: "f32"}
	Vec2  ValueType = &valueType{kind: kindVec2, floats: 2, token: "vec2<f32>"}
	Vec3  ValueType = &valueType{kind: kindVec3, floats: 3, token: "vec3<f32>"}
	Vec4  ValueType = &valueType{kind: kindVec4, floats: 4, token: "vec4<f32>"}
	Color ValueType = &valueType{kind: kindColor, floats: 4, token: "vec4<f32>"}
)

func (v *valueType) SizeFloats() int { return v.floats }

func (v *valueType) SizeBytes() int { return v.floats * 4 }

func (v *valueType) Declare() string { return v.token }

func (v *valueType) Zero() any {
	switch v.kind {
	case kindFloat:
		return float32(0)
	case kindVec2:
		return common.Vec2{}
	case kindVec3:
		return common.Vec3{}
	case kindVec4:
		return common.Vec4{}
	default:
		return common.Color{}
	}
}

func (v *valueType) Pack(value any) ([]float32, error) {
	switch v.kind {
	case kindFloat:
		switch n := value.(type) {
		case float32:
			return []float32{n}, nil
		case float64:
			return []float32{float32(n)}, nil
		case int:
			return []float32{float32(n)}, nil
		}
	case kindVec2:
		if n, ok := value.(common.Vec2); ok {
			return []float32{n.X, n.Y}, nil
		}
	case kindVec3:
		if n, ok := value.(common.Vec3); ok {
			return []float32{n.X, n.Y, n.Z}, nil
		}
	case kindVec4:
		if n, ok := value.(common.Vec4); ok {
			return []float32{n.X, n.Y, n.Z, n.W}, nil
		}
	case kindColor:
		if n, ok := value.(common.Color); ok {
			return []float32{n.R, n.G, n.B, n.A}, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot pack %T as %s", ErrBadValue, value, v.token)
}

func (v *valueType) Unpack(flat []float32) any {
	switch v.kind {
	case kindFloat:
		return flat[0]
	case kindVec2:
		return common.Vec2{X: flat[0], Y: flat[1]}
	case kindVec3:
		return common.Vec3{X: flat[0], Y: flat[1], Z: flat[2]}
	case kindVec4:
		return common.Vec4{X: flat[0], Y: flat[1], Z: flat[2], W: flat[3]}
	default:
		return common.Color{R: flat[0], G: flat[1], B: flat[2], A: flat[3]}
	}
}
