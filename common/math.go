package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// BytesToSlice reinterprets a byte slice as a slice of T, used when reading
// buffer contents back from the GPU. Trailing bytes that do not fill a whole
// element are ignored.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: raw bytes, e.g. from a mapped staging buffer
//
// Returns:
//   - []T: typed view of the input data, or nil if input is empty
func BytesToSlice[T any](data []byte) []T {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(data) / size
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Clamp limits v to the inclusive range [lo, hi].
//
// Parameters:
//   - v: value to limit
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float32: v clamped to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Map linearly remaps v from the range [inLo, inHi] to the range [outLo, outHi].
// Values outside the input range extrapolate rather than clamp.
//
// Parameters:
//   - v: value to remap
//   - inLo, inHi: bounds of the input range
//   - outLo, outHi: bounds of the output range
//
// Returns:
//   - float32: the remapped value
func Map(v, inLo, inHi, outLo, outHi float32) float32 {
	return outLo + (v-inLo)/(inHi-inLo)*(outHi-outLo)
}

// Lerp linearly interpolates between a and b by t, where t=0 yields a and
// t=1 yields b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Fract returns the fractional part of v, matching the WGSL fract builtin.
func Fract(v float32) float32 {
	return v - math32.Floor(v)
}

// Smoothstep performs Hermite interpolation between 0 and 1 as v moves across
// [edge0, edge1], matching the WGSL smoothstep builtin.
func Smoothstep(edge0, edge1, v float32) float32 {
	t := Clamp((v-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
