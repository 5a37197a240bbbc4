package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// CeilDiv returns a divided by b, rounded up. Used for splitting element
// counts into fixed-size chunks and for sizing workgroup dispatches.
//
// Parameters:
//   - a: dividend (must be >= 0)
//   - b: divisor (must be > 0)
//
// Returns:
//   - int: the smallest integer >= a/b
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}
