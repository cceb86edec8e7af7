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

// Swap exchanges the elements at indices i and j of s in place.
//
// Parameters:
//   - s: the slice to modify
//   - i, j: the indices to exchange
func Swap[T any](s []T, i, j int) {
	s[i], s[j] = s[j], s[i]
}
