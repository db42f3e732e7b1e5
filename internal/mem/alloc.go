package mem

import "unsafe"

// Resize returns a new slice of length n holding the first min(len(s), n)
// elements of s. Elements past len(s) are zero.
//
// The input slice is never modified or aliased.
func Resize[T any](s []T, n int) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, s)
	return out
}

// SizeOf reports the number of bytes occupied by n elements of T.
func SizeOf[T any](n int) int64 {
	var zero T
	return int64(n) * int64(unsafe.Sizeof(zero))
}
