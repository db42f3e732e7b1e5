// Package mem provides owned-buffer resizing for the index's parallel arrays.
//
// # Copy-and-swap
//
// Resize never mutates its input: it returns a freshly allocated slice with
// the preserved prefix and a zero-filled tail. Callers swap the result in only
// after every array of a growth step has been allocated, so a refused growth
// leaves the original buffers intact.
package mem
