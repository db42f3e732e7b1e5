// Package conv converts between Go's int and the fixed-width integers of the
// snapshot header, rejecting values that do not fit.
//
// Header fields come from disk and are untrusted; every conversion from a
// stored width to int goes through this package.
package conv
