package hash

const (
	fnvOffset32 uint32 = 2166136261
	fnvPrime32  uint32 = 16777619
)

// FNV1 computes the 32-bit FNV-1 hash of key.
// Multiplication wraps modulo 2^32.
func FNV1(key []byte) uint32 {
	h := fnvOffset32
	for _, b := range key {
		h = (h * fnvPrime32) ^ uint32(b)
	}
	return h
}
