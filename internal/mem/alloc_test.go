package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResize_Grow(t *testing.T) {
	src := []uint32{1, 2, 3}
	out := Resize(src, 5)

	assert.Equal(t, []uint32{1, 2, 3, 0, 0}, out)
	assert.Equal(t, []uint32{1, 2, 3}, src)

	out[0] = 42
	assert.Equal(t, uint32(1), src[0], "result must not alias the input")
}

func TestResize_Shrink(t *testing.T) {
	out := Resize([]byte{1, 2, 3, 4}, 2)
	assert.Equal(t, []byte{1, 2}, out)
}

func TestResize_Empty(t *testing.T) {
	assert.Nil(t, Resize([]byte{1}, 0))
	assert.Nil(t, Resize[byte](nil, -1))
	assert.Equal(t, []byte{0, 0}, Resize[byte](nil, 2))
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, int64(12), SizeOf[uint32](3))
	assert.Equal(t, int64(7), SizeOf[byte](7))
	assert.Equal(t, int64(0), SizeOf[uint64](0))
}
