package vocab

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vocab/internal/ihash"
	"github.com/hupe1980/vocab/persistence"
)

var (
	// ErrConfig matches every *ConfigError.
	ErrConfig = ihash.ErrConfig

	// ErrAllocation matches every *AllocationError.
	ErrAllocation = ihash.ErrAllocation

	// ErrFrozen is returned by a Builder after Freeze.
	ErrFrozen = errors.New("builder is frozen")

	// ErrInvalidKeys is returned when a key buffer does not hold a whole
	// number of keys.
	ErrInvalidKeys = errors.New("invalid key buffer")

	// ErrInvalidID is returned for a word id outside [1, Len()].
	ErrInvalidID = errors.New("word id out of range")

	// ErrCorruptSnapshot is returned when a snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt vocabulary snapshot")

	// ErrNotPublished is returned by Fetch when the store holds no
	// published vocabulary.
	ErrNotPublished = errors.New("no vocabulary published")
)

// ConfigError reports caller-supplied or corrupted index state.
// The index was not modified.
type ConfigError = ihash.ConfigError

// AllocationError reports a refused growth step. Keys of the batch before
// Committed were accumulated; the index is otherwise unchanged.
type AllocationError = ihash.AllocationError

// ErrKeyWidthMismatch indicates a key buffer whose length is not a multiple
// of the key width.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrKeyWidthMismatch struct {
	KeyWidth int
	Length   int
	cause    error
}

func (e *ErrKeyWidthMismatch) Error() string {
	return fmt.Sprintf("key buffer of %d bytes is not a multiple of key width %d", e.Length, e.KeyWidth)
}

func (e *ErrKeyWidthMismatch) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidKeys or ErrConfig.
func (e *ErrKeyWidthMismatch) Is(target error) bool {
	return target == ErrInvalidKeys || target == ErrConfig
}

func checkKeys(keys []byte, keyWidth int) (int, error) {
	if len(keys)%keyWidth != 0 {
		return 0, &ErrKeyWidthMismatch{KeyWidth: keyWidth, Length: len(keys)}
	}
	return len(keys) / keyWidth, nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, persistence.ErrCorrupt) ||
		errors.Is(err, persistence.ErrInvalidMagic) ||
		errors.Is(err, persistence.ErrInvalidVersion) {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	return err
}
