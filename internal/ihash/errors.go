package ihash

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig matches every *ConfigError.
	ErrConfig = errors.New("invalid index configuration")

	// ErrAllocation matches every *AllocationError.
	ErrAllocation = errors.New("index allocation failed")
)

// ConfigError reports caller-supplied or corrupted index state.
// It is fatal: the operation did not touch the table.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid index configuration: %s", e.Reason)
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// AllocationError reports a refused growth step.
//
// Committed is the number of keys of the batch that were accumulated before
// the failing key; the failing key itself was not committed.
type AllocationError struct {
	Capacity  int   // capacity before the failed growth
	Requested int   // capacity the growth step asked for
	Bytes     int64 // bytes the growth step needed
	Committed int
	Reason    string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("index allocation failed: growing %d -> %d slots (%d bytes): %s",
		e.Capacity, e.Requested, e.Bytes, e.Reason)
}

// Is reports whether target is ErrAllocation.
func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }
