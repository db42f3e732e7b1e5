// Package resource governs the memory, worker and IO budget of vocabulary
// building and serving.
//
//	┌──────────────────────────────────────────────────────────┐
//	│                       Controller                         │
//	├────────────────┬─────────────────┬───────────────────────┤
//	│  Memory Limit  │  Background     │  IO Rate Limiter      │
//	│  (fail-fast)   │  Workers (sem)  │  (token bucket)       │
//	├────────────────┼─────────────────┼───────────────────────┤
//	│ index growth   │ FindParallel    │ Publish uploads       │
//	└────────────────┴─────────────────┴───────────────────────┘
//
// # Memory
//
// Index growth reserves memory with TryAcquireMemory before it allocates.
// A refused reservation surfaces as an allocation error and the index stays
// untouched:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//	b, _ := vocab.NewBuilder(16, 1<<16, vocab.WithResourceController(rc))
//
// # Background workers
//
// Limits the goroutines a parallel lookup may occupy:
//
//	if err := rc.AcquireBackground(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseBackground()
//
// # IO
//
// Token bucket for snapshot uploads so publishing does not starve readers:
//
//	w := resource.NewRateLimitedWriter(ctx, dst, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller; they become no-ops.
package resource
