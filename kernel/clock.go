package kernel

import (
	"sync/atomic"
	"time"
)

// CycleSource supplies the monotonically increasing cycle count used for
// per-task execution accounting. On real silicon this reads a free-running
// hardware counter (e.g. DWT->CYCCNT); this module takes it as a pluggable
// dependency because a hosted simulation has no such register.
type CycleSource interface {
	Cycles() uint64
}

// wallClockSource is the default CycleSource: wall-clock nanoseconds.
type wallClockSource struct{}

func (wallClockSource) Cycles() uint64 { return uint64(time.Now().UnixNano()) }

// Clock is the kernel's time base: a free-running 32-bit tick counter plus
// the cycle source used for accounting.
type Clock struct {
	ticks  uint32
	source CycleSource
}

// NewClock constructs a Clock. A nil source defaults to wall-clock time.
func NewClock(source CycleSource) *Clock {
	if source == nil {
		source = wallClockSource{}
	}
	return &Clock{source: source}
}

// Now returns the current tick count without advancing it.
func (c *Clock) Now() uint32 { return atomic.LoadUint32(&c.ticks) }

// Tick advances the tick counter by one and returns the new value. This is
// the abstract tick-ISR entry point; wraps silently at 2^32, by design.
func (c *Clock) Tick() uint32 { return atomic.AddUint32(&c.ticks, 1) }

// Cycles reads the underlying CycleSource.
func (c *Clock) Cycles() uint64 { return c.source.Cycles() }

// noTimeout marks a Blocked-* task's timeoutTick as "no deadline": the
// task blocks until something explicitly wakes it (a Signal, a popLocked),
// never because promoteExpiredLocked mistook a stale or zero timeoutTick
// for an elapsed one. Real timeout deadlines are always "now + a caller
// timeout" and stay far below this sentinel, so there is no collision.
const noTimeout uint32 = 0xFFFFFFFF

// TickAfter reports whether tick a has occurred at or after tick b, using
// the unsigned-subtraction half-range comparison required to stay correct
// across the 32-bit wraparound boundary. Callers must keep deadlines within
// 2^31-1 ticks of "now" for this to give a meaningful answer.
func TickAfter(a, b uint32) bool {
	return int32(a-b) >= 0
}
