package kernel

import "sync/atomic"

// SpinMutex is a test-and-set flag intended for bounded critical sections
// that must run without the scheduler touching anything underneath them.
// Lock raises the kernel's interrupt mask — in this host simulation, that
// is the kernel's own critical-section lock, since there is exactly one
// priority ceiling shared by every mutex and the scheduler itself — for
// the duration the flag is held, then spins on the flag with
// acquire ordering; real contention on the flag is therefore never
// observed here, but the algorithm is kept intact rather than special
// cased away.
//
// Holding a SpinMutex across any operation that may block (a semaphore or
// queue wait, a delay) or across DeleteSelf is a caller error. Because
// Lock holds the kernel's critical section, any Kernel call made while the
// mutex is held deadlocks. It is not detected; the caller must release
// first, exactly as in the implementation this is ported from.
type SpinMutex struct {
	k    *Kernel
	flag atomic.Bool
}

// NewSpinMutex constructs an unheld SpinMutex.
func (k *Kernel) NewSpinMutex() *SpinMutex { return &SpinMutex{k: k} }

// Lock captures the kernel's current interrupt mask by acquiring its
// critical section, then spins on the flag.
func (m *SpinMutex) Lock() {
	m.k.mu.Lock()
	for !m.flag.CompareAndSwap(false, true) {
		m.k.mu.Unlock()
		m.k.mu.Lock()
	}
}

// Unlock clears the flag with release ordering and restores the captured
// mask.
func (m *SpinMutex) Unlock() {
	m.flag.Store(false)
	m.k.mu.Unlock()
}
