package kernel

import (
	"sync"
	"unsafe"
)

// MaxPriority is the number of priority levels, 0..MaxPriority-1. The idle
// task runs at priority 0 and the software timer driver task at
// MaxPriority-2.
const MaxPriority = 32

const (
	idlePriority       = 0
	timerSvcPriority   = MaxPriority - 2
	defaultStackBytes  = 512
)

// Kernel is the single process-wide state object: the current-task
// reference, the registry, the tick counter, the heap, and the
// software-timer list, constructed once by InitMemory+Start and handed to
// every subsystem. There is exactly one of these per running simulation;
// nothing in this package relies on package-level singleton state.
type Kernel struct {
	mu sync.Mutex

	heap     *Heap
	clock    *Clock
	switcher ContextSwitcher
	logger   Logger
	metrics  *Metrics

	registry *Registry
	current  *Task
	idle     *Task
	timers   List[*SoftwareTimer]

	coreClockHz uint32
	tickRateHz  uint32
	started     bool
	halt        chan struct{}
}

// New constructs a Kernel. Call InitMemory before any other operation.
func New() *Kernel {
	return &Kernel{
		logger:   noopLogger{},
		metrics:  newMetrics(),
		switcher: NewHostSwitcher(),
		halt:     make(chan struct{}),
	}
}

// SetLogger installs a Logger. A nil Logger is ignored.
func (k *Kernel) SetLogger(l Logger) {
	if l != nil {
		k.logger = l
	}
}

// SetContextSwitcher overrides the context switch primitive. Must be
// called before Start.
func (k *Kernel) SetContextSwitcher(s ContextSwitcher) {
	if s != nil {
		k.switcher = s
	}
}

// SetCycleSource overrides the accounting clock's cycle source. Must be
// called before Start.
func (k *Kernel) SetCycleSource(c CycleSource) {
	if k.clock != nil {
		k.clock.source = c
	}
}

// SetCoreClock configures the core clock, in Hz. Accepted only above
// 1,000,000 Hz, matching the original configuration surface's threshold.
func (k *Kernel) SetCoreClock(hz uint32) Result {
	if hz <= 1_000_000 {
		return ResultBadParameter
	}
	k.coreClockHz = hz
	return ResultSuccess
}

// SetTickRate configures the tick rate, in Hz. Accepted only below
// 1,000,000 Hz.
func (k *Kernel) SetTickRate(hz uint32) Result {
	if hz == 0 || hz >= 1_000_000 {
		return ResultBadParameter
	}
	k.tickRateHz = hz
	return ResultSuccess
}

// InitMemory installs the heap over pool. Required before any other
// kernel operation except SetCoreClock/SetTickRate.
func (k *Kernel) InitMemory(pool []byte) Result {
	h, res := NewHeap(pool)
	if !res.OK() {
		return res
	}
	k.heap = h
	k.clock = NewClock(nil)
	k.registry = NewRegistry()
	return ResultSuccess
}

// FreeBytes returns the heap's free payload bytes.
func (k *Kernel) FreeBytes() uint32 { return k.heap.FreeBytes() }

// AllocatedBytes returns the heap's allocated payload bytes.
func (k *Kernel) AllocatedBytes() uint32 { return k.heap.AllocatedBytes() }

// Clock exposes the kernel's time base, chiefly so tests and cmd/ksim can
// read Now() without threading a separate reference through.
func (k *Kernel) Clock() *Clock { return k.clock }

// Metrics exposes the kernel's accounting sampler.
func (k *Kernel) Metrics() *Metrics { return k.metrics }

// TaskNames returns the name of every live task, sorted, for reporting
// tools. See Registry.Names.
func (k *Kernel) TaskNames() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.registry.Names()
}

// allocUnsafe is a small helper so callers that need raw storage (queues,
// circular buffers, task stacks) don't repeat the Result-checking
// boilerplate, while still reporting the failure they hit.
func (k *Kernel) allocUnsafe(n uint32) (unsafe.Pointer, Result) {
	if k.heap == nil {
		return nil, ResultMemoryNotInitialized
	}
	return k.heap.Allocate(n)
}
