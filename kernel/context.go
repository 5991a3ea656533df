package kernel

// ContextSwitcher is the architecture-supplied primitive the kernel
// requires and never implements itself: save the outgoing task's machine
// state, restore the incoming task's, and return to thread mode running
// it. On real ARMv7-M/v8-M silicon this is a PendSV/SVC assembly
// trampoline (see, for the shape of it, the first-dispatch stack-frame
// construction in a Cortex-M runtime's task initializer); this repository
// never compiles that trampoline, because it requires a cross compiler and
// silicon this module does not have. It ships one concrete implementation
// instead, HostSwitcher, that satisfies the same obligations using Go
// goroutines.
type ContextSwitcher interface {
	// Dispatch resumes to, as though by restoring its saved context and
	// returning to thread mode. Called with the kernel's interrupt mask
	// already raised (the scheduler's critical section); must not block.
	Dispatch(to *Task)
}

// HostSwitcher is a goroutine-per-task backend: each task body runs on its
// own goroutine, parked on a one-shot, buffered "turn" channel whenever it
// is not the Running task. Dispatch is the restore half of the context
// switch; the save half is implicit — a task that is not holding its turn
// token is, by construction, parked inside a channel receive and touching
// none of the kernel's data structures.
//
// Nothing can force-preempt a Go goroutine that is off executing a tight
// compute loop without calling back into the kernel. A task here loses the
// CPU only inside its own call to Yield, Delay, Pause, Delete/DeleteSelf,
// or a blocking Wait/Send/Receive. A tick, a Signal, a Send that wakes a
// waiter, or a Resume only marks a task Ready; it is not dispatched until
// the Running task next makes one of those calls. A task that never
// yields and never blocks starves every other task in its kernel.
type HostSwitcher struct{}

// NewHostSwitcher constructs the goroutine-per-task context switch backend.
func NewHostSwitcher() *HostSwitcher { return &HostSwitcher{} }

func (*HostSwitcher) Dispatch(to *Task) {
	to.turn <- struct{}{}
}
