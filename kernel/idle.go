package kernel

import "runtime"

// idleEntry is the body of the task the scheduler dispatches only when no
// other task is Ready. It never blocks and never delays — doing either
// would let the host's goroutine scheduler park it for longer than a
// single rescheduling decision — it simply yields back immediately so the
// kernel's own scheduler gets another chance to find a newly Ready task.
// After each Yield it also hands the host CPU back to the Go scheduler, so
// the tick goroutine that makes tasks Ready is not starved by this loop.
func idleEntry(arg any) {
	k := arg.(*Kernel)
	for {
		k.Yield()
		runtime.Gosched()
	}
}
