package kernel

import (
	"time"
	"unsafe"
)

// CreateTask allocates a descriptor and stack, fills the stack with the
// sentinel pattern, and publishes the task as Ready. Priority is clamped
// to MaxPriority-1 rather than rejected.
func (k *Kernel) CreateTask(entry func(arg any), name string, stackBytes uint32, arg any, priority uint32) (Handle, Result) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.createTaskLocked(entry, name, stackBytes, arg, priority)
}

func (k *Kernel) createTaskLocked(entry func(arg any), name string, stackBytes uint32, arg any, priority uint32) (Handle, Result) {
	if k.heap == nil {
		return 0, ResultMemoryNotInitialized
	}
	if entry == nil || stackBytes == 0 {
		return 0, ResultBadParameter
	}
	if priority >= MaxPriority {
		priority = MaxPriority - 1
	}
	stackPtr, res := k.heap.Allocate(stackBytes)
	if !res.OK() {
		return 0, res
	}
	stack := unsafe.Slice((*byte)(stackPtr), stackBytes)
	t := newTask(entry, name, stack, arg, priority)
	k.registry.Insert(t)
	go k.taskLoop(t)
	return t.handle, ResultSuccess
}

// taskLoop is the first-dispatch landing pad: it parks until Dispatch
// sends its first turn token, then calls entry(argument) — the call the
// context switch primitive's first-dispatch frame is required to produce
// — and deletes the task if entry ever returns (the fall-through landing
// address the source builds into the initial stack frame).
func (k *Kernel) taskLoop(t *Task) {
	<-t.turn
	t.entry(t.arg)
	k.deleteTask(t)
}

// rescheduleLocked must be called with k.mu held. It runs a scheduling
// decision and reports whether caller is still the Running task afterward;
// k.mu is left held on return, so the caller must unlock before parking.
func (k *Kernel) rescheduleLocked(caller *Task) (switched bool) {
	k.scheduleLocked()
	return k.current != caller
}

// scheduleLocked implements the six-step selection rule. Must be called
// with k.mu held.
func (k *Kernel) scheduleLocked() {
	now := k.clock.Now()
	k.promoteExpiredLocked(now)

	if k.current != nil && k.current.state == StateRunning {
		k.current.state = StateReady
	}

	next, ok := k.pickReadyLocked()
	if !ok {
		next = k.idle
	}

	prev := k.current
	cycles := k.clock.Cycles()
	if prev != nil {
		prev.execCycles += cycles - prev.cyclesIn
	}
	next.cyclesIn = cycles
	next.state = StateRunning
	k.current = next

	if prev != next {
		k.metrics.recordSwitch(cycles)
		k.logger.Debugf("switch: %s -> %s", taskName(prev), next.Name())
		k.switcher.Dispatch(next)
	}
}

func taskName(t *Task) string {
	if t == nil {
		return "<none>"
	}
	return t.Name()
}

// promoteExpiredLocked moves every Delayed task whose wake-tick has
// arrived, and every Blocked-* task whose timeout-tick has arrived, to
// Ready. Must be called with k.mu held.
func (k *Kernel) promoteExpiredLocked(now uint32) {
	for _, t := range k.registry.Tasks() {
		switch t.state {
		case StateDelayed:
			if TickAfter(now, t.wakeTick) {
				t.state = StateReady
			}
		case StateBlockedOnSemaphore, StateBlockedOnQueue, StateBlockedOnCircularBuffer:
			if t.timeoutTick != noTimeout && TickAfter(now, t.timeoutTick) {
				t.unlinkWait()
				t.state = StateReady
			}
		}
	}
}

// pickReadyLocked returns the Ready task with the highest priority,
// breaking ties in favor of the earliest encountered in registry
// (insertion) order, via MaxBy over the registry's insertion-ordered list.
func (k *Kernel) pickReadyLocked() (*Task, bool) {
	best, found := MaxBy(&k.registry.order, func(a, b *Task) bool {
		if b.state != StateReady {
			return false
		}
		if a.state != StateReady {
			return true
		}
		return b.priority > a.priority
	})
	if !found || best.state != StateReady {
		return nil, false
	}
	return best, true
}

// Start creates the idle task and the timer-service driver task, picks the
// first task to run, and hands control to it. Like the real scheduler
// start routine, it never returns on success; callers that want to drive
// a bounded simulation (tests, cmd/ksim scenarios) run it in its own
// goroutine and observe progress through Clock/Metrics/task accessors.
func (k *Kernel) Start() Result {
	k.mu.Lock()
	if k.heap == nil {
		k.mu.Unlock()
		return ResultMemoryNotInitialized
	}
	if k.started {
		k.mu.Unlock()
		return ResultBadParameter
	}
	k.started = true

	idleHandle, res := k.createTaskLocked(idleEntry, "idle", 256, k, idlePriority)
	if !res.OK() {
		k.mu.Unlock()
		return res
	}
	k.idle, _ = k.registry.Lookup(idleHandle)

	if _, res := k.createTaskLocked(k.timerServiceLoop, "tmrsvc", defaultStackBytes, nil, timerSvcPriority); !res.OK() {
		k.mu.Unlock()
		return res
	}

	first, ok := k.pickReadyLocked()
	if !ok {
		first = k.idle
	}
	first.cyclesIn = k.clock.Cycles()
	first.state = StateRunning
	k.current = first
	k.switcher.Dispatch(first)
	k.mu.Unlock()

	go k.tickLoop()

	<-k.halt
	return ResultSuccess
}

// tickLoop is the host simulation's rendition of the periodic tick ISR: a
// ticker paced by the configured tick rate that calls onTick.
func (k *Kernel) tickLoop() {
	rate := k.tickRateHz
	if rate == 0 {
		rate = 1000
	}
	interval := time.Second / time.Duration(rate)
	if interval <= 0 {
		interval = time.Microsecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			k.onTick()
		case <-k.halt:
			return
		}
	}
}

// onTick is the tick ISR body: advance time and promote any Delayed or
// timed-out Blocked-* task to Ready. It does not call scheduleLocked —
// see HostSwitcher for why a tick can only make a task eligible, not
// force a dispatch. The Running task reaches scheduleLocked on its own
// next call to Yield, Delay, Pause, Delete/DeleteSelf, or a blocking
// Wait/Send/Receive, as every other reschedule in this package requires.
func (k *Kernel) onTick() {
	k.mu.Lock()
	now := k.clock.Tick()
	k.promoteExpiredLocked(now)
	k.mu.Unlock()
}

// Yield runs a scheduling decision with the caller counted as Ready. It
// switches to a higher-priority Ready task, or to an equal-priority one
// registered before the caller; otherwise the caller keeps running.
func (k *Kernel) Yield() Result {
	k.mu.Lock()
	caller := k.current
	switched := k.rescheduleLocked(caller)
	k.mu.Unlock()
	if switched {
		<-caller.turn
	}
	return ResultSuccess
}

// Delay moves the calling task Running -> Delayed with wake-tick =
// now+ticks and requests a context switch. ticks == 0 is a parameter
// error.
func (k *Kernel) Delay(ticks uint32) Result {
	if ticks == 0 {
		return ResultBadParameter
	}
	k.mu.Lock()
	caller := k.current
	caller.state = StateDelayed
	caller.wakeTick = k.clock.Now() + ticks
	switched := k.rescheduleLocked(caller)
	k.mu.Unlock()
	if switched {
		<-caller.turn
	}
	return ResultSuccess
}

// Pause transitions a Ready or Running task to Paused. A no-op if the
// target is already in some other state.
func (k *Kernel) Pause(h Handle) Result {
	k.mu.Lock()
	t, ok := k.registry.Lookup(h)
	if !ok {
		k.mu.Unlock()
		return ResultTaskNotFound
	}
	if t.state != StateReady && t.state != StateRunning {
		k.mu.Unlock()
		return ResultSuccess
	}
	caller := k.current
	t.state = StatePaused
	switched := k.rescheduleLocked(caller)
	k.mu.Unlock()
	if switched {
		<-caller.turn
	}
	return ResultSuccess
}

// Resume transitions a Paused task back to Ready. A no-op if the target is
// not Paused.
func (k *Kernel) Resume(h Handle) Result {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.registry.Lookup(h)
	if !ok {
		return ResultTaskNotFound
	}
	if t.state != StatePaused {
		return ResultSuccess
	}
	t.state = StateReady
	return ResultSuccess
}

// DeleteSelf removes the calling task from the registry, frees its
// resources, and requests an immediate switch away from it.
func (k *Kernel) DeleteSelf() Result {
	k.mu.Lock()
	caller := k.current
	k.mu.Unlock()
	return k.deleteTask(caller)
}

// Delete removes the task referenced by h. Deleting the running task has
// the same effect as DeleteSelf.
func (k *Kernel) Delete(h Handle) Result {
	k.mu.Lock()
	t, ok := k.registry.Lookup(h)
	k.mu.Unlock()
	if !ok {
		return ResultTaskNotFound
	}
	return k.deleteTask(t)
}

func (k *Kernel) deleteTask(t *Task) Result {
	k.mu.Lock()
	caller := k.current
	t.unlinkWait()
	k.registry.Remove(t)
	stack := t.stack
	switched := k.rescheduleLocked(caller)
	k.mu.Unlock()

	// The freed stack is never the goroutine's real execution stack (see
	// Task.freeStackWords), so it is safe to free immediately: nothing is
	// "in use" at this address regardless of switch timing.
	if len(stack) > 0 {
		k.heap.Deallocate(unsafe.Pointer(&stack[0]))
	}
	if switched {
		<-caller.turn
	}
	return ResultSuccess
}

// FreeStack scans the calling task's shadow stack and returns the unused
// word count.
func (k *Kernel) FreeStack() uint32 {
	k.mu.Lock()
	t := k.current
	k.mu.Unlock()
	return t.freeStackWords()
}

// CurrentHandle returns the calling task's handle.
func (k *Kernel) CurrentHandle() Handle {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current.handle
}

// CurrentTaskName returns the calling task's name.
func (k *Kernel) CurrentTaskName() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current.Name()
}
