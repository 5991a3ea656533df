package kernel

// Semaphore is a binary semaphore: a count in {0,1} plus a FIFO of waiting
// tasks. Signal on an already-signaled semaphore reports Busy rather than
// silently succeeding, resolving the ambiguity between revisions of the
// implementation this kernel is ported from in favor of the stricter,
// later-added behavior.
//
// Count and the waiter list are both protected by the owning Kernel's
// critical section rather than a free-standing atomic: Signal must pop a
// waiter and mutate count as one indivisible step for the FIFO handoff
// guarantee below to hold.
type Semaphore struct {
	k       *Kernel
	count   uint32
	waiters List[*Task]
}

// NewSemaphore constructs a Semaphore with the given initial value (0 or
// 1; any nonzero value is treated as 1).
func (k *Kernel) NewSemaphore(initial uint32) *Semaphore {
	s := &Semaphore{k: k}
	if initial != 0 {
		s.count = 1
	}
	return s
}

// Wait consumes the semaphore if signaled, otherwise blocks the calling
// task as BlockedOnSemaphore until signaled or timeoutTicks elapse.
// timeoutTicks == 0 means try without blocking.
func (s *Semaphore) Wait(timeoutTicks uint32) Result {
	k := s.k

	k.mu.Lock()
	if s.count == 1 {
		s.count = 0
		k.mu.Unlock()
		return ResultSuccess
	}
	if timeoutTicks == 0 {
		k.mu.Unlock()
		return ResultSemaphoreTimeout
	}

	caller := k.current
	caller.state = StateBlockedOnSemaphore
	caller.timeoutTick = k.clock.Now() + timeoutTicks
	caller.waitNode = NewNode(caller)
	s.waiters.PushBack(caller.waitNode)
	switched := k.rescheduleLocked(caller)
	k.mu.Unlock()
	if switched {
		<-caller.turn
	}

	for {
		k.mu.Lock()
		if caller.semGranted {
			caller.semGranted = false
			k.mu.Unlock()
			return ResultSuccess
		}
		if TickAfter(k.clock.Now(), caller.timeoutTick) {
			caller.unlinkWait()
			k.mu.Unlock()
			return ResultSemaphoreTimeout
		}
		// Neither granted nor timed out yet: a spurious wake under this
		// model shouldn't happen, but looping back to sleep is safe.
		switched := k.rescheduleLocked(caller)
		k.mu.Unlock()
		if switched {
			<-caller.turn
		}
	}
}

// Signal wakes the FIFO-head waiter if one exists, handing the signal
// directly to it so that task is guaranteed to return success on its next
// turn regardless of what any other task does in between. Only when no
// waiter exists does it set count to 1 for a future caller to consume.
// Returns SemaphoreBusy if the count is already 1.
func (s *Semaphore) Signal() Result {
	k := s.k
	k.mu.Lock()
	defer k.mu.Unlock()

	if s.count == 1 {
		return ResultSemaphoreBusy
	}

	if n := s.waiters.PopFront(); n != nil {
		t := n.Value
		t.waitNode = nil
		t.semGranted = true
		t.state = StateReady
		return ResultSuccess
	}

	s.count = 1
	return ResultSuccess
}
