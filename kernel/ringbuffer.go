package kernel

import "unsafe"

// CircularBuffer is the byte-granular counterpart to Queue: a bounded ring
// of raw bytes rather than fixed-size elements, so sizes sent and received
// need not match.
//
// Unlike Queue, Send here is non-blocking (it returns
// ResultCircularBufferFull rather than waiting for room); only Receive
// blocks, mirroring the component contract exactly.
type CircularBuffer struct {
	k        *Kernel
	buf      []byte
	head     uint32 // next write offset
	tail     uint32 // next read offset
	size     uint32 // bytes currently held
	capacity uint32

	recvWaiters List[*Task]
}

// NewCircularBuffer allocates a CircularBuffer of the given byte capacity
// from the kernel heap.
func (k *Kernel) NewCircularBuffer(capacity uint32) (*CircularBuffer, Result) {
	if capacity == 0 {
		return nil, ResultBadParameter
	}
	ptr, res := k.allocUnsafe(capacity)
	if !res.OK() {
		return nil, res
	}
	buf := unsafe.Slice((*byte)(ptr), capacity)
	return &CircularBuffer{k: k, buf: buf, capacity: capacity}, ResultSuccess
}

// Send copies data into the buffer, wrapping at the buffer end in two
// segments as needed. ResultCircularBufferFull if data does not fit in the
// current free capacity.
func (cb *CircularBuffer) Send(data []byte) Result {
	k := cb.k
	k.mu.Lock()
	defer k.mu.Unlock()

	if uint32(len(data)) > cb.capacity-cb.size {
		return ResultCircularBufferFull
	}

	first := cb.capacity - cb.head
	if first > uint32(len(data)) {
		first = uint32(len(data))
	}
	copy(cb.buf[cb.head:], data[:first])
	if remaining := uint32(len(data)) - first; remaining > 0 {
		copy(cb.buf[:remaining], data[first:])
	}
	cb.head = (cb.head + uint32(len(data))) % cb.capacity
	cb.size += uint32(len(data))

	if n := cb.recvWaiters.PopFront(); n != nil {
		t := n.Value
		t.waitNode = nil
		t.state = StateReady
	}
	return ResultSuccess
}

// Receive copies exactly len(data) bytes out of the buffer, blocking the
// calling task as BlockedOnCircularBuffer if fewer than len(data) bytes
// are currently available. timeoutTicks == 0 means try without blocking.
func (cb *CircularBuffer) Receive(data []byte, timeoutTicks uint32) Result {
	k := cb.k
	need := uint32(len(data))

	k.mu.Lock()
	if cb.size >= need {
		cb.popLocked(data)
		k.mu.Unlock()
		return ResultSuccess
	}
	if timeoutTicks == 0 {
		k.mu.Unlock()
		return ResultCircularBufferTimeout
	}

	caller := k.current
	caller.state = StateBlockedOnCircularBuffer
	caller.timeoutTick = k.clock.Now() + timeoutTicks
	caller.waitNode = NewNode(caller)
	cb.recvWaiters.PushBack(caller.waitNode)
	switched := k.rescheduleLocked(caller)
	k.mu.Unlock()
	if switched {
		<-caller.turn
	}

	for {
		k.mu.Lock()
		if cb.size >= need {
			caller.unlinkWait()
			cb.popLocked(data)
			k.mu.Unlock()
			return ResultSuccess
		}
		if TickAfter(k.clock.Now(), caller.timeoutTick) {
			caller.unlinkWait()
			k.mu.Unlock()
			return ResultCircularBufferTimeout
		}
		switched := k.rescheduleLocked(caller)
		k.mu.Unlock()
		if switched {
			<-caller.turn
		}
	}
}

func (cb *CircularBuffer) popLocked(data []byte) {
	need := uint32(len(data))
	first := cb.capacity - cb.tail
	if first > need {
		first = need
	}
	copy(data[:first], cb.buf[cb.tail:])
	if remaining := need - first; remaining > 0 {
		copy(data[first:], cb.buf[:remaining])
	}
	cb.tail = (cb.tail + need) % cb.capacity
	cb.size -= need
}

// Size returns the number of bytes currently held.
func (cb *CircularBuffer) Size() uint32 {
	cb.k.mu.Lock()
	defer cb.k.mu.Unlock()
	return cb.size
}
