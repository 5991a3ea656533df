package kernel

import "bytes"

// State is a task's position in the lifecycle state machine.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateDelayed
	StatePaused
	StateBlockedOnSemaphore
	StateBlockedOnQueue
	StateBlockedOnCircularBuffer
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateDelayed:
		return "delayed"
	case StatePaused:
		return "paused"
	case StateBlockedOnSemaphore:
		return "blocked-on-semaphore"
	case StateBlockedOnQueue:
		return "blocked-on-queue"
	case StateBlockedOnCircularBuffer:
		return "blocked-on-circular-buffer"
	default:
		return "unknown"
	}
}

const maxNameLen = 19

// Handle identifies a task across the kernel's public surface. It is
// stable for the task's lifetime and never reused.
type Handle uint32

// Task is the kernel's task descriptor (TCB). Every field here is owned by
// the kernel; application code only ever sees a Handle.
type Task struct {
	handle   Handle
	node     *Node[*Task] // registry linkage
	waitNode *Node[*Task] // membership in at most one waiter set at a time

	entry func(arg any)
	arg   any
	name  [maxNameLen + 1]byte

	priority uint32
	state    State

	stack []byte // heap-allocated, sentinel-filled shadow stack (see FreeStack)

	wakeTick    uint32
	timeoutTick uint32
	semGranted  bool

	cyclesIn   uint64
	execCycles uint64

	turn chan struct{}
}

func newTask(entry func(arg any), name string, stack []byte, arg any, priority uint32) *Task {
	t := &Task{
		entry:    entry,
		arg:      arg,
		stack:    stack,
		priority: priority,
		state:    StateReady,
		turn:     make(chan struct{}, 1),
	}
	for i := range t.stack {
		t.stack[i] = stackSentinel
	}
	n := copy(t.name[:maxNameLen], name)
	t.name[n] = 0
	return t
}

// Handle returns the task's stable identifier.
func (t *Task) Handle() Handle { return t.handle }

// Priority returns the task's fixed priority.
func (t *Task) Priority() uint32 { return t.priority }

// State returns the task's current lifecycle state.
func (t *Task) State() State { return t.state }

// Name returns the task's NUL-terminated name, trimmed of the terminator.
func (t *Task) Name() string {
	i := bytes.IndexByte(t.name[:], 0)
	if i < 0 {
		i = len(t.name)
	}
	return string(t.name[:i])
}

// ExecutionCycles returns the task's accumulated execution cycle count.
func (t *Task) ExecutionCycles() uint64 { return t.execCycles }

// unlinkWait removes t from whatever waiter set it currently belongs to,
// if any. Safe to call on a task that isn't waiting on anything.
func (t *Task) unlinkWait() {
	if t.waitNode == nil {
		return
	}
	if owner := t.waitNode.owner; owner != nil {
		owner.Remove(t.waitNode)
	}
	t.waitNode = nil
}

// freeStackWords scans from the low end of the shadow stack until the
// sentinel pattern breaks and reports the unused word count.
//
// Honest limitation: this kernel's tasks run on real Go goroutine stacks,
// not on the shadow stack allocated here for bookkeeping, so nothing ever
// actually writes into it. The scan below is the same algorithm a real
// watermark scan would run; under the host simulation backend it always
// reports the full allocation, because nothing consumes it.
func (t *Task) freeStackWords() uint32 {
	i := 0
	for i < len(t.stack) && t.stack[i] == stackSentinel {
		i++
	}
	return uint32(i / 4)
}
