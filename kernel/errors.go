package kernel

import "fmt"

// Result is the single error-kind enumeration returned by every kernel
// operation. The zero value, ResultSuccess, means the call did exactly
// what it was asked to do.
type Result uint8

const (
	ResultSuccess Result = iota
	ResultBadParameter
	ResultNoMemory
	ResultMemoryNotInitialized
	ResultSemaphoreBusy
	ResultSemaphoreTimeout
	ResultTimerAlreadyActive
	ResultTimerAlreadyStopped
	ResultQueueFull
	ResultQueueTimeout
	ResultCircularBufferFull
	ResultCircularBufferTimeout
	ResultTaskNotFound
)

var resultText = map[Result]string{
	ResultSuccess:                "success",
	ResultBadParameter:           "bad parameter",
	ResultNoMemory:               "no memory",
	ResultMemoryNotInitialized:   "memory not initialized",
	ResultSemaphoreBusy:          "semaphore busy",
	ResultSemaphoreTimeout:       "semaphore timeout",
	ResultTimerAlreadyActive:     "timer already active",
	ResultTimerAlreadyStopped:    "timer already stopped",
	ResultQueueFull:              "queue full",
	ResultQueueTimeout:           "queue timeout",
	ResultCircularBufferFull:     "circular buffer full",
	ResultCircularBufferTimeout:  "circular buffer timeout",
	ResultTaskNotFound:           "task not found",
}

func (r Result) String() string {
	if s, ok := resultText[r]; ok {
		return s
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// Error satisfies the error interface so a Result can be compared with
// errors.Is by callers that prefer idiomatic Go error handling. Kernel
// code itself never wraps a Result in an error value; callers check the
// Result directly, matching the C-style return-code discipline the
// kernel is ported from.
func (r Result) Error() string { return r.String() }

// OK reports whether r is ResultSuccess.
func (r Result) OK() bool { return r == ResultSuccess }
