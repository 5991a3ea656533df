package kernel

import (
	"testing"
	"time"
)

// TestSpinMutexExcludesConcurrentAccess checks the mutex's basic contract
// under the host scheduler: two tasks incrementing a shared counter inside
// Lock/Unlock never interleave, regardless of scheduling order.
func TestSpinMutexExcludesConcurrentAccess(t *testing.T) {
	k := newTestKernel(t, 64*1024, 20000)
	m := k.NewSpinMutex()

	const itersPerTask = 200
	shared := 0
	done := make(chan struct{}, 2)

	worker := func(any) {
		for i := 0; i < itersPerTask; i++ {
			m.Lock()
			shared++
			m.Unlock()
			k.Yield()
		}
		done <- struct{}{}
		k.DeleteSelf()
	}

	if _, res := k.CreateTask(worker, "A", 256, nil, 4); !res.OK() {
		t.Fatalf("CreateTask(A): %v", res)
	}
	if _, res := k.CreateTask(worker, "B", 256, nil, 4); !res.OK() {
		t.Fatalf("CreateTask(B): %v", res)
	}

	go k.Start()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for worker #%d", i+1)
		}
	}

	if shared != 2*itersPerTask {
		t.Fatalf("shared = %d, want %d", shared, 2*itersPerTask)
	}
}
