package kernel

import (
	"testing"
	"time"
)

// TestSemaphoreFIFOHandoff is S2: three equal-priority waiters call
// wait(1000) in order; three signals 10 ticks apart should wake them in
// the same order they waited.
func TestSemaphoreFIFOHandoff(t *testing.T) {
	k := newTestKernel(t, 64*1024, 20000)
	sem := k.NewSemaphore(0)

	order := make(chan string, 3)
	mk := func(name string) func(any) {
		return func(any) {
			if res := sem.Wait(1000); !res.OK() {
				return
			}
			order <- name
			k.DeleteSelf()
		}
	}
	for _, name := range []string{"W1", "W2", "W3"} {
		if _, res := k.CreateTask(mk(name), name, 256, nil, 4); !res.OK() {
			t.Fatalf("CreateTask(%s): %v", name, res)
		}
	}

	signaler := func(any) {
		for i := 0; i < 3; i++ {
			k.Delay(10)
			sem.Signal()
		}
		k.DeleteSelf()
	}
	if _, res := k.CreateTask(signaler, "main", 256, nil, 5); !res.OK() {
		t.Fatalf("CreateTask(main): %v", res)
	}

	go k.Start()

	var got []string
	for i := 0; i < 3; i++ {
		select {
		case name := <-order:
			got = append(got, name)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for waiter #%d", i+1)
		}
	}

	want := []string{"W1", "W2", "W3"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("wake order = %v, want %v", got, want)
		}
	}
}

func TestSemaphoreWaitTimeoutOnEmpty(t *testing.T) {
	k := newTestKernel(t, 64*1024, 20000)
	sem := k.NewSemaphore(0)

	result := make(chan Result, 1)
	task := func(any) {
		result <- sem.Wait(1)
		k.DeleteSelf()
	}
	if _, res := k.CreateTask(task, "waiter", 256, nil, 4); !res.OK() {
		t.Fatalf("CreateTask: %v", res)
	}

	go k.Start()

	select {
	case r := <-result:
		if r != ResultSemaphoreTimeout {
			t.Fatalf("Wait(1) on empty semaphore = %v, want SemaphoreTimeout", r)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for semaphore timeout")
	}
}

func TestSemaphoreSignalBusy(t *testing.T) {
	k := newTestKernel(t, 64*1024, 20000)
	sem := k.NewSemaphore(1)

	if res := sem.Signal(); res != ResultSemaphoreBusy {
		t.Fatalf("Signal() on already-signaled semaphore = %v, want SemaphoreBusy", res)
	}
}
