package kernel

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestSoftwareTimerAutoReload is S6: a timer with timeout 100 ticks and
// auto-reload registered against a 1000Hz tick rate. After roughly 1,050
// ticks of wall time, the fire count should be 10 or 11 depending on exactly
// where the final partial period lands.
func TestSoftwareTimerAutoReload(t *testing.T) {
	k := newTestKernel(t, 64*1024, 1000)

	var count atomic.Int64
	var timer SoftwareTimer
	if res := k.InitTimer(&timer, 100, func(any) { count.Add(1) }, nil, true); !res.OK() {
		t.Fatalf("InitTimer: %v", res)
	}
	if res := k.StartTimer(&timer); !res.OK() {
		t.Fatalf("StartTimer: %v", res)
	}

	go k.Start()
	time.Sleep(1050 * time.Millisecond)

	got := count.Load()
	if got != 10 && got != 11 {
		t.Fatalf("fire count = %d, want 10 or 11", got)
	}
}

func TestSoftwareTimerStartTwiceIsAlreadyActive(t *testing.T) {
	k := newTestKernel(t, 64*1024, 1000)
	var timer SoftwareTimer
	if res := k.InitTimer(&timer, 100, func(any) {}, nil, false); !res.OK() {
		t.Fatalf("InitTimer: %v", res)
	}
	if res := k.StartTimer(&timer); !res.OK() {
		t.Fatalf("StartTimer: %v", res)
	}
	if res := k.StartTimer(&timer); res != ResultTimerAlreadyActive {
		t.Fatalf("second StartTimer = %v, want TimerAlreadyActive", res)
	}
}

func TestSoftwareTimerStopWhenStoppedIsAlreadyStopped(t *testing.T) {
	k := newTestKernel(t, 64*1024, 1000)
	var timer SoftwareTimer
	if res := k.InitTimer(&timer, 100, func(any) {}, nil, false); !res.OK() {
		t.Fatalf("InitTimer: %v", res)
	}
	if res := k.StopTimer(&timer); res != ResultTimerAlreadyStopped {
		t.Fatalf("StopTimer on never-started timer = %v, want TimerAlreadyStopped", res)
	}
}

func TestSoftwareTimerOneShotFiresOnce(t *testing.T) {
	k := newTestKernel(t, 64*1024, 1000)

	var count atomic.Int64
	var timer SoftwareTimer
	if res := k.InitTimer(&timer, 50, func(any) { count.Add(1) }, nil, false); !res.OK() {
		t.Fatalf("InitTimer: %v", res)
	}
	if res := k.StartTimer(&timer); !res.OK() {
		t.Fatalf("StartTimer: %v", res)
	}

	go k.Start()
	time.Sleep(300 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Fatalf("fire count = %d, want 1", got)
	}
}
