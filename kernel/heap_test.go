package kernel

import (
	"testing"
	"unsafe"
)

func TestHeapAllocateZeroIsBadParameter(t *testing.T) {
	h, res := NewHeap(make([]byte, 4096))
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	if _, res := h.Allocate(0); res != ResultBadParameter {
		t.Fatalf("Allocate(0) = %v, want BadParameter", res)
	}
}

func TestHeapAllocateExhaustion(t *testing.T) {
	h, res := NewHeap(make([]byte, 256))
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	if _, res := h.Allocate(10000); res != ResultNoMemory {
		t.Fatalf("Allocate(10000) = %v, want NoMemory", res)
	}
}

func TestHeapRoundTripFreeBytes(t *testing.T) {
	pool := make([]byte, 4096)
	h, res := NewHeap(pool)
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	initialFree := h.FreeBytes()

	p1, res := h.Allocate(100)
	if !res.OK() {
		t.Fatalf("Allocate(100): %v", res)
	}
	p2, res := h.Allocate(200)
	if !res.OK() {
		t.Fatalf("Allocate(200): %v", res)
	}
	h.Deallocate(p1)
	h.Deallocate(p2)

	if got := h.FreeBytes(); got != initialFree {
		t.Fatalf("FreeBytes() after balanced alloc/free = %d, want %d", got, initialFree)
	}
}

func TestHeapCoalesceReusesFreedRegion(t *testing.T) {
	// Mirrors the coalesce scenario: allocate 100, allocate 200, free the
	// first, allocate 90 must reuse the first region, then freeing both
	// returns free-bytes to its initial value.
	pool := make([]byte, 4096)
	h, res := NewHeap(pool)
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	initialFree := h.FreeBytes()

	p1, res := h.Allocate(100)
	if !res.OK() {
		t.Fatalf("Allocate(100): %v", res)
	}
	p2, res := h.Allocate(200)
	if !res.OK() {
		t.Fatalf("Allocate(200): %v", res)
	}
	h.Deallocate(p1)

	p3, res := h.Allocate(90)
	if !res.OK() {
		t.Fatalf("Allocate(90): %v", res)
	}
	if p3 != p1 {
		t.Fatalf("Allocate(90) = %p, want reuse of freed region %p", p3, p1)
	}

	h.Deallocate(p3)
	h.Deallocate(p2)

	if got := h.FreeBytes(); got != initialFree {
		t.Fatalf("FreeBytes() after S5 sequence = %d, want %d", got, initialFree)
	}
}

func TestHeapAllocationsAre8ByteAligned(t *testing.T) {
	h, res := NewHeap(make([]byte, 4096))
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	p, res := h.Allocate(3)
	if !res.OK() {
		t.Fatalf("Allocate(3): %v", res)
	}
	if uintptr(p)%8 != 0 {
		t.Fatalf("Allocate(3) returned unaligned pointer %p", p)
	}
}

func TestHeapDeallocateNilIsNoop(t *testing.T) {
	h, res := NewHeap(make([]byte, 4096))
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	before := h.FreeBytes()
	h.Deallocate(nil)
	if after := h.FreeBytes(); after != before {
		t.Fatalf("Deallocate(nil) changed FreeBytes: %d -> %d", before, after)
	}
}

func TestHeapCorruptMarkerPanics(t *testing.T) {
	h, res := NewHeap(make([]byte, 4096))
	if !res.OK() {
		t.Fatalf("NewHeap: %v", res)
	}
	p, res := h.Allocate(32)
	if !res.OK() {
		t.Fatalf("Allocate(32): %v", res)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Deallocate with corrupted marker did not panic")
		}
	}()

	// Smash the byte immediately past the payload, where the trailing
	// marker lives.
	tail := (*byte)(unsafe.Pointer(uintptr(p) + 32))
	*tail = 0x00
	h.Deallocate(p)
}
