package kernel

import (
	"sync"
	"unsafe"
)

// heapMarker frames every block's payload so a corrupted pool is
// detectable on free instead of silently wrecking the chain.
const heapMarker uint32 = 0xDEADBEEF

const stackSentinel byte = 0xA5

// blockHeader sits at the start of every block inside the pool, cast in
// place over the pool's backing array the way a bare-metal allocator
// would over a raw memory region. prev/next are real pointers into that
// same array; they stay valid because the pool slice is never reallocated
// or moved once the heap is initialized.
type blockHeader struct {
	prev, next *blockHeader
	size       uint32 // payload size in bytes, 8-byte aligned
	free       bool
	markerHead uint32
}

var blockHeaderSize = align8(uint32(unsafe.Sizeof(blockHeader{})))

const markerSize = 4

// blockOverhead is the header plus the trailing marker padded to 8 bytes,
// so the next block's header and payload stay 8-byte aligned.
func blockOverhead() uint32 { return blockHeaderSize + align8(markerSize) }

func payloadPtr(b *blockHeader) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(b)) + uintptr(blockHeaderSize))
}

func tailMarkerPtr(b *blockHeader) *uint32 {
	return (*uint32)(unsafe.Pointer(uintptr(payloadPtr(b)) + uintptr(b.size)))
}

func align8(n uint32) uint32 { return (n + 7) &^ 7 }

// Heap is a fixed-pool first-fit allocator with split-on-allocate and
// coalesce-on-free, matching the fixed-pool substrate every other kernel
// module allocates its storage from.
type Heap struct {
	mu   sync.Mutex
	pool []byte
	head *blockHeader
	tail *blockHeader
}

// NewHeap installs a heap over pool. pool must outlive the Heap.
func NewHeap(pool []byte) (*Heap, Result) {
	if len(pool) == 0 {
		return nil, ResultMemoryNotInitialized
	}
	if uint32(len(pool)) <= blockOverhead() {
		return nil, ResultNoMemory
	}
	head := (*blockHeader)(unsafe.Pointer(&pool[0]))
	head.prev = nil
	head.next = nil
	head.free = true
	head.size = align8(uint32(len(pool)) - blockOverhead())
	// align8 may have rounded size up past what's actually available;
	// clamp back down rather than let the tail marker land outside pool.
	for head.size > 0 && uint32(len(pool)) < blockOverhead()+head.size {
		head.size -= 8
	}
	head.markerHead = heapMarker
	h := &Heap{pool: pool, head: head, tail: head}
	*tailMarkerPtr(head) = heapMarker
	return h, ResultSuccess
}

// Allocate returns a pointer to at least n bytes, aligned to 8, or
// ResultNoMemory if no block is large enough. n == 0 is a parameter error.
//
// The search scans forward from the head and backward from the tail
// concurrently, taking whichever direction finds a fit first, to keep the
// average scan length down relative to a single forward pass.
func (h *Heap) Allocate(n uint32) (unsafe.Pointer, Result) {
	if n == 0 {
		return nil, ResultBadParameter
	}
	size := align8(n)

	h.mu.Lock()
	defer h.mu.Unlock()

	fwd, bwd := h.head, h.tail
	for fwd != nil || bwd != nil {
		if fwd != nil {
			if fwd.free && fwd.size >= size {
				h.commitLocked(fwd, size)
				return payloadPtr(fwd), ResultSuccess
			}
			fwd = fwd.next
		}
		if bwd != nil {
			if bwd.free && bwd.size >= size {
				h.commitLocked(bwd, size)
				return payloadPtr(bwd), ResultSuccess
			}
			bwd = bwd.prev
		}
	}
	return nil, ResultNoMemory
}

func (h *Heap) commitLocked(b *blockHeader, size uint32) {
	if b.size >= size+blockOverhead()+8 {
		h.splitLocked(b, size)
	}
	b.free = false
	b.markerHead = heapMarker
	*tailMarkerPtr(b) = heapMarker
}

func (h *Heap) splitLocked(b *blockHeader, size uint32) {
	nb := (*blockHeader)(unsafe.Add(payloadPtr(b), uintptr(size)+uintptr(align8(markerSize))))
	nb.size = b.size - size - blockOverhead()
	nb.free = true
	nb.prev = b
	nb.next = b.next
	nb.markerHead = heapMarker
	if b.next != nil {
		b.next.prev = nb
	} else {
		h.tail = nb
	}
	b.next = nb
	b.size = size
	*tailMarkerPtr(nb) = heapMarker
	*tailMarkerPtr(b) = heapMarker
}

// Deallocate releases a pointer previously returned by Allocate. ptr == nil
// is a no-op. A marker mismatch is treated as memory corruption and is
// fatal, since there is no way to trust the block chain past that point.
func (h *Heap) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	b := (*blockHeader)(unsafe.Pointer(uintptr(ptr) - uintptr(blockHeaderSize)))

	h.mu.Lock()
	defer h.mu.Unlock()

	if b.markerHead != heapMarker || *tailMarkerPtr(b) != heapMarker {
		panic("kernel: heap corruption detected on deallocate")
	}
	b.free = true
	h.joinLocked(b)
}

func (h *Heap) joinLocked(b *blockHeader) {
	if b.prev != nil && b.prev.free {
		b.prev.size += b.size + blockOverhead()
		b.prev.next = b.next
		if b.next != nil {
			b.next.prev = b.prev
		} else {
			h.tail = b.prev
		}
		b = b.prev
	}
	if b.next != nil && b.next.free {
		b.size += b.next.size + blockOverhead()
		b.next = b.next.next
		if b.next != nil {
			b.next.prev = b
		} else {
			h.tail = b
		}
	}
	*tailMarkerPtr(b) = heapMarker
}

// FreeBytes returns the exact sum of free payload bytes.
func (h *Heap) FreeBytes() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var total uint32
	for b := h.head; b != nil; b = b.next {
		if b.free {
			total += b.size
		}
	}
	return total
}

// AllocatedBytes returns the exact sum of allocated payload bytes.
func (h *Heap) AllocatedBytes() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var total uint32
	for b := h.head; b != nil; b = b.next {
		if !b.free {
			total += b.size
		}
	}
	return total
}
