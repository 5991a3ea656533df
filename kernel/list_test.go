package kernel

import "testing"

func TestListPushBackOrder(t *testing.T) {
	var l List[int]
	a, b, c := NewNode(1), NewNode(2), NewNode(3)
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	got := l.Slice()
	want := []int{1, 2, 3}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("Slice()[%d] = %d, want %d", i, got[i], v)
		}
	}
}

func TestListRemoveMiddle(t *testing.T) {
	var l List[string]
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	l.Remove(b)

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	got := l.Slice()
	if got[0] != "a" || got[1] != "c" {
		t.Fatalf("Slice() = %v, want [a c]", got)
	}
	if l.Front() != a || l.Back() != c {
		t.Fatalf("front/back not relinked correctly")
	}
}

func TestListPopFrontFIFO(t *testing.T) {
	var l List[int]
	for i := 1; i <= 3; i++ {
		l.PushBack(NewNode(i))
	}
	for i := 1; i <= 3; i++ {
		n := l.PopFront()
		if n == nil || n.Value != i {
			t.Fatalf("PopFront() = %v, want %d", n, i)
		}
	}
	if l.PopFront() != nil {
		t.Fatalf("PopFront() on empty list should be nil")
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
}

func TestListMoveBetweenLists(t *testing.T) {
	var a, b List[int]
	n := NewNode(42)
	a.PushBack(n)
	b.PushBack(n) // should unlink from a automatically

	if a.Len() != 0 {
		t.Fatalf("a.Len() = %d, want 0 after node moved to b", a.Len())
	}
	if b.Len() != 1 {
		t.Fatalf("b.Len() = %d, want 1", b.Len())
	}
}

func TestListRemoveNotMember(t *testing.T) {
	var a, b List[int]
	n := NewNode(1)
	a.PushBack(n)
	b.Remove(n) // no-op: n doesn't belong to b
	if a.Len() != 1 {
		t.Fatalf("a.Len() = %d, want 1 (b.Remove must not touch a)", a.Len())
	}
}
