package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)

	for i := 1; i <= 3; i++ {
		if err := rq.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if !rq.IsFull() {
		t.Fatal("queue should be full")
	}
	if err := rq.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full queue = %v, want ErrQueueFull", err)
	}

	v, err := rq.Peek()
	if err != nil || v != 1 {
		t.Fatalf("Peek = %d, %v; want 1, nil", v, err)
	}

	for want := 1; want <= 3; want++ {
		got, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue = %d, want %d", got, want)
		}
	}
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Dequeue on empty queue = %v, want ErrQueueEmpty", err)
	}
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[string](2)
	_ = rq.Enqueue("a")
	_ = rq.Enqueue("b")
	_, _ = rq.Dequeue()
	_ = rq.Enqueue("c")

	if rq.Len() != 2 {
		t.Fatalf("Len = %d, want 2", rq.Len())
	}
	first, _ := rq.Dequeue()
	second, _ := rq.Dequeue()
	if first != "b" || second != "c" {
		t.Fatalf("got %q %q, want b c", first, second)
	}
}
