package ecs

import "testing"

func TestEntityAllocatorCreate(t *testing.T) {
	a := newEntityAllocator(4)

	for i := 0; i < 4; i++ {
		e, err := a.create()
		if err != nil {
			t.Fatalf("create() #%d: unexpected error %v", i, err)
		}
		if e != Entity(i) {
			t.Errorf("create() #%d = %d, want %d", i, e, i)
		}
	}

	if _, err := a.create(); err == nil {
		t.Fatalf("create() beyond max: want EntityExhaustedError, got nil")
	} else if _, ok := err.(EntityExhaustedError); !ok {
		t.Errorf("create() beyond max: got %T, want EntityExhaustedError", err)
	}
}

func TestEntityAllocatorRecycle(t *testing.T) {
	a := newEntityAllocator(2)

	e0, _ := a.create()
	e1, _ := a.create()
	a.destroy(e0)

	recycled, err := a.create()
	if err != nil {
		t.Fatalf("create() after destroy: unexpected error %v", err)
	}
	if recycled != e0 {
		t.Errorf("create() after destroy = %d, want recycled id %d", recycled, e0)
	}

	if _, err := a.create(); err == nil {
		t.Fatalf("create() with both ids live: want EntityExhaustedError, got nil")
	}
	_ = e1
}

func TestEntityAllocatorLiveCount(t *testing.T) {
	a := newEntityAllocator(8)
	for i := 0; i < 5; i++ {
		if _, err := a.create(); err != nil {
			t.Fatalf("create(): %v", err)
		}
	}
	if got := a.liveCount(); got != 5 {
		t.Errorf("liveCount() = %d, want 5", got)
	}

	a.destroy(Entity(2))
	if got := a.liveCount(); got != 4 {
		t.Errorf("liveCount() after destroy = %d, want 4", got)
	}

	a.clear()
	if got := a.liveCount(); got != 0 {
		t.Errorf("liveCount() after clear = %d, want 0", got)
	}
}
