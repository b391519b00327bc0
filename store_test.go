package ecs

import "testing"

type storeTestVec struct{ X, Y float64 }

func TestSparseStoreAddGetHasRemove(t *testing.T) {
	s := newSparseStore[storeTestVec](1024, 64)

	e := Entity(5)
	if s.Has(e) {
		t.Fatalf("Has(%d) before Add = true, want false", e)
	}

	ptr := s.Add(e)
	ptr.X, ptr.Y = 1, 2

	got, ok := s.Get(e)
	if !ok {
		t.Fatalf("Get(%d) after Add: ok = false", e)
	}
	if got.X != 1 || got.Y != 2 {
		t.Errorf("Get(%d) = %+v, want {1 2}", e, *got)
	}
	if !s.Has(e) {
		t.Errorf("Has(%d) after Add = false, want true", e)
	}

	s.Remove(e)
	if s.Has(e) {
		t.Errorf("Has(%d) after Remove = true, want false", e)
	}
	if _, ok := s.Get(e); ok {
		t.Errorf("Get(%d) after Remove: ok = true, want false", e)
	}
}

func TestSparseStoreAddReplacesInPlace(t *testing.T) {
	s := newSparseStore[storeTestVec](1024, 64)
	e := Entity(9)

	first := s.Add(e)
	first.X = 10
	second := s.Add(e)
	second.X = 20

	if s.Len() != 1 {
		t.Fatalf("Len() after two Adds on same entity = %d, want 1", s.Len())
	}
	got, _ := s.Get(e)
	if got.X != 20 {
		t.Errorf("Get(%d).X = %v, want 20 (replace in place)", e, got.X)
	}
}

func TestSparseStoreRemoveIsSwapAndKeepsOthersAddressable(t *testing.T) {
	s := newSparseStore[storeTestVec](1024, 64)
	e1, e2, e3 := Entity(1), Entity(2), Entity(3)

	s.Add(e1).X = 1
	s.Add(e2).X = 2
	s.Add(e3).X = 3

	s.Remove(e1)

	if s.Has(e1) {
		t.Errorf("Has(e1) after Remove = true, want false")
	}
	got2, ok := s.Get(e2)
	if !ok || got2.X != 2 {
		t.Errorf("Get(e2) after removing e1 = %+v, ok=%v, want {2 0}, true", got2, ok)
	}
	got3, ok := s.Get(e3)
	if !ok || got3.X != 3 {
		t.Errorf("Get(e3) after removing e1 = %+v, ok=%v, want {3 0}, true", got3, ok)
	}
	if s.Len() != 2 {
		t.Errorf("Len() after Remove = %d, want 2", s.Len())
	}
}

func TestSparseStoreRemoveAbsentIsNoop(t *testing.T) {
	s := newSparseStore[storeTestVec](1024, 64)
	s.Remove(Entity(7)) // must not panic
	if s.Len() != 0 {
		t.Errorf("Len() after Remove on empty store = %d, want 0", s.Len())
	}
}

func TestSparseStoreVersionBumpsOnRemove(t *testing.T) {
	s := newSparseStore[storeTestVec](1024, 64)
	e := Entity(11)

	s.Add(e)
	iv1, _ := s.rawSlot(e)
	v1 := unpackVersion(iv1)

	s.Remove(e)
	iv2, _ := s.rawSlot(e)
	v2 := unpackVersion(iv2)

	if v2 != v1+1 {
		t.Errorf("version after Remove = %d, want %d", v2, v1+1)
	}
	if idx := unpackIndex(iv2); idx != slotTombstone {
		t.Errorf("index after Remove = %d, want tombstone %d", idx, slotTombstone)
	}
}

func TestSparseStorePagesLazilyAllocated(t *testing.T) {
	s := newSparseStore[storeTestVec](100000, 128)
	if len(s.pages) != 0 {
		t.Fatalf("pages allocated before any Add: %d", len(s.pages))
	}
	s.Add(Entity(99999))
	if len(s.pages) == 0 {
		t.Errorf("pages not allocated after Add")
	}
}

func TestSparseStoreClear(t *testing.T) {
	s := newSparseStore[storeTestVec](1024, 64)
	s.Add(Entity(1))
	s.Add(Entity(2))
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
	if s.Has(Entity(1)) {
		t.Errorf("Has(1) after Clear = true, want false")
	}
}
