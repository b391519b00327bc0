package ecs

import "testing"

type ctTestA struct{ X int }
type ctTestB struct{ Y int }

func TestTypeIDStableAndDistinct(t *testing.T) {
	a1 := typeID[ctTestA]()
	b1 := typeID[ctTestB]()
	a2 := typeID[ctTestA]()

	if a1 != a2 {
		t.Errorf("typeID[ctTestA]() not stable: %d then %d", a1, a2)
	}
	if a1 == b1 {
		t.Errorf("typeID[ctTestA]() == typeID[ctTestB]() = %d, want distinct ids", a1)
	}
}

func TestNewComponentType(t *testing.T) {
	ct := NewComponentType[ctTestA]()
	if ct.ID() != typeID[ctTestA]() {
		t.Errorf("NewComponentType[ctTestA]().ID() = %d, want %d", ct.ID(), typeID[ctTestA]())
	}
}
