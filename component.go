package ecs

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// ComponentTypeId is a small integer naming a component type within a
// process, assigned on first use and stable thereafter (spec.md section 3).
type ComponentTypeId int

var (
	typeCounter   uint32
	typeRegistry  sync.Map // reflect.Type -> ComponentTypeId
	typeRegistryN atomic.Int32
)

// typeID implements the "once-per-type lazy registry keyed by a
// language-provided type token" option from spec.md section 9's design
// notes: the first call for a given T assigns the next counter value,
// every subsequent call for the same T returns the same id. Assignment
// order across distinct T is unspecified but stable within the process,
// exactly as the spec requires.
func typeID[T any]() ComponentTypeId {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := typeRegistry.Load(rt); ok {
		return v.(ComponentTypeId)
	}
	id := ComponentTypeId(atomic.AddUint32(&typeCounter, 1) - 1)
	if int(id) >= Config.MaxComponentTypes {
		panic(ComponentTypeExhaustedError{MaxComponentTypes: Config.MaxComponentTypes})
	}
	actual, loaded := typeRegistry.LoadOrStore(rt, id)
	if !loaded {
		typeRegistryN.Add(1)
	}
	return actual.(ComponentTypeId)
}

// TypeID returns the ComponentTypeId assigned to T, registering it on
// first use. It is most often used to build Exclude() sets, since
// exclusions only need existence checks and not typed access.
func TypeID[T any]() ComponentTypeId {
	return typeID[T]()
}

// registeredComponentTypeCount reports how many distinct component
// types have been assigned an id in this process, mirroring
// original_source/EntityManager.h's ComponentTypeID::GetCount().
func registeredComponentTypeCount() int {
	return int(typeRegistryN.Load())
}

// ComponentType is a lightweight, reusable handle for a component type,
// mirroring the teacher's AccessibleComponent[T]. It only carries the
// type's id; the value itself always lives in whichever Registry it was
// added to, addressed through the free functions Add/Get/Has/Remove.
type ComponentType[T any] struct {
	id ComponentTypeId
}

// NewComponentType registers (or looks up) the ComponentTypeId for T
// and returns a reusable handle for it.
func NewComponentType[T any]() ComponentType[T] {
	return ComponentType[T]{id: typeID[T]()}
}

// ID returns the component type's assigned id.
func (c ComponentType[T]) ID() ComponentTypeId { return c.id }
