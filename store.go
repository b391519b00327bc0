package ecs

const (
	slotIndexBits  = 20
	slotIndexMask  = (1 << slotIndexBits) - 1
	slotVersionSft = slotIndexBits
	slotTombstone  = slotIndexMask
)

// componentStore is the type-erased contract every storage strategy
// satisfies (spec.md section 4.3's "polymorphic over the same
// contract"). Type-specific access (Add/Get/IterateRaw) lives on the
// concrete generic types below; the Registry only ever needs this
// narrower surface to route destroy/clear/query-plumbing operations.
type componentStore interface {
	Remove(e Entity)
	Has(e Entity) bool
	Mask() bitmap
	Clear()
	Indices() []Entity
	Len() int
}

// sparsePage is one lazily-allocated bucket of the sparse Entity->slot
// map. Each slot packs a 20-bit packed-array index and a 12-bit version
// that increments on every remove, per spec.md section 3.
type sparsePage []uint32

// sparseStore is the default Store strategy: a packed array of T plus a
// paged sparse map from Entity to packed index, exactly
// original_source/ECS/SparseComponentStorage.h re-armed with the
// replace-in-place Add semantics spec.md section 4.3 specifies.
type sparseStore[T any] struct {
	packed   []T
	entities []Entity
	pages    []sparsePage
	msk      bitmap
	pageSize int
}

func newSparseStore[T any](maxEntities uint32, pageSize int) *sparseStore[T] {
	return &sparseStore[T]{
		msk:      newBitmap(maxEntities),
		pageSize: pageSize,
	}
}

func (s *sparseStore[T]) pageIndex(e Entity) (page, offset int) {
	return int(e) / s.pageSize, int(e) % s.pageSize
}

func (s *sparseStore[T]) ensurePage(p int) sparsePage {
	if p >= len(s.pages) {
		grown := make([]sparsePage, p+1)
		copy(grown, s.pages)
		s.pages = grown
	}
	if s.pages[p] == nil {
		pg := make(sparsePage, s.pageSize)
		for i := range pg {
			pg[i] = slotTombstone
		}
		s.pages[p] = pg
	}
	return s.pages[p]
}

func (s *sparseStore[T]) rawSlot(e Entity) (uint32, bool) {
	p, off := s.pageIndex(e)
	if p >= len(s.pages) || s.pages[p] == nil {
		return 0, false
	}
	return s.pages[p][off], true
}

func unpackIndex(iv uint32) uint32   { return iv & slotIndexMask }
func unpackVersion(iv uint32) uint32 { return iv >> slotVersionSft }
func packSlot(idx, ver uint32) uint32 {
	if idx > slotIndexMask {
		idx = slotTombstone
	}
	return (ver << slotVersionSft) | idx
}

func (s *sparseStore[T]) setSlot(e Entity, idx, ver uint32) {
	p, off := s.pageIndex(e)
	pg := s.ensurePage(p)
	pg[off] = packSlot(idx, ver)
}

func (s *sparseStore[T]) lookup(e Entity) (uint32, bool) {
	iv, ok := s.rawSlot(e)
	if !ok {
		return 0, false
	}
	idx := unpackIndex(iv)
	if idx == slotTombstone {
		return 0, false
	}
	return idx, true
}

// Add appends a default-constructed T and returns a pointer to it. If e
// already owns T, Add replaces in place: the packed length does not
// grow and the pointer addresses the existing slot (spec.md section 4.3).
func (s *sparseStore[T]) Add(e Entity) *T {
	if idx, ok := s.lookup(e); ok {
		return &s.packed[idx]
	}
	var zero T
	idx := uint32(len(s.packed))
	s.packed = append(s.packed, zero)
	s.entities = append(s.entities, e)
	iv, _ := s.rawSlot(e)
	s.setSlot(e, idx, unpackVersion(iv))
	s.msk.Set(e)
	return &s.packed[idx]
}

// Remove swap-removes e's component. Removing an absent entity is a
// no-op, per spec.md section 4.3.
func (s *sparseStore[T]) Remove(e Entity) {
	idx, ok := s.lookup(e)
	if !ok {
		return
	}
	last := uint32(len(s.packed) - 1)
	lastEntity := s.entities[last]
	s.packed[idx] = s.packed[last]
	s.entities[idx] = lastEntity
	if lastEntity != e {
		iv, _ := s.rawSlot(lastEntity)
		s.setSlot(lastEntity, idx, unpackVersion(iv))
	}
	s.packed = s.packed[:last]
	s.entities = s.entities[:last]

	iv, _ := s.rawSlot(e)
	s.setSlot(e, slotTombstone, unpackVersion(iv)+1)
	s.msk.Reset(e)
}

// Get returns a pointer to e's component and whether it exists.
func (s *sparseStore[T]) Get(e Entity) (*T, bool) {
	idx, ok := s.lookup(e)
	if !ok {
		return nil, false
	}
	return &s.packed[idx], true
}

// MustGet panics with AbsentEntityError if e has no component of type T;
// it is the "programming error" half of spec.md section 7's AbsentEntity
// contract (Get's safe half is Get itself).
func (s *sparseStore[T]) MustGet(e Entity, typeID ComponentTypeId) *T {
	ptr, ok := s.Get(e)
	if !ok {
		panic(AbsentEntityError{Entity: e, ComponentType: typeID, Operation: "get"})
	}
	return ptr
}

func (s *sparseStore[T]) Has(e Entity) bool {
	_, ok := s.lookup(e)
	return ok
}

func (s *sparseStore[T]) Mask() bitmap { return s.msk }

func (s *sparseStore[T]) Indices() []Entity { return s.entities }

func (s *sparseStore[T]) Len() int { return len(s.packed) }

// IterateRaw invokes fn for every live element in packed order, which
// equals insertion order modulo swap-removes.
func (s *sparseStore[T]) IterateRaw(fn func(*T)) {
	for i := range s.packed {
		fn(&s.packed[i])
	}
}

func (s *sparseStore[T]) Clear() {
	s.packed = nil
	s.entities = nil
	s.pages = nil
	s.msk.Clear()
}

var _ componentStore = (*sparseStore[int])(nil)
