package ecs

// density-adaptive thresholds lifted straight from
// original_source/ECS/FilterQuery.h's ForEachRunImpl: below these
// entity-count/min-store-count combinations a query walks the
// smallest store and probes Has() on the rest; above them it ANDs
// every store's bitmap once and walks the joint set (spec.md section 4.5).
func useSparsePath(entityCount, minStoreCount int) bool {
	low := entityCount <= 1000
	medium := entityCount > 1000 && entityCount <= 10000 && minStoreCount <= 1500
	mediumHigh := entityCount > 10000 && entityCount <= 20000 && minStoreCount <= 3000
	return low || medium || mediumHigh
}

// dispatchGroupSize mirrors FilterQuery.h's
// std::max(32u, entityCount / (threadCount * 4)).
func dispatchGroupSize(jointCount, threads int) int {
	g := jointCount / (threads * 4)
	if g < 32 {
		g = 32
	}
	return g
}

// View[T] iterates every entity owning a component of type T.
type View[T any] struct {
	r     *Registry
	store *sparseStore[T]
}

// NewView constructs a View over component type T.
func NewView[T any](r *Registry) *View[T] {
	return &View[T]{r: r, store: ensureSparseStore[T](r)}
}

// Run invokes fn for every (entity, *T) pair currently in the store.
// Structural mutations issued from within fn are deferred until Run
// returns (spec.md section 4.4's lock contract).
func (v *View[T]) Run(fn func(e Entity, c *T)) {
	v.r.Lock()
	defer v.r.Unlock()
	entities := v.store.Indices()
	for i := range entities {
		fn(entities[i], &v.store.packed[i])
	}
}

// ForEach invokes fn for every component of type T, without the entity.
func (v *View[T]) ForEach(fn func(c *T)) {
	v.r.Lock()
	defer v.r.Unlock()
	v.store.IterateRaw(fn)
}

// Filter2 iterates entities owning components of both T1 and T2.
type Filter2[T1, T2 any] struct {
	r        *Registry
	s1       *sparseStore[T1]
	s2       *sparseStore[T2]
	excludes []ComponentTypeId
}

// NewFilter2 constructs a Filter2 over component types T1 and T2,
// grounded on edwinsyarief-lazyecs/filter_generated.go's
// NewFilter2[T1,T2 any](w *World) *Filter2[T1,T2] convention, since Go
// forbids declaring Run/Exclude as generic methods directly on Registry.
func NewFilter2[T1, T2 any](r *Registry) *Filter2[T1, T2] {
	return &Filter2[T1, T2]{r: r, s1: ensureSparseStore[T1](r), s2: ensureSparseStore[T2](r)}
}

// Exclude adds component types that must be absent from any matched entity.
func (f *Filter2[T1, T2]) Exclude(ids ...ComponentTypeId) *Filter2[T1, T2] {
	f.excludes = append(f.excludes, ids...)
	return f
}

func (f *Filter2[T1, T2]) excludeMask() bitmap {
	if len(f.excludes) == 0 {
		return nil
	}
	joint := newBitmap(f.r.maxEntities)
	for _, id := range f.excludes {
		if int(id) >= len(f.r.stores) || f.r.stores[id] == nil {
			continue
		}
		for e := range f.r.stores[id].Mask().All() {
			joint.Set(e)
		}
	}
	return joint
}

// Run invokes fn for every entity matching the filter.
func (f *Filter2[T1, T2]) Run(fn func(e Entity, c1 *T1, c2 *T2)) {
	f.r.Lock()
	defer f.r.Unlock()
	excl := f.excludeMask()

	counts := [2]int{f.s1.Len(), f.s2.Len()}
	minCount, minIdx := counts[0], 0
	if counts[1] < minCount {
		minCount, minIdx = counts[1], 1
	}

	if useSparsePath(f.r.LiveEntityCount(), minCount) {
		var scan []Entity
		if minIdx == 0 {
			scan = f.s1.Indices()
		} else {
			scan = f.s2.Indices()
		}
		for _, e := range scan {
			if excl != nil && excl.Test(e) {
				continue
			}
			c1, ok1 := f.s1.Get(e)
			if !ok1 {
				continue
			}
			c2, ok2 := f.s2.Get(e)
			if !ok2 {
				continue
			}
			fn(e, c1, c2)
		}
		return
	}

	joint := f.s1.Mask().Clone()
	joint.AndWith(f.s2.Mask())
	if excl != nil {
		joint.AndNotWith(excl)
	}
	for e := range joint.All() {
		c1, _ := f.s1.Get(e)
		c2, _ := f.s2.Get(e)
		fn(e, c1, c2)
	}
}

// Dispatch runs fn for every matching entity across the given worker
// pool, always via the dense joint-mask path (spec.md section
// 4.5: parallel dispatch never uses the sparse path), partitioning set
// bits into groups sized by dispatchGroupSize.
func (f *Filter2[T1, T2]) Dispatch(pool JobPool, fn func(e Entity, c1 *T1, c2 *T2)) {
	f.r.Lock()
	defer f.r.Unlock()
	excl := f.excludeMask()

	joint := f.s1.Mask().Clone()
	joint.AndWith(f.s2.Mask())
	if excl != nil {
		joint.AndNotWith(excl)
	}

	members := collectEntities(joint)
	if len(members) == 0 {
		return
	}
	group := dispatchGroupSize(len(members), pool.ThreadCount())
	for start := 0; start < len(members); start += group {
		end := start + group
		if end > len(members) {
			end = len(members)
		}
		chunk := members[start:end]
		pool.Execute(func() {
			for _, e := range chunk {
				c1, _ := f.s1.Get(e)
				c2, _ := f.s2.Get(e)
				fn(e, c1, c2)
			}
		})
	}
	pool.Wait()
}

// Filter3 iterates entities owning components of T1, T2, and T3.
type Filter3[T1, T2, T3 any] struct {
	r        *Registry
	s1       *sparseStore[T1]
	s2       *sparseStore[T2]
	s3       *sparseStore[T3]
	excludes []ComponentTypeId
}

func NewFilter3[T1, T2, T3 any](r *Registry) *Filter3[T1, T2, T3] {
	return &Filter3[T1, T2, T3]{r: r, s1: ensureSparseStore[T1](r), s2: ensureSparseStore[T2](r), s3: ensureSparseStore[T3](r)}
}

func (f *Filter3[T1, T2, T3]) Exclude(ids ...ComponentTypeId) *Filter3[T1, T2, T3] {
	f.excludes = append(f.excludes, ids...)
	return f
}

func (f *Filter3[T1, T2, T3]) excludeMask() bitmap {
	if len(f.excludes) == 0 {
		return nil
	}
	joint := newBitmap(f.r.maxEntities)
	for _, id := range f.excludes {
		if int(id) >= len(f.r.stores) || f.r.stores[id] == nil {
			continue
		}
		for e := range f.r.stores[id].Mask().All() {
			joint.Set(e)
		}
	}
	return joint
}

func (f *Filter3[T1, T2, T3]) Run(fn func(e Entity, c1 *T1, c2 *T2, c3 *T3)) {
	f.r.Lock()
	defer f.r.Unlock()
	excl := f.excludeMask()

	counts := [3]int{f.s1.Len(), f.s2.Len(), f.s3.Len()}
	minCount, minIdx := counts[0], 0
	for i := 1; i < 3; i++ {
		if counts[i] < minCount {
			minCount, minIdx = counts[i], i
		}
	}

	if useSparsePath(f.r.LiveEntityCount(), minCount) {
		var scan []Entity
		switch minIdx {
		case 0:
			scan = f.s1.Indices()
		case 1:
			scan = f.s2.Indices()
		default:
			scan = f.s3.Indices()
		}
		for _, e := range scan {
			if excl != nil && excl.Test(e) {
				continue
			}
			c1, ok1 := f.s1.Get(e)
			c2, ok2 := f.s2.Get(e)
			c3, ok3 := f.s3.Get(e)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			fn(e, c1, c2, c3)
		}
		return
	}

	joint := f.s1.Mask().Clone()
	joint.AndWith(f.s2.Mask())
	joint.AndWith(f.s3.Mask())
	if excl != nil {
		joint.AndNotWith(excl)
	}
	for e := range joint.All() {
		c1, _ := f.s1.Get(e)
		c2, _ := f.s2.Get(e)
		c3, _ := f.s3.Get(e)
		fn(e, c1, c2, c3)
	}
}

// Filter4 iterates entities owning components of T1, T2, T3, and T4.
// Arity is bounded at 4 (vs. lazyecs's 6), a scope decision recorded in
// DESIGN.md's query.go notes.
type Filter4[T1, T2, T3, T4 any] struct {
	r        *Registry
	s1       *sparseStore[T1]
	s2       *sparseStore[T2]
	s3       *sparseStore[T3]
	s4       *sparseStore[T4]
	excludes []ComponentTypeId
}

func NewFilter4[T1, T2, T3, T4 any](r *Registry) *Filter4[T1, T2, T3, T4] {
	return &Filter4[T1, T2, T3, T4]{
		r: r, s1: ensureSparseStore[T1](r), s2: ensureSparseStore[T2](r),
		s3: ensureSparseStore[T3](r), s4: ensureSparseStore[T4](r),
	}
}

func (f *Filter4[T1, T2, T3, T4]) Exclude(ids ...ComponentTypeId) *Filter4[T1, T2, T3, T4] {
	f.excludes = append(f.excludes, ids...)
	return f
}

func (f *Filter4[T1, T2, T3, T4]) excludeMask() bitmap {
	if len(f.excludes) == 0 {
		return nil
	}
	joint := newBitmap(f.r.maxEntities)
	for _, id := range f.excludes {
		if int(id) >= len(f.r.stores) || f.r.stores[id] == nil {
			continue
		}
		for e := range f.r.stores[id].Mask().All() {
			joint.Set(e)
		}
	}
	return joint
}

func (f *Filter4[T1, T2, T3, T4]) Run(fn func(e Entity, c1 *T1, c2 *T2, c3 *T3, c4 *T4)) {
	f.r.Lock()
	defer f.r.Unlock()
	excl := f.excludeMask()

	counts := [4]int{f.s1.Len(), f.s2.Len(), f.s3.Len(), f.s4.Len()}
	minCount, minIdx := counts[0], 0
	for i := 1; i < 4; i++ {
		if counts[i] < minCount {
			minCount, minIdx = counts[i], i
		}
	}

	if useSparsePath(f.r.LiveEntityCount(), minCount) {
		var scan []Entity
		switch minIdx {
		case 0:
			scan = f.s1.Indices()
		case 1:
			scan = f.s2.Indices()
		case 2:
			scan = f.s3.Indices()
		default:
			scan = f.s4.Indices()
		}
		for _, e := range scan {
			if excl != nil && excl.Test(e) {
				continue
			}
			c1, ok1 := f.s1.Get(e)
			c2, ok2 := f.s2.Get(e)
			c3, ok3 := f.s3.Get(e)
			c4, ok4 := f.s4.Get(e)
			if !ok1 || !ok2 || !ok3 || !ok4 {
				continue
			}
			fn(e, c1, c2, c3, c4)
		}
		return
	}

	joint := f.s1.Mask().Clone()
	joint.AndWith(f.s2.Mask())
	joint.AndWith(f.s3.Mask())
	joint.AndWith(f.s4.Mask())
	if excl != nil {
		joint.AndNotWith(excl)
	}
	for e := range joint.All() {
		c1, _ := f.s1.Get(e)
		c2, _ := f.s2.Get(e)
		c3, _ := f.s3.Get(e)
		c4, _ := f.s4.Get(e)
		fn(e, c1, c2, c3, c4)
	}
}
