package ecs

import (
	"go.uber.org/zap"
)

// StorageKind selects a Store's backing strategy for a component type,
// per spec.md section 4.3's "alternative storages".
type StorageKind int

const (
	// StorageSparse is the default: packed array + paged sparse map.
	StorageSparse StorageKind = iota
	// StorageSingleton holds at most one component, for world-global state.
	StorageSingleton
	// StorageSmall is a capped inline store (at most 64 elements).
	StorageSmall
)

type deferredOpKind int

const (
	deferredCreate deferredOpKind = iota
	deferredDestroy
	deferredAdd
	deferredRemove
)

// deferredOp captures a structural mutation requested while the
// registry was locked by a live query or scheduled batch; apply is
// invoked once the registry unlocks, per SPEC_FULL.md's "deferred
// structural operations" supplement, adapted from the teacher's
// opQueue/Lock mechanism (operation_queue.go, storage.go).
type deferredOp struct {
	kind  deferredOpKind
	apply func(r *Registry)
}

// Registry owns the entity allocator and a type-indexed table of
// component stores; it creates/destroys entities, routes component
// operations to the right store, produces queries, and dispatches
// scheduled systems (spec.md section 4.4).
type Registry struct {
	allocator   *entityAllocator
	stores      []componentStore
	scheduler   *Scheduler
	lockDepth   int
	deferred    []deferredOp
	logger      *zap.Logger
	maxEntities uint32
	pageSize    int
	smallCap    int
}

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*Registry)

// WithLogger overrides Config.Logger for this registry only.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry constructs a Registry sized per Config.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		allocator:   newEntityAllocator(Config.MaxEntities),
		stores:      make([]componentStore, Config.MaxComponentTypes),
		logger:      Config.Logger,
		maxEntities: Config.MaxEntities,
		pageSize:    Config.SparsePageSize,
		smallCap:    64,
	}
	r.scheduler = newScheduler(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) ensureCapacity(id ComponentTypeId) {
	if int(id) < len(r.stores) {
		return
	}
	grown := make([]componentStore, int(id)+1)
	copy(grown, r.stores)
	r.stores = grown
}

// Locked reports whether a live query or scheduled batch currently
// holds the registry, deferring structural mutations.
func (r *Registry) Locked() bool { return r.lockDepth > 0 }

// Lock increments the lock depth. While locked, Add, Emplace, Remove,
// AddSingleton, RemoveSingleton, RemoveSmall and the Enqueue* calls are
// queued rather than applied immediately; CreateEntity and DestroyEntity
// fail with LockedRegistryError, and AddSmall applies immediately.
func (r *Registry) Lock() { r.lockDepth++ }

// Unlock decrements the lock depth and, once it reaches zero, flushes
// every queued structural mutation in FIFO order.
func (r *Registry) Unlock() {
	if r.lockDepth == 0 {
		return
	}
	r.lockDepth--
	if r.lockDepth > 0 {
		return
	}
	pending := r.deferred
	r.deferred = nil
	for _, op := range pending {
		op.apply(r)
	}
}

// CreateEntity allocates a fresh or recycled entity id. Returns
// LockedRegistryError while the registry is locked; use
// EnqueueCreateEntity in that case.
func (r *Registry) CreateEntity() (Entity, error) {
	if r.Locked() {
		return 0, LockedRegistryError{}
	}
	e, err := r.allocator.create()
	if err != nil {
		r.logger.Warn("entity allocator exhausted", zap.Uint32("max_entities", r.maxEntities))
	}
	return e, err
}

// EnqueueCreateEntity queues entity creation for when the registry
// unlocks; if the registry is not currently locked it creates
// immediately, returning the new entity synchronously via the callback.
func (r *Registry) EnqueueCreateEntity(fn func(Entity)) {
	if !r.Locked() {
		e, err := r.allocator.create()
		if err == nil {
			fn(e)
		}
		return
	}
	r.deferred = append(r.deferred, deferredOp{
		kind: deferredCreate,
		apply: func(reg *Registry) {
			e, err := reg.allocator.create()
			if err == nil {
				fn(e)
			}
		},
	})
}

// DestroyEntity removes e from every store that holds a component for
// it and recycles its id. Returns LockedRegistryError while locked.
func (r *Registry) DestroyEntity(e Entity) error {
	if r.Locked() {
		return LockedRegistryError{}
	}
	r.destroyNow(e)
	return nil
}

func (r *Registry) destroyNow(e Entity) {
	for _, s := range r.stores {
		if s != nil {
			s.Remove(e)
		}
	}
	r.allocator.destroy(e)
}

// EnqueueDestroyEntity defers destruction until the registry unlocks,
// or destroys immediately if it is not locked.
func (r *Registry) EnqueueDestroyEntity(e Entity) {
	if !r.Locked() {
		r.destroyNow(e)
		return
	}
	r.deferred = append(r.deferred, deferredOp{
		kind:  deferredDestroy,
		apply: func(reg *Registry) { reg.destroyNow(e) },
	})
}

// Alive reports whether e has been issued by this registry's allocator
// (CreateEntity/EnqueueCreateEntity) and not destroyed since. It
// consults only the allocator, not the component stores: a component
// added to an id that was never created does not make that id alive.
// Since the sparse-set model keeps no generation counter at the entity
// level (spec.md section 3), a recycled id is alive again once reissued.
func (r *Registry) Alive(e Entity) bool {
	return uint32(e) < r.allocator.next && !containsFree(r.allocator.freeList, e)
}

func containsFree(freeList []Entity, e Entity) bool {
	for _, f := range freeList {
		if f == e {
			return true
		}
	}
	return false
}

// LiveEntityCount returns the registry's live entity count, used by the
// query engine's density-adaptive heuristic (spec.md section 4.5).
func (r *Registry) LiveEntityCount() int {
	return r.allocator.liveCount()
}

// ComponentTypeCount reports how many distinct component types have
// been registered in this process (original_source/EntityManager.h's
// ComponentTypeID::GetCount()).
func (r *Registry) ComponentTypeCount() int {
	return registeredComponentTypeCount()
}

// Clear empties every store and the entity allocator.
func (r *Registry) Clear() {
	for _, s := range r.stores {
		if s != nil {
			s.Clear()
		}
	}
	r.allocator.clear()
	r.deferred = nil
	r.lockDepth = 0
}

// SetStorageType replaces the Store backing component type T with one
// built by the given strategy, clearing any existing data for T first
// ("type switch = reset", per spec.md section 9's design notes).
// Returns StorageMismatchError if a query currently holds the registry.
func SetStorageType[T any](r *Registry, kind StorageKind) error {
	if r.Locked() {
		return StorageMismatchError{ComponentType: typeID[T]()}
	}
	id := typeID[T]()
	r.ensureCapacity(id)
	if r.stores[id] != nil {
		r.stores[id].Clear()
	}
	switch kind {
	case StorageSingleton:
		r.stores[id] = newSingletonStore[T](r.maxEntities)
	case StorageSmall:
		r.stores[id] = newSmallStore[T](r.maxEntities, r.smallCap)
	default:
		r.stores[id] = newSparseStore[T](r.maxEntities, r.pageSize)
	}
	r.logger.Debug("storage strategy switched",
		zap.Int("component_type", int(id)),
		zap.Int("strategy", int(kind)),
	)
	return nil
}

func ensureSparseStore[T any](r *Registry) *sparseStore[T] {
	id := typeID[T]()
	r.ensureCapacity(id)
	if r.stores[id] == nil {
		r.stores[id] = newSparseStore[T](r.maxEntities, r.pageSize)
	}
	store, ok := r.stores[id].(*sparseStore[T])
	if !ok {
		panic(StorageMismatchError{ComponentType: id})
	}
	return store
}

// Add attaches a component of type T to e, creating T's store on first
// use. If e already owns T, the existing value is replaced in place
// (spec.md section 4.3); use Get first to mutate an existing value
// without a full replace.
func Add[T any](r *Registry, e Entity, v T) *T {
	if r.Locked() {
		ptr := new(T)
		*ptr = v
		r.deferred = append(r.deferred, deferredOp{
			kind:  deferredAdd,
			apply: func(reg *Registry) { *ensureSparseStore[T](reg).Add(e) = *ptr },
		})
		return ptr
	}
	store := ensureSparseStore[T](r)
	ptr := store.Add(e)
	*ptr = v
	return ptr
}

// Emplace is Add's zero-value variant: it creates the store on first
// use and returns a pointer the caller constructs in place, mirroring
// the teacher's EmplaceComponent.
func Emplace[T any](r *Registry, e Entity) *T {
	if r.Locked() {
		ptr := new(T)
		r.deferred = append(r.deferred, deferredOp{
			kind:  deferredAdd,
			apply: func(reg *Registry) { *ensureSparseStore[T](reg).Add(e) = *ptr },
		})
		return ptr
	}
	return ensureSparseStore[T](r).Add(e)
}

// Get returns a pointer to e's component of type T and whether it exists.
func Get[T any](r *Registry, e Entity) (*T, bool) {
	return ensureSparseStore[T](r).Get(e)
}

// MustGet returns a pointer to e's component of type T, panicking with
// AbsentEntityError if it does not exist — the programming-error half
// of spec.md section 7's AbsentEntity contract.
func MustGet[T any](r *Registry, e Entity) *T {
	return ensureSparseStore[T](r).MustGet(e, typeID[T]())
}

// Has reports whether e owns a component of type T.
func Has[T any](r *Registry, e Entity) bool {
	return ensureSparseStore[T](r).Has(e)
}

// Remove detaches e's component of type T, if any; removing an absent
// component is a silent no-op (spec.md section 7).
func Remove[T any](r *Registry, e Entity) {
	if r.Locked() {
		r.deferred = append(r.deferred, deferredOp{
			kind:  deferredRemove,
			apply: func(reg *Registry) { ensureSparseStore[T](reg).Remove(e) },
		})
		return
	}
	ensureSparseStore[T](r).Remove(e)
}

func ensureSingletonStore[T any](r *Registry) *singletonStore[T] {
	id := typeID[T]()
	r.ensureCapacity(id)
	if r.stores[id] == nil {
		r.stores[id] = newSingletonStore[T](r.maxEntities)
	}
	store, ok := r.stores[id].(*singletonStore[T])
	if !ok {
		panic(StorageMismatchError{ComponentType: id})
	}
	return store
}

// AddSingleton attaches T to e under the singleton storage strategy;
// call SetStorageType[T](r, StorageSingleton) first. Only the first
// caller wins ownership until the component is removed (store_singleton.go).
func AddSingleton[T any](r *Registry, e Entity, v T) *T {
	if r.Locked() {
		ptr := new(T)
		*ptr = v
		r.deferred = append(r.deferred, deferredOp{
			kind:  deferredAdd,
			apply: func(reg *Registry) { *ensureSingletonStore[T](reg).Add(e) = *ptr },
		})
		return ptr
	}
	ptr := ensureSingletonStore[T](r).Add(e)
	*ptr = v
	return ptr
}

// GetSingleton returns the singleton-strategy component of type T owned
// by e, if any.
func GetSingleton[T any](r *Registry, e Entity) (*T, bool) {
	return ensureSingletonStore[T](r).Get(e)
}

// HasSingleton reports whether e owns the singleton-strategy component
// of type T.
func HasSingleton[T any](r *Registry, e Entity) bool {
	return ensureSingletonStore[T](r).Has(e)
}

// RemoveSingleton releases e's ownership of the singleton-strategy
// component of type T, if e is the current owner.
func RemoveSingleton[T any](r *Registry, e Entity) {
	if r.Locked() {
		r.deferred = append(r.deferred, deferredOp{
			kind:  deferredRemove,
			apply: func(reg *Registry) { ensureSingletonStore[T](reg).Remove(e) },
		})
		return
	}
	ensureSingletonStore[T](r).Remove(e)
}

func ensureSmallStore[T any](r *Registry) *smallStore[T] {
	id := typeID[T]()
	r.ensureCapacity(id)
	if r.stores[id] == nil {
		r.stores[id] = newSmallStore[T](r.maxEntities, r.smallCap)
	}
	store, ok := r.stores[id].(*smallStore[T])
	if !ok {
		panic(StorageMismatchError{ComponentType: id})
	}
	return store
}

// AddSmall attaches T to e under the small-inline storage strategy;
// call SetStorageType[T](r, StorageSmall) first. Returns
// CapacityExceededError once the strategy's fixed capacity is full
// (store_small.go). Unlike Add/AddSingleton, AddSmall applies
// immediately even while the registry is locked: its capacity failure
// cannot be reported back to the caller once deferred, so code that
// runs from within a live query or scheduled batch should prefer
// Add[T] (sparse storage) for components it mutates structurally.
func AddSmall[T any](r *Registry, e Entity, v T) (*T, error) {
	ptr, err := ensureSmallStore[T](r).Add(e)
	if err != nil {
		return nil, err
	}
	*ptr = v
	return ptr, nil
}

// GetSmall returns the small-strategy component of type T owned by e, if any.
func GetSmall[T any](r *Registry, e Entity) (*T, bool) {
	return ensureSmallStore[T](r).Get(e)
}

// HasSmall reports whether e owns the small-strategy component of type T.
func HasSmall[T any](r *Registry, e Entity) bool {
	return ensureSmallStore[T](r).Has(e)
}

// RemoveSmall detaches e's small-strategy component of type T, if any.
func RemoveSmall[T any](r *Registry, e Entity) {
	if r.Locked() {
		r.deferred = append(r.deferred, deferredOp{
			kind:  deferredRemove,
			apply: func(reg *Registry) { ensureSmallStore[T](reg).Remove(e) },
		})
		return
	}
	ensureSmallStore[T](r).Remove(e)
}

// Scheduler exposes the registry's scheduler for Schedule/ExecuteScheduled.
func (r *Registry) Scheduler() *Scheduler { return r.scheduler }

// Schedule registers a system with the scheduler (spec.md section 4.6).
func (r *Registry) Schedule(name string, reads, writes []ComponentTypeId, task func()) {
	r.scheduler.Register(newSystemDescriptor(name, reads, writes, task))
}

// ExecuteScheduled runs the scheduler once, in batches (spec.md section 4.6).
func (r *Registry) ExecuteScheduled() {
	r.scheduler.RunAll()
}
