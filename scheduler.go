package ecs

import (
	"github.com/TheBitDrifter/mask"
	"go.uber.org/zap"
)

// SystemDescriptor declares one scheduled unit of work together with the
// component types it reads and writes, so the Scheduler can detect
// conflicts between systems without inspecting their closures (spec.md
// section 4.6). ReadIDs/WriteIDs remain the source of truth for
// accumulating a batch's combined mask; readMask/writeMask exist purely
// so ContainsAny can answer the pairwise conflict question against a
// mask.Mask, mirroring how warehouse's query.go builds a mask.Mask from
// a caller-provided id list via Mark before testing it.
type SystemDescriptor struct {
	Name      string
	ReadIDs   []ComponentTypeId
	WriteIDs  []ComponentTypeId
	readMask  mask.Mask
	writeMask mask.Mask
	Task      func()
}

func newSystemDescriptor(name string, reads, writes []ComponentTypeId, task func()) SystemDescriptor {
	d := SystemDescriptor{Name: name, ReadIDs: reads, WriteIDs: writes, Task: task}
	for _, id := range reads {
		d.readMask.Mark(uint32(id))
	}
	for _, id := range writes {
		d.writeMask.Mark(uint32(id))
	}
	return d
}

// conflicts reports whether a and b touch component types in a way that
// cannot run concurrently: any write by one overlapping a read or write
// by the other (spec.md section 4.6's WW/RW/WR conflict rule).
func (a SystemDescriptor) conflicts(b SystemDescriptor) bool {
	if a.writeMask.ContainsAny(b.writeMask) {
		return true
	}
	if a.writeMask.ContainsAny(b.readMask) {
		return true
	}
	if b.writeMask.ContainsAny(a.readMask) {
		return true
	}
	return false
}

// Scheduler batches registered systems into conflict-free groups and
// runs each batch either inline (single member) or across the
// registry's worker pool, with a wait barrier between batches, per
// spec.md section 4.6 and original_source/Sceduler.h.
//
// Register's sink semantics (spec.md section 9's open question):
// registration order is preserved and is significant — it decides where
// batch boundaries fall, since each system is checked only against the
// batch currently being built (see batches). Systems are never
// reordered; within a batch, member order is unspecified once
// dispatched to the pool.
type Scheduler struct {
	registry *Registry
	entries  []SystemDescriptor
	pool     JobPool
}

func newScheduler(r *Registry) *Scheduler {
	return &Scheduler{registry: r, pool: newGoroutinePool(0)}
}

// SetPool overrides the worker pool systems are dispatched to.
func (s *Scheduler) SetPool(p JobPool) {
	if p != nil {
		s.pool = p
	}
}

// Register appends a system descriptor to the schedule.
func (s *Scheduler) Register(entry SystemDescriptor) {
	s.entries = append(s.entries, entry)
}

// Reset discards every registered system.
func (s *Scheduler) Reset() {
	s.entries = s.entries[:0]
}

// batches walks registered systems in registration order, accumulating
// them into a single current batch until the next system conflicts with
// that batch's combined read/write masks; only then does it seal the
// current batch and open a fresh one. A system is never checked against
// an earlier, already-sealed batch, matching original_source/Sceduler.h's
// RunAll (spec.md section 4.6).
func (s *Scheduler) batches() [][]SystemDescriptor {
	var groups [][]SystemDescriptor
	var current []SystemDescriptor
	var currentRead, currentWrite mask.Mask

	seal := func() {
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = nil
		currentRead = mask.Mask{}
		currentWrite = mask.Mask{}
	}

	for _, entry := range s.entries {
		if len(current) > 0 {
			clash := currentWrite.ContainsAny(entry.writeMask) ||
				currentWrite.ContainsAny(entry.readMask) ||
				entry.writeMask.ContainsAny(currentRead)
			if clash {
				seal()
			}
		}
		current = append(current, entry)
		for _, id := range entry.ReadIDs {
			currentRead.Mark(uint32(id))
		}
		for _, id := range entry.WriteIDs {
			currentWrite.Mark(uint32(id))
		}
	}
	seal()

	return groups
}

// RunAll executes every registered system exactly once, grouped into
// conflict-free batches. Batches run strictly in order; within a batch,
// members run concurrently on the pool (or inline when the batch has a
// single member) and RunAll waits for the whole batch before starting
// the next one.
func (s *Scheduler) RunAll() {
	r := s.registry
	r.Lock()
	defer r.Unlock()
	batches := s.batches()
	r.logger.Debug("scheduler run", zap.Int("systems", len(s.entries)), zap.Int("batches", len(batches)))
	for bi, batch := range batches {
		if len(batch) == 1 {
			batch[0].Task()
			continue
		}
		r.logger.Debug("dispatching batch", zap.Int("batch", bi), zap.Int("size", len(batch)))
		for _, entry := range batch {
			task := entry.Task
			s.pool.Execute(task)
		}
		s.pool.Wait()
	}
}
