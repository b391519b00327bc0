package ecs

import "github.com/bitforge/ecs/pool"

// JobPool is the scheduler's and query engine's view of a worker pool:
// submit a job, then wait for every job submitted since the last Wait
// to finish. *pool.Pool satisfies it directly; callers can substitute
// their own implementation via Scheduler.SetPool.
type JobPool interface {
	Execute(fn func())
	Wait()
	ThreadCount() int
}

var _ JobPool = (*pool.Pool)(nil)

func newGoroutinePool(threads int) JobPool {
	return pool.New(threads)
}
