/*
Package ecs provides a data-oriented Entity-Component-System runtime.

It stores component values keyed by opaque entity handles, answers
multi-component intersection queries over large entity populations, and
schedules per-entity systems in parallel while preserving the observable
semantics of sequential execution under a read/write dependency model.

Core Concepts:

  - Entity: an opaque 32-bit handle.
  - Component: a plain-data value attached to at most one entity per type.
  - Store: the container responsible for every instance of one component type.
  - Query: a View (single component) or Filter (intersection of several,
    with optional exclusions) executed serially or across a worker pool.
  - System: a scheduled procedure over matching entities, batched by the
    Scheduler so that conflicting reads/writes never run concurrently.

Basic Usage:

	reg := ecs.NewRegistry()

	e, _ := reg.CreateEntity()
	ecs.Add(reg, e, Position{X: 1, Y: 2})
	ecs.Add(reg, e, Velocity{X: 0, Y: 1})

	filter := ecs.NewFilter2[Position, Velocity](reg)
	filter.Run(func(e ecs.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

ecs is a standalone runtime; it does not depend on any particular game
loop, renderer, or network layer.
*/
package ecs
