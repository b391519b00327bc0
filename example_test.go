package ecs_test

import (
	"fmt"

	"github.com/bitforge/ecs"
)

// Position is a simple component for 2D coordinates.
type Position struct {
	X, Y float64
}

// Velocity is a simple component for 2D movement.
type Velocity struct {
	X, Y float64
}

// Name identifies an entity.
type Name struct {
	Value string
}

// Example_basic shows entity creation, component attachment, and a
// two-component query over a registry.
func Example_basic() {
	reg := ecs.NewRegistry()

	for i := 0; i < 3; i++ {
		e, _ := reg.CreateEntity()
		ecs.Add(reg, e, Position{})
	}

	for i := 0; i < 4; i++ {
		e, _ := reg.CreateEntity()
		ecs.Add(reg, e, Position{})
		ecs.Add(reg, e, Velocity{X: 1, Y: 2})
	}

	named, _ := reg.CreateEntity()
	ecs.Add(reg, named, Name{Value: "Player"})
	ecs.Add(reg, named, Position{X: 10, Y: 20})
	ecs.Add(reg, named, Velocity{X: 1, Y: 2})

	matched := 0
	ecs.NewFilter2[Position, Velocity](reg).Run(func(e ecs.Entity, pos *Position, vel *Velocity) {
		matched++
	})
	fmt.Printf("Found %d entities with position and velocity\n", matched)

	pos, _ := ecs.Get[Position](reg, named)
	vel, _ := ecs.Get[Velocity](reg, named)
	pos.X += vel.X
	pos.Y += vel.Y
	name, _ := ecs.Get[Name](reg, named)
	fmt.Printf("Updated %s to position (%.1f, %.1f)\n", name.Value, pos.X, pos.Y)

	// Output:
	// Found 5 entities with position and velocity
	// Updated Player to position (11.0, 22.0)
}

// Example_exclude shows Filter2.Exclude narrowing a match set.
func Example_exclude() {
	reg := ecs.NewRegistry()

	type Frozen struct{}

	moving, _ := reg.CreateEntity()
	ecs.Add(reg, moving, Position{})
	ecs.Add(reg, moving, Velocity{})

	frozen, _ := reg.CreateEntity()
	ecs.Add(reg, frozen, Position{})
	ecs.Add(reg, frozen, Velocity{})
	ecs.Add(reg, frozen, Frozen{})

	matched := 0
	ecs.NewFilter2[Position, Velocity](reg).
		Exclude(ecs.TypeID[Frozen]()).
		Run(func(e ecs.Entity, pos *Position, vel *Velocity) {
			matched++
		})
	fmt.Printf("%d entity moves\n", matched)

	// Output:
	// 1 entity moves
}
