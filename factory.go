package ecs

// factory centralizes the handful of top-level constructors callers
// reach for most often, mirroring the teacher's package-level Factory
// value (factory.go).
type factory struct{}

// Factory is the package's single constructor namespace.
var Factory factory

// NewRegistry builds a Registry sized per Config.
//
// Go forbids generic methods on a non-generic receiver, so the
// type-parameterized constructors (NewComponentType, NewView,
// NewFilter2..4) stay top-level generic functions rather than joining
// this namespace — the same constraint that pushed Add/Get/Has/Remove
// to free functions in registry.go.
func (f factory) NewRegistry(opts ...RegistryOption) *Registry {
	return NewRegistry(opts...)
}
