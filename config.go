package ecs

import "go.uber.org/zap"

// Config holds global configuration for the runtime. It mirrors the
// teacher package's package-level Config singleton: set fields once at
// program start, before any Registry is created.
var Config config = config{
	MaxEntities:       262144,
	MaxComponentTypes: 128,
	SparsePageSize:    2048,
	BitmapKind:        BitmapHierarchical,
	Logger:            zap.NewNop(),
}

// BitmapKind selects which membership-bitmap representation every Store
// created by a Registry uses. Spec requires a single representation to
// be used uniformly across a registry; this is where that choice lives.
type BitmapKind int

const (
	// BitmapDense packs MAX_ENTITIES bits into flat 64-bit words.
	BitmapDense BitmapKind = iota
	// BitmapHierarchical uses the three-level summarized bitmap, better
	// suited to sparse component populations.
	BitmapHierarchical
)

type config struct {
	// MaxEntities bounds the entity ID space; CreateEntity fails with
	// EntityExhaustedError once the counter would reach this value.
	MaxEntities uint32
	// MaxComponentTypes bounds how many distinct component types a
	// process may register.
	MaxComponentTypes int
	// SparsePageSize is the page size (in slots) used by sparseStore's
	// paged entity->slot map.
	SparsePageSize int
	// BitmapKind selects the membership-bitmap representation.
	BitmapKind BitmapKind
	// Logger receives structured diagnostics from the registry and its
	// scheduler. Defaults to a no-op logger.
	Logger *zap.Logger
}

// SetLogger installs the structured logger used across the package.
func (c *config) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.Logger = l
}
