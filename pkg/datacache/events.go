package datacache

// Kind selects the cache bucket of an entity.
type Kind string

const (
	KindDocument     Kind = "document"
	KindLinkInstance Kind = "linkInstance"
)

// EntityRef addresses one cache entry.
type EntityRef struct {
	Kind       Kind
	ResourceID string
	EntityID   string
}

// Event is a mutation that may make cached data values stale. The set of
// events is closed; Cache.Apply handles each of them.
type Event interface {
	isEvent()
}

// Created is published when an optimistically created entity receives its
// server id. PreviousID is the temporary id it was cached under.
type Created struct {
	Ref        EntityRef
	PreviousID string
}

// Patched is published when part of the entity data is replaced locally.
type Patched struct {
	Ref EntityRef
}

// Updated is published when the whole entity data is replaced locally.
type Updated struct {
	Ref EntityRef
}

// UpdateSucceeded is published when the server confirms a write.
type UpdateSucceeded struct {
	Ref EntityRef
}

// UpdateFailed is published after a failed write has been reverted locally.
type UpdateFailed struct {
	Ref EntityRef
}

// EntityRemoved is published when an entity leaves the local state.
type EntityRemoved struct {
	Ref EntityRef
}

// AttributesChanged is published when attributes of a resource are created,
// changed or removed.
type AttributesChanged struct {
	Kind       Kind
	ResourceID string
}

// ResourceDeleted is published when a collection or link type is deleted.
type ResourceDeleted struct {
	Kind       Kind
	ResourceID string
}

// ConstraintDataChanged is published when shared constraint data, such as
// the user directory, changes.
type ConstraintDataChanged struct{}

func (Created) isEvent()               {}
func (Patched) isEvent()               {}
func (Updated) isEvent()               {}
func (UpdateSucceeded) isEvent()       {}
func (UpdateFailed) isEvent()          {}
func (EntityRemoved) isEvent()         {}
func (AttributesChanged) isEvent()     {}
func (ResourceDeleted) isEvent()       {}
func (ConstraintDataChanged) isEvent() {}
