// Package kv is the local persistence substrate: named slots holding
// serialized JSON text. A store handle is injected into every component
// that needs durable state; there are no package-level singletons.
package kv

import "context"

// Store reads and writes named slots. Get reports presence with the bool;
// an absent slot is not an error.
type Store interface {
	Get(ctx context.Context, slot string) (string, bool, error)
	Set(ctx context.Context, slot, value string) error
	Delete(ctx context.Context, slot string) error
}

// Slot names. All durable state lives under these keys and survives
// restarts; entries are cleared only by the workflow that owns them.
const (
	SlotCurrentUser          = "current_user"
	SlotLocalToilets         = "local_toilets"
	SlotLocalUsers           = "local_users"
	SlotAssignments          = "provider_assignments"
	SlotPendingCleanings     = "pending_cleanings"
	SlotPendingRegistrations = "pending_registrations"
)

// SnapshotSlot returns the cache slot for a remote collection.
func SnapshotSlot(collection string) string {
	return "cache_" + collection
}
