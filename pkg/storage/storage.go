package storage

// Storage is the root interface for the entire data layer. It composes
// all available storage operations. Components should depend on the
// more granular interfaces (UserStore, GroupStore, EventStore) instead
// of this one.
type Storage interface {
	UserStore
	GroupStore
	EventStore
}
