package core

// Object is the event-like structure a program reads and writes while it runs.
// Implementations are owned by the caller; an expression only borrows one for
// the duration of a single Execute call and must not retain it.
type Object interface {
	// Get returns the value at path, or false when nothing is there.
	Get(path Path) (Value, bool)

	// Insert stores value at path, creating intermediate containers.
	Insert(path Path, value Value) error

	// Remove deletes the value at path, returning what was removed.
	Remove(path Path) (Value, bool)
}
