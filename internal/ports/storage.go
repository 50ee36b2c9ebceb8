package ports

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KeyValueStorage.Get for absent keys
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStorage is the raw persistence capability behind the store: one
// opaque value per key.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ChangeSource is implemented by backends that can report writes made by
// other processes. Watch blocks until ctx is done, calling onChange with the
// affected key.
type ChangeSource interface {
	Watch(ctx context.Context, onChange func(key string)) error
}

// Pinger is implemented by backends with a remote dependency worth probing
type Pinger interface {
	Ping(ctx context.Context) error
}

// Collection names one persisted record collection
type Collection string

const (
	CollectionTasks         Collection = "tasks"
	CollectionEvents        Collection = "events"
	CollectionNotes         Collection = "notes"
	CollectionGoals         Collection = "goals"
	CollectionHabits        Collection = "habits"
	CollectionFocusSessions Collection = "focus-sessions"
)

// Collections lists every collection in persistence order
var Collections = []Collection{
	CollectionTasks,
	CollectionEvents,
	CollectionNotes,
	CollectionGoals,
	CollectionHabits,
	CollectionFocusSessions,
}

type ChangeOp string

const (
	ChangeOpAdd      ChangeOp = "add"
	ChangeOpUpdate   ChangeOp = "update"
	ChangeOpDelete   ChangeOp = "delete"
	ChangeOpReplace  ChangeOp = "replace"
	ChangeOpExternal ChangeOp = "external"
)

// ChangeEvent describes one mutation of a collection
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	Op         ChangeOp   `json:"op"`
	ID         string     `json:"id,omitempty"`
	At         time.Time  `json:"at"`
}

// StoreHealth reports whether recent writes reached the backend
type StoreHealth struct {
	Degraded      bool       `json:"degraded"`
	Failures      int64      `json:"failures"`
	LastError     string     `json:"lastError,omitempty"`
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`
	Collection    Collection `json:"collection,omitempty"`
}
