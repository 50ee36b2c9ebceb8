package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/infrastructure/metrics"
	"github.com/productivitybrain/core/internal/ports"
)

// DefaultKeyPrefix namespaces the persisted collection keys
const DefaultKeyPrefix = "productivity-brain"

// Store persists the six record collections as JSON arrays in a
// KeyValueStorage. Every mutation rewrites its whole collection.
type Store struct {
	kv      ports.KeyValueStorage
	prefix  string
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location

	// mu serializes read-modify-write cycles across all collections
	mu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]chan ports.ChangeEvent
	nextSub int

	healthMu sync.RWMutex
	health   ports.StoreHealth
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the timezone used for "today" and habit dates
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a store over kv
func New(kv ports.KeyValueStorage, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		prefix: DefaultKeyPrefix,
		logger: log.WithComponent("store"),
		now:    time.Now,
		loc:    time.Local,
		subs:   make(map[int]chan ports.ChangeEvent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the store's location
func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Location returns the store's timezone
func (s *Store) Location() *time.Location {
	return s.loc
}

// Key returns the storage key of a collection
func (s *Store) Key(c ports.Collection) string {
	return s.prefix + "-" + string(c)
}

func (s *Store) collectionForKey(key string) (ports.Collection, bool) {
	name, ok := strings.CutPrefix(key, s.prefix+"-")
	if !ok {
		return "", false
	}
	for _, c := range ports.Collections {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// timestamp is the instant recorded on new and updated records
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// newID builds "<kind>-<unix millis>-<9 random chars>", retrying on the
// unlikely collision with an existing id.
func (s *Store) newID(kind string, taken func(string) bool) string {
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
		id := fmt.Sprintf("%s-%d-%s", kind, s.now().UnixMilli(), suffix)
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// Health reports whether the most recent write reached the backend
func (s *Store) Health() ports.StoreHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()

	h := s.health
	if h.LastFailureAt != nil {
		at := *h.LastFailureAt
		h.LastFailureAt = &at
	}
	return h
}

// Ping probes the backend when it has a remote dependency
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.kv.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) recordWriteFailure(c ports.Collection, op string, err error) {
	s.logger.LogStorageFailure(string(c), op, err)
	s.metrics.PersistenceFailure(string(c))

	at := s.now().UTC()
	s.healthMu.Lock()
	s.health.Degraded = true
	s.health.Failures++
	s.health.LastError = err.Error()
	s.health.LastFailureAt = &at
	s.health.Collection = c
	s.healthMu.Unlock()
}

func (s *Store) recordWriteSuccess() {
	s.healthMu.Lock()
	s.health.Degraded = false
	s.healthMu.Unlock()
}

// Subscribe returns a channel of change events and a function that ends the
// subscription. Events are dropped when the buffer is full.
func (s *Store) Subscribe(buffer int) (<-chan ports.ChangeEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan ports.ChangeEvent, buffer)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(c ports.Collection, op ports.ChangeOp, id string) {
	s.metrics.StoreChange(string(c), string(op))
	s.logger.Debugw("Collection changed", "collection", c, "op", op, "id", id)

	event := ports.ChangeEvent{Collection: c, Op: op, ID: id, At: s.timestamp()}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// WatchExternal forwards changes made by other processes to subscribers. It
// returns immediately when the backend cannot report them.
func (s *Store) WatchExternal(ctx context.Context) error {
	source, ok := s.kv.(ports.ChangeSource)
	if !ok {
		s.logger.Debugw("Storage backend does not report external changes")
		return nil
	}

	err := source.Watch(ctx, func(key string) {
		if c, ok := s.collectionForKey(key); ok {
			s.publish(c, ports.ChangeOpExternal, "")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch storage: %w", err)
	}
	return nil
}

// readAll loads a collection, degrading to empty on any failure
func readAll[T any](ctx context.Context, s *Store, c ports.Collection) []T {
	raw, err := s.kv.Get(ctx, s.Key(c))
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.Warnw("Failed to read collection", "collection", c, "error", err)
		}
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warnw("Discarding malformed collection", "collection", c, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// writeAll replaces a collection; failures are recorded, not returned
func writeAll[T any](ctx context.Context, s *Store, c ports.Collection, items []T) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.recordWriteFailure(c, "encode", err)
		return
	}
	if err := s.kv.Set(ctx, s.Key(c), raw); err != nil {
		s.recordWriteFailure(c, "write", err)
		return
	}
	s.recordWriteSuccess()
}

func getAll[T any](ctx context.Context, s *Store, c ports.Collection) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readAll[T](ctx, s, c)
}

func saveAll[T any](ctx context.Context, s *Store, c ports.Collection, items []T) {
	s.mu.Lock()
	writeAll(ctx, s, c, items)
	s.mu.Unlock()
	s.publish(c, ports.ChangeOpReplace, "")
}

// add appends the record built by create, which receives a fresh id
func add[T any](ctx context.Context, s *Store, c ports.Collection, kind string, idOf func(T) string, create func(id string) T) T {
	s.mu.Lock()
	items := readAll[T](ctx, s, c)
	id := s.newID(kind, func(candidate string) bool {
		for _, item := range items {
			if idOf(item) == candidate {
				return true
			}
		}
		return false
	})
	item := create(id)
	writeAll(ctx, s, c, append(items, item))
	s.mu.Unlock()

	s.publish(c, ports.ChangeOpAdd, id)
	return item
}

// update replaces the first record with id by mutate(record)
func update[T any](ctx context.Context, s *Store, c ports.Collection, id string, idOf func(T) string, mutate func(T) T) (T, bool) {
	s.mu.Lock()
	items := readAll[T](ctx, s, c)
	for i := range items {
		if idOf(items[i]) != id {
			continue
		}
		items[i] = mutate(items[i])
		updated := items[i]
		writeAll(ctx, s, c, items)
		s.mu.Unlock()

		s.publish(c, ports.ChangeOpUpdate, id)
		return updated, true
	}
	s.mu.Unlock()

	var zero T
	return zero, false
}

// remove drops every record with id and reports whether any existed
func remove[T any](ctx context.Context, s *Store, c ports.Collection, id string, idOf func(T) string) bool {
	s.mu.Lock()
	items := readAll[T](ctx, s, c)
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		s.mu.Unlock()
		return false
	}
	writeAll(ctx, s, c, kept)
	s.mu.Unlock()

	s.publish(c, ports.ChangeOpDelete, id)
	return true
}
