// Package cache holds the most recently fetched catalog listing in process
// memory and exposes it as a subscribable latest-value cell.
//
// There is no eviction, size bound, or TTL: the store is a single slot
// replaced wholesale on each write. Concurrent writers race with
// last-write-wins.
package cache

import (
	"context"
	"sync"

	"github.com/softgrove/vitrine/internal/museum"
)

// Lookup is the result of watching a single object by ID.
// Found is false when the latest snapshot does not contain the ID;
// a miss is not an error.
type Lookup struct {
	Object museum.Object
	Found  bool
}

// Store is the in-memory latest-value cell for the catalog listing.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	snapshot []museum.Object
	watchers map[int]chan []museum.Object
	nextID   int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{watchers: make(map[int]chan []museum.Object)}
}

// Write replaces the current snapshot atomically and notifies all active
// watchers. The input slice is copied; later mutation by the caller cannot
// corrupt the snapshot.
func (s *Store) Write(objects []museum.Object) {
	snap := append([]museum.Object(nil), objects...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	for _, ch := range s.watchers {
		conflate(ch, snap)
	}
}

// conflate delivers snap on a cap-1 watcher channel, discarding any
// undelivered older snapshot first. Callers hold s.mu, so the send after
// the drain never blocks.
func conflate(ch chan []museum.Object, snap []museum.Object) {
	select {
	case <-ch:
	default:
	}
	ch <- snap
}

// Watch returns a channel that immediately yields the current snapshot
// (possibly empty) and then yields again on every replacement. Slow
// consumers observe conflated updates: intermediate snapshots may be
// skipped but the latest written snapshot is always eventually delivered,
// and no snapshot that was never written can appear. The channel is closed
// when ctx is cancelled; it never terminates on its own.
func (s *Store) Watch(ctx context.Context) <-chan []museum.Object {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan []museum.Object, 1)
	ch <- append([]museum.Object(nil), s.snapshot...)
	s.watchers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// WatchObject returns a channel that yields the Lookup for id in the
// current snapshot and re-emits on every snapshot replacement. The channel
// is closed when ctx is cancelled.
func (s *Store) WatchObject(ctx context.Context, id int) <-chan Lookup {
	out := make(chan Lookup, 1)
	snapshots := s.Watch(ctx)

	go func() {
		defer close(out)
		for snap := range snapshots {
			// Conflate: only this goroutine sends on out, so after the
			// drain the cap-1 send cannot block.
			select {
			case <-out:
			default:
			}
			out <- findObject(snap, id)
		}
	}()

	return out
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() []museum.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]museum.Object(nil), s.snapshot...)
}

// Get returns the object with the given ID from the current snapshot.
func (s *Store) Get(id int) (museum.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lk := findObject(s.snapshot, id)
	return lk.Object, lk.Found
}

func findObject(snap []museum.Object, id int) Lookup {
	for _, obj := range snap {
		if obj.ID == id {
			return Lookup{Object: obj, Found: true}
		}
	}
	return Lookup{}
}
