package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/softgrove/vitrine/internal/cache"
	"github.com/softgrove/vitrine/internal/museum"
)

// stubFetcher implements Fetcher for tests.
type stubFetcher struct {
	objects []museum.Object
	err     error
	calls   atomic.Int64
	block   chan struct{} // when non-nil, FetchObjects waits on it
}

func (f *stubFetcher) FetchObjects(ctx context.Context) ([]museum.Object, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.objects, nil
}

// recvUpdate reads one update from ch or fails the test after a second.
func recvUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case up, ok := <-ch:
		if !ok {
			t.Fatal("update channel closed unexpectedly")
		}
		return up
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	return Update{}
}

func TestObjects_ColdStartEmitsEmptyThenFresh(t *testing.T) {
	// Given: an empty cache and a remote source with two objects
	fresh := []museum.Object{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}}
	fetcher := &stubFetcher{objects: fresh}
	store := cache.NewStore()
	repo := NewRepository(fetcher, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// When: a subscription is opened
	updates := repo.Objects(ctx)

	// Then: the first emission is the empty cached snapshot
	first := recvUpdate(t, updates)
	if first.Err != nil {
		t.Fatalf("first emission carries error: %v", first.Err)
	}
	if len(first.Objects) != 0 {
		t.Fatalf("first emission has %d objects, want 0", len(first.Objects))
	}

	// And: the second emission is the fresh listing
	second := recvUpdate(t, updates)
	if second.Err != nil {
		t.Fatalf("second emission carries error: %v", second.Err)
	}
	if len(second.Objects) != 2 || second.Objects[0].ID != 1 || second.Objects[1].ID != 2 {
		t.Errorf("second emission = %v, want the two fetched objects", second.Objects)
	}

	// And: the cache now holds exactly the fetched objects
	snap := store.Snapshot()
	if len(snap) != 2 || snap[0].ID != 1 || snap[1].ID != 2 {
		t.Errorf("cache snapshot = %v, want the two fetched objects", snap)
	}
}

func TestObjects_StaleDeliveredBeforeFailure(t *testing.T) {
	// Given: a cache with one stale object and a failing remote source
	stale := []museum.Object{{ID: 5, Title: "Stale"}}
	fetchErr := errors.New("remote: catalog unavailable")
	fetcher := &stubFetcher{err: fetchErr}
	store := cache.NewStore()
	store.Write(stale)
	repo := NewRepository(fetcher, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := repo.Objects(ctx)

	// Then: the stale value arrives first
	first := recvUpdate(t, updates)
	if first.Err != nil {
		t.Fatalf("first emission carries error: %v", first.Err)
	}
	if len(first.Objects) != 1 || first.Objects[0].ID != 5 {
		t.Fatalf("first emission = %v, want the stale [{ID:5}]", first.Objects)
	}

	// And: the failure terminates the stream
	second := recvUpdate(t, updates)
	if !errors.Is(second.Err, fetchErr) {
		t.Fatalf("second emission err = %v, want the fetch error", second.Err)
	}

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("stream should close after the terminal failure")
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed after failure")
	}
}

func TestObjects_FailureDoesNotClobberCache(t *testing.T) {
	stale := []museum.Object{{ID: 5}}
	store := cache.NewStore()
	store.Write(stale)
	repo := NewRepository(&stubFetcher{err: errors.New("down")}, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := repo.Objects(ctx)
	recvUpdate(t, updates)
	recvUpdate(t, updates)

	if snap := store.Snapshot(); len(snap) != 1 || snap[0].ID != 5 {
		t.Errorf("cache snapshot = %v, want the stale value untouched", snap)
	}
}

func TestObjects_EachSubscriptionFetches(t *testing.T) {
	// Given: two concurrent subscriptions against the same repository
	fresh := []museum.Object{{ID: 1}, {ID: 2}}
	fetcher := &stubFetcher{objects: fresh}
	repo := NewRepository(fetcher, cache.NewStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := repo.Objects(ctx)
	b := repo.Objects(ctx)

	// Then: both independently reach the fresh listing
	for _, updates := range []<-chan Update{a, b} {
		var last Update
		deadline := time.After(time.Second)
	settle:
		for {
			select {
			case up := <-updates:
				if up.Err != nil {
					t.Fatalf("unexpected stream error: %v", up.Err)
				}
				last = up
				if len(last.Objects) == 2 {
					break settle
				}
			case <-deadline:
				t.Fatal("subscription never saw the fresh listing")
			}
		}
	}

	// And: no request de-duplication happened. The second fetch launches
	// right after its subscription's first emission, so poll briefly.
	deadline := time.After(time.Second)
	for fetcher.calls.Load() != 2 {
		select {
		case <-deadline:
			t.Fatalf("fetch calls = %d, want 2 (one per subscription)", fetcher.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestObjects_ForwardsWritesFromOtherSubscriptions(t *testing.T) {
	// Given: a live subscription whose own refresh already completed
	fetcher := &stubFetcher{objects: []museum.Object{{ID: 1}}}
	store := cache.NewStore()
	repo := NewRepository(fetcher, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := repo.Objects(ctx)
	recvUpdate(t, updates) // empty
	recvUpdate(t, updates) // fresh [{ID:1}]

	// When: another writer replaces the cache
	store.Write([]museum.Object{{ID: 9}})

	// Then: the subscription observes the replacement
	next := recvUpdate(t, updates)
	if next.Err != nil {
		t.Fatalf("unexpected stream error: %v", next.Err)
	}
	if len(next.Objects) != 1 || next.Objects[0].ID != 9 {
		t.Errorf("forwarded snapshot = %v, want [{ID:9}]", next.Objects)
	}
}

func TestObjects_CancelStopsStream(t *testing.T) {
	fetcher := &stubFetcher{block: make(chan struct{})}
	repo := NewRepository(fetcher, cache.NewStore())

	ctx, cancel := context.WithCancel(context.Background())
	updates := repo.Objects(ctx)
	recvUpdate(t, updates) // initial empty snapshot

	cancel()

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected closed stream after cancel, got a value")
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed after context cancel")
	}
}

func TestObjectByID_DelegatesToCache(t *testing.T) {
	fetcher := &stubFetcher{objects: []museum.Object{{ID: 5, Title: "Found"}}}
	store := cache.NewStore()
	repo := NewRepository(fetcher, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Populate the cache through a listing subscription.
	updates := repo.Objects(ctx)
	recvUpdate(t, updates)
	recvUpdate(t, updates)

	lk := <-repo.ObjectByID(ctx, 5)
	if !lk.Found || lk.Object.Title != "Found" {
		t.Errorf("ObjectByID(5) = %+v, want the cached object", lk)
	}

	lk = <-repo.ObjectByID(ctx, 999)
	if lk.Found {
		t.Error("ObjectByID(999) should be absent")
	}

	// A lookup never triggers its own fetch.
	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1 (listing only)", got)
	}
}
