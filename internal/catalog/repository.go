// Package catalog coordinates the remote data source and the local cache,
// exposing the combined result as per-subscription update streams.
package catalog

import (
	"context"

	"github.com/softgrove/vitrine/internal/cache"
	"github.com/softgrove/vitrine/internal/museum"
)

// Fetcher is the remote data source contract the repository depends on.
type Fetcher interface {
	FetchObjects(ctx context.Context) ([]museum.Object, error)
}

// Update is one emission of an Objects stream. Exactly one of Objects and
// Err is meaningful; an Update with a non-nil Err is the stream's final
// emission.
type Update struct {
	Objects []museum.Object
	Err     error
}

// Repository serves the catalog listing cache-first with a remote refresh
// per subscription.
type Repository struct {
	remote Fetcher
	store  *cache.Store
}

// NewRepository creates a Repository over the given remote source and cache.
func NewRepository(remote Fetcher, store *cache.Store) *Repository {
	return &Repository{remote: remote, store: store}
}

// Objects returns a stream of catalog listings for one subscription.
//
// The first emission is the cached snapshot (stale or empty). A refresh is
// then launched for this subscription; on success the result is written to
// the cache and flows back through the stream, so a cold start sees at most
// two emissions: empty, then fresh. The stream keeps forwarding later cache
// replacements made by concurrent subscriptions. On refresh failure the
// stream emits a final Update carrying the error and closes; the UI must
// re-subscribe to retry. Each subscription runs its own refresh; there is
// no cross-subscriber de-duplication, and concurrent refreshes race with
// last-write-wins on the cache.
func (r *Repository) Objects(ctx context.Context) <-chan Update {
	out := make(chan Update)

	go func() {
		defer close(out)

		snapshots := r.store.Watch(ctx)

		// The cached snapshot is replayed into the watch buffer before
		// Watch returns, so the stale emission always precedes any
		// refresh outcome.
		select {
		case snap := <-snapshots:
			select {
			case out <- Update{Objects: snap}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}

		fetchDone := make(chan error, 1)
		go func() {
			objects, err := r.remote.FetchObjects(ctx)
			if err == nil {
				r.store.Write(objects)
			}
			fetchDone <- err
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				select {
				case out <- Update{Objects: snap}:
				case <-ctx.Done():
					return
				}
			case err := <-fetchDone:
				if err != nil {
					select {
					case out <- Update{Err: err}:
					case <-ctx.Done():
					}
					return
				}
				// Successful refresh: the cache write re-emits through
				// snapshots. Stop selecting on fetchDone.
				fetchDone = nil
			}
		}
	}()

	return out
}

// ObjectByID returns a stream of lookups for a single object, re-emitting
// on every cache replacement. It never triggers a refresh: the listing
// subscription is expected to have populated the cache.
func (r *Repository) ObjectByID(ctx context.Context, id int) <-chan cache.Lookup {
	return r.store.WatchObject(ctx, id)
}
