package viewstate

import (
	"context"

	"github.com/softgrove/vitrine/internal/cache"
	"github.com/softgrove/vitrine/internal/museum"
)

// DetailState is the UI-facing state of a single object lookup. Found is
// false until the cache's latest snapshot contains the requested ID.
type DetailState struct {
	Object museum.Object
	Found  bool
}

// LookupSource is the repository contract the detail holder depends on.
type LookupSource interface {
	ObjectByID(ctx context.Context, id int) <-chan cache.Lookup
}

// DetailHolder adapts per-object lookup streams for detail surfaces. It is
// a thin passthrough: no buffering and no default-value policy beyond the
// absent state the cache itself reports.
type DetailHolder struct {
	source LookupSource
}

// NewDetailHolder creates a DetailHolder over the given source.
func NewDetailHolder(source LookupSource) *DetailHolder {
	return &DetailHolder{source: source}
}

// Watch returns a stream of detail states for the object with the given
// ID, re-emitting on every cache replacement. The channel closes when ctx
// is cancelled.
func (h *DetailHolder) Watch(ctx context.Context, id int) <-chan DetailState {
	out := make(chan DetailState, 1)
	lookups := h.source.ObjectByID(ctx, id)

	go func() {
		defer close(out)
		for lk := range lookups {
			select {
			case <-out:
			default:
			}
			out <- DetailState{Object: lk.Object, Found: lk.Found}
		}
	}()

	return out
}
