// Package viewstate adapts repository streams into UI-facing state for the
// presentation surfaces. Holders own the subscription lifetimes so that
// screens only ever subscribe and unsubscribe.
package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/softgrove/vitrine/internal/catalog"
	"github.com/softgrove/vitrine/internal/museum"
)

// DefaultKeepAlive is how long the list holder keeps its upstream
// subscription running after the last subscriber detaches. A brief window
// survives transient re-subscription such as a screen resize or redraw.
const DefaultKeepAlive = 5 * time.Second

// ListState is the UI-facing state of the catalog listing. Objects is
// never nil; before the first emission arrives subscribers see an empty
// listing. A non-nil Err means the upstream refresh failed and the stream
// is dead until Refresh is called.
type ListState struct {
	Objects []museum.Object
	Err     error
}

// ObjectSource is the repository contract the list holder depends on.
type ObjectSource interface {
	Objects(ctx context.Context) <-chan catalog.Update
}

// ListHolder multiplexes one repository Objects subscription to any number
// of UI subscribers. The upstream is started lazily on the first subscriber
// and cancelled a keep-alive window after the last one detaches. The last
// known state is replayed to every new subscriber.
type ListHolder struct {
	source    ObjectSource
	keepAlive time.Duration

	mu        sync.Mutex
	subs      map[int]chan ListState
	nextID    int
	last      ListState
	upstream  context.CancelFunc // nil when the upstream is not running
	stopTimer *time.Timer
	done      bool // holder closed, no restarts
}

// ListOption configures a ListHolder.
type ListOption func(*ListHolder)

// WithKeepAlive sets the idle keep-alive window.
func WithKeepAlive(d time.Duration) ListOption {
	return func(h *ListHolder) { h.keepAlive = d }
}

// NewListHolder creates a ListHolder over the given source.
func NewListHolder(source ObjectSource, opts ...ListOption) *ListHolder {
	h := &ListHolder{
		source:    source,
		keepAlive: DefaultKeepAlive,
		subs:      make(map[int]chan ListState),
		last:      ListState{Objects: []museum.Object{}},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscriber scoped to ctx. The returned channel
// immediately yields the last known state (an empty listing before any data
// arrives), then re-emits on every upstream update, conflated to the
// latest. It is closed when ctx is cancelled or the holder is closed.
func (h *ListHolder) Subscribe(ctx context.Context) <-chan ListState {
	h.mu.Lock()
	ch := make(chan ListState, 1)
	ch <- h.last
	if h.done {
		close(ch)
		h.mu.Unlock()
		return ch
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	if h.stopTimer != nil {
		h.stopTimer.Stop()
		h.stopTimer = nil
	}
	if h.upstream == nil {
		h.startUpstreamLocked()
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		if len(h.subs) == 0 && h.upstream != nil {
			h.scheduleStopLocked()
		}
		h.mu.Unlock()
	}()

	return ch
}

// Refresh restarts the upstream subscription, re-running the cache-first
// fetch. It is the manual retry hook after a failed refresh; calling it
// while the upstream is healthy simply forces a fresh fetch.
func (h *ListHolder) Refresh() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	if h.upstream != nil {
		h.upstream()
	}
	h.startUpstreamLocked()
}

// Close cancels the upstream and closes all subscriber channels. The holder
// cannot be reused afterwards.
func (h *ListHolder) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = true
	if h.stopTimer != nil {
		h.stopTimer.Stop()
		h.stopTimer = nil
	}
	if h.upstream != nil {
		h.upstream()
		h.upstream = nil
	}
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// startUpstreamLocked launches the forwarding goroutine for a new upstream
// subscription. Callers hold h.mu.
func (h *ListHolder) startUpstreamLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	h.upstream = cancel

	updates := h.source.Objects(ctx)
	go func() {
		// Release the cache watcher once the stream ends for any reason.
		defer cancel()
		for up := range updates {
			state := ListState{Objects: up.Objects, Err: up.Err}
			if state.Objects == nil {
				state.Objects = []museum.Object{}
			}
			if up.Err != nil {
				// Keep the stale listing visible alongside the error.
				h.mu.Lock()
				state.Objects = h.last.Objects
				h.broadcastLocked(state)
				h.mu.Unlock()
				return
			}
			h.mu.Lock()
			h.broadcastLocked(state)
			h.mu.Unlock()
		}
	}()
}

// broadcastLocked records state as the latest and delivers it to every
// subscriber, conflating per-subscriber. Callers hold h.mu.
func (h *ListHolder) broadcastLocked(state ListState) {
	h.last = state
	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// scheduleStopLocked arms the keep-alive timer that cancels the upstream
// once no subscriber has returned within the window. Callers hold h.mu.
func (h *ListHolder) scheduleStopLocked() {
	if h.stopTimer != nil {
		h.stopTimer.Stop()
	}
	h.stopTimer = time.AfterFunc(h.keepAlive, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if len(h.subs) > 0 || h.upstream == nil {
			return
		}
		h.upstream()
		h.upstream = nil
		h.stopTimer = nil
	})
}
