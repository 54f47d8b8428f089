package dashboard

import (
	"context"
	"sync"

	"github.com/softgrove/vitrine/internal/viewstate"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// stubListSource implements ListSource with a hand-fed channel.
type stubListSource struct {
	ch       chan viewstate.ListState
	mu       sync.Mutex
	refreshs int
}

func newStubListSource() *stubListSource {
	return &stubListSource{ch: make(chan viewstate.ListState, 8)}
}

func (s *stubListSource) Subscribe(ctx context.Context) <-chan viewstate.ListState {
	return s.ch
}

func (s *stubListSource) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshs++
}

func (s *stubListSource) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshs
}

// stubDetailSource implements DetailSource from a fixed object set.
type stubDetailSource struct {
	objects map[int]viewstate.DetailState
}

func (s *stubDetailSource) Watch(ctx context.Context, id int) <-chan viewstate.DetailState {
	ch := make(chan viewstate.DetailState, 1)
	ch <- s.objects[id]
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
