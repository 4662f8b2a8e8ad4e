package state

import (
	"sync"
)

// Store owns the current State. Dispatch is serialized; Snapshot may be
// called from any goroutine.
type Store struct {
	mu    sync.RWMutex
	state State
	saved uint64

	subMu  sync.Mutex
	subs   map[int]chan State
	nextID int
}

// NewStore creates a Store starting at initial. The initial state counts
// as saved.
func NewStore(initial State) *Store {
	return &Store{
		state: initial,
		saved: initial.Revision,
		subs:  make(map[int]chan State),
	}
}

// Snapshot returns the current State.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces a against the current State, stores the result and
// notifies subscribers. On error nothing changes.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	if next != s.state {
		s.state = next
		// publish never blocks, so subscribers see changes in order.
		s.publish(next)
	}
	return next, nil
}

// Subscribe returns a channel that receives the State after each change,
// and a function that ends the subscription. A slow subscriber only sees
// the latest State: older pending values are dropped.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(st State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
			// Replace the pending value with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

// Dirty reports whether the document or toggles changed since the last
// MarkSaved.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Revision != s.saved
}

// MarkSaved records that revision has been persisted.
func (s *Store) MarkSaved(revision uint64) {
	s.mu.Lock()
	if revision > s.saved {
		s.saved = revision
	}
	s.mu.Unlock()
}
