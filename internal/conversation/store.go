package conversation

import "sync"

// Store serializes reducer applications and fans the resulting state out
// to subscribers. Subscribers get latest-wins delivery: a slow consumer
// sees the newest state, not every intermediate one.
type Store struct {
	mu    sync.Mutex
	state State
	subs  []chan State
}

func NewStore() *Store {
	return &Store{}
}

func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Apply runs the reducer under the store lock and notifies subscribers.
// The returned effects must be executed by the caller.
func (st *Store) Apply(ev Event) []Effect {
	st.mu.Lock()
	next, effects := Reduce(st.state, ev)
	st.state = next
	subs := st.subs
	st.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- next:
		default:
			// Replace the stale state still sitting in the buffer.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
	return effects
}

// Subscribe returns a channel carrying state snapshots after each
// applied event.
func (st *Store) Subscribe() <-chan State {
	ch := make(chan State, 1)
	st.mu.Lock()
	st.subs = append(st.subs, ch)
	st.mu.Unlock()
	return ch
}
