package watcher

import (
	"fmt"
	"sync"
)

// State is one stage of the watcher's lifecycle, per §4.5:
// Initializing -> Watching <-> Paused -> ShuttingDown -> Stopped.
type State int

const (
	Initializing State = iota
	Watching
	Paused
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Watching:
		return "Watching"
	case Paused:
		return "Paused"
	case ShuttingDown:
		return "ShuttingDown"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// validTransitions enumerates the lifecycle's allowed edges.
var validTransitions = map[State][]State{
	Initializing: {Watching},
	Watching:     {Paused, ShuttingDown},
	Paused:       {Watching, ShuttingDown},
	ShuttingDown: {Stopped},
	Stopped:      {},
}

// stateMachine guards State transitions with a mutex, in the same
// begin/do/commit-or-rollback discipline as the store's write transactions:
// a transition either fully applies or is rejected, never half-applied.
type stateMachine struct {
	mu    sync.Mutex
	state State
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: Initializing}
}

func (m *stateMachine) current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// transition moves to next if the edge is valid, returning an error
// otherwise. The caller's fn runs while the lock is held, so state reads
// inside fn see a consistent value and no concurrent transition can race it.
func (m *stateMachine) transition(next State, fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !isValidTransition(m.state, next) {
		return fmt.Errorf("watcher: invalid transition %s -> %s", m.state, next)
	}
	if fn != nil {
		if err := fn(); err != nil {
			return err
		}
	}
	m.state = next
	return nil
}

func isValidTransition(from, to State) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
