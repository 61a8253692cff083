package auction

import (
	"sync"

	"github.com/Sudhir-Rajesh/ipl-pro-auction/internal/domain"
)

// Engine owns the canonical auction state. All command application is
// serialized behind a mutex: commands from concurrent requests are applied in
// lock-acquisition order and no two can interleave mid-mutation.
type Engine struct {
	mu     sync.Mutex
	roster []domain.Player
	rules  Rules
	state  State
}

// NewEngine creates an engine over the given roster in the stopped state.
func NewEngine(roster []domain.Player, rules Rules) *Engine {
	return &Engine{
		roster: append([]domain.Player(nil), roster...),
		rules:  rules,
		state:  NewState(roster, rules),
	}
}

// Do applies one command. On success the returned snapshot carries a Version
// exactly one above the previous state; on error the state is unchanged and
// the current snapshot is returned alongside the typed rejection.
func (e *Engine) Do(cmd Command) (State, Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, ev, err := Apply(e.roster, e.rules, e.state, cmd)
	if err != nil {
		return e.state.clone(), Event{}, err
	}
	next.Version = e.state.Version + 1
	e.state = next
	return next.clone(), ev, nil
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Roster returns the full canonical roster in auction order.
func (e *Engine) Roster() []domain.Player {
	return append([]domain.Player(nil), e.roster...)
}

// Rules returns the fixed auction parameters.
func (e *Engine) Rules() Rules {
	return e.rules
}
