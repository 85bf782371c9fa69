package runner

import "fmt"

// State is the lifecycle position of one fused run.
type State int

const (
	StatePending State = iota
	StateFlattening
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFlattening:
		return "flattening"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var transitions = map[State][]State{
	StatePending:    {StateFlattening, StateFailed},
	StateFlattening: {StateRunning, StateFailed},
	StateRunning:    {StateCompleted, StateFailed},
}

func (s State) canMoveTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
