// Package booking implements the two-step submission flow shared by the
// public booking pages, consolidated into one parameterized component.
package booking

// State represents the current state of the submission flow.
type State string

const (
	StateStep1      State = "step1"
	StateStep2      State = "step2"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
)

// FSM manages state transitions for the submission flow. A failed
// submission returns to Step2 so step-1 data never needs re-entry.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the flow FSM with its allowed transitions.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateStep1:      {StateStep2},
			StateStep2:      {StateSubmitting, StateStep1},
			StateSubmitting: {StateSuccess, StateStep2},
			StateSuccess:    {StateStep1},
		},
	}
}

// CanTransition checks if a transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	for _, s := range f.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition updates the session state if the transition is allowed.
func (f *FSM) Transition(session *Session, to State) bool {
	if f.CanTransition(session.GetState(), to) {
		session.SetState(to)
		return true
	}
	return false
}
