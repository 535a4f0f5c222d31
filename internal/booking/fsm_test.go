package booking

import "testing"

func TestFSMTransitions(t *testing.T) {
	fsm := NewFSM()

	tests := []struct {
		from, to State
		want     bool
	}{
		{StateStep1, StateStep2, true},
		{StateStep1, StateSubmitting, false},
		{StateStep1, StateSuccess, false},
		{StateStep2, StateSubmitting, true},
		{StateStep2, StateStep1, true},
		{StateStep2, StateSuccess, false},
		{StateSubmitting, StateSuccess, true},
		{StateSubmitting, StateStep2, true},
		{StateSubmitting, StateStep1, false},
		{StateSuccess, StateStep1, true},
		{StateSuccess, StateStep2, false},
	}
	for _, tt := range tests {
		if got := fsm.CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestFSMTransitionUpdatesSession(t *testing.T) {
	fsm := NewFSM()
	sess := NewSession()

	if sess.GetState() != StateStep1 {
		t.Fatalf("new session state = %s", sess.GetState())
	}
	if !fsm.Transition(sess, StateStep2) {
		t.Fatal("step1 -> step2 rejected")
	}
	if sess.GetState() != StateStep2 {
		t.Errorf("state = %s after transition", sess.GetState())
	}
	if fsm.Transition(sess, StateSuccess) {
		t.Error("step2 -> success allowed")
	}
	if sess.GetState() != StateStep2 {
		t.Errorf("rejected transition changed state to %s", sess.GetState())
	}
}
