package tts

import "testing"

func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state StateType
		want  string
	}{
		{StateIdle, "idle"},
		{StateSpeaking, "speaking"},
		{StatePaused, "paused"},
		{StateType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("StateType(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  []StateType // path taken from idle before the checked transition
		to    StateType
		valid bool
	}{
		{"idle to speaking", nil, StateSpeaking, true},
		{"idle to paused", nil, StatePaused, false},
		{"idle to idle", nil, StateIdle, false},
		{"speaking to paused", []StateType{StateSpeaking}, StatePaused, true},
		{"speaking to idle", []StateType{StateSpeaking}, StateIdle, true},
		{"speaking replaces speaking", []StateType{StateSpeaking}, StateSpeaking, true},
		{"paused to speaking", []StateType{StateSpeaking, StatePaused}, StateSpeaking, true},
		{"paused to idle", []StateType{StateSpeaking, StatePaused}, StateIdle, true},
		{"paused to paused", []StateType{StateSpeaking, StatePaused}, StatePaused, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for _, s := range tt.from {
				if !sm.Transition(s) {
					t.Fatalf("setup transition to %s failed", s)
				}
			}
			before := sm.Current()
			if got := sm.Transition(tt.to); got != tt.valid {
				t.Fatalf("Transition(%s) = %v, want %v", tt.to, got, tt.valid)
			}
			if !tt.valid && sm.Current() != before {
				t.Errorf("invalid transition changed state to %s", sm.Current())
			}
		})
	}
}

func TestStateMachineCallbacks(t *testing.T) {
	sm := NewStateMachine()

	var entered, exited []StateType
	for _, s := range []StateType{StateIdle, StateSpeaking, StatePaused} {
		s := s
		sm.OnEnter(s, func() { entered = append(entered, s) })
		sm.OnExit(s, func() { exited = append(exited, s) })
	}

	sm.Transition(StateSpeaking)
	sm.Transition(StatePaused)
	sm.Reset()
	sm.Reset()

	if len(entered) != 3 || entered[2] != StateIdle {
		t.Errorf("unexpected enter sequence %v", entered)
	}
	if len(exited) != 3 || exited[0] != StateIdle || exited[2] != StatePaused {
		t.Errorf("unexpected exit sequence %v", exited)
	}
	if sm.Current() != StateIdle {
		t.Errorf("expected idle after reset, got %s", sm.Current())
	}
}

func TestStateActive(t *testing.T) {
	if StateIdle.Active() {
		t.Error("idle should not be active")
	}
	if !StateSpeaking.Active() || !StatePaused.Active() {
		t.Error("speaking and paused should be active")
	}
}
