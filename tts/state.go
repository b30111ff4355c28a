package tts

import "slices"

// StateType is the playback state owned by the controller.
type StateType int

const (
	// StateIdle indicates nothing is loaded.
	StateIdle StateType = iota
	// StateSpeaking indicates audio is playing.
	StateSpeaking
	// StatePaused indicates audio is loaded but not advancing.
	StatePaused
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Active reports whether an utterance is loaded.
func (s StateType) Active() bool {
	return s == StateSpeaking || s == StatePaused
}

// StateMachine guards playback state transitions.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
	onExit      map[StateType]func()
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle: {StateSpeaking},
			// Speaking to Speaking replaces the running utterance.
			StateSpeaking: {StatePaused, StateIdle, StateSpeaking},
			StatePaused:   {StateSpeaking, StateIdle},
		},
		onEnter: make(map[StateType]func()),
		onExit:  make(map[StateType]func()),
	}
}

// Can reports whether a transition to the given state is allowed.
func (sm *StateMachine) Can(to StateType) bool {
	return slices.Contains(sm.transitions[sm.current], to)
}

// Transition attempts to move to the specified state.
func (sm *StateMachine) Transition(to StateType) bool {
	if !sm.Can(to) {
		return false
	}

	if exitFn, ok := sm.onExit[sm.current]; ok && exitFn != nil {
		exitFn()
	}

	sm.current = to

	if enterFn, ok := sm.onEnter[to]; ok && enterFn != nil {
		enterFn()
	}

	return true
}

// Reset forces the machine back to StateIdle, running exit and enter hooks
// when the state actually changes.
func (sm *StateMachine) Reset() {
	if sm.current == StateIdle {
		return
	}
	sm.Transition(StateIdle)
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.onEnter[state] = fn
}

// OnExit registers a callback for exiting a state.
func (sm *StateMachine) OnExit(state StateType, fn func()) {
	sm.onExit[state] = fn
}
