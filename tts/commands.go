package tts

// Command is a unit of work for the controller. UI controls, the rate
// debounce timer and engine callbacks all produce commands.
type Command interface {
	Kind() CommandKind
}

// CommandKind tags a Command.
type CommandKind int

const (
	KindPlayRequested CommandKind = iota
	KindTogglePlayRequested
	KindPauseRequested
	KindResumeRequested
	KindStopRequested
	KindVoiceChangeRequested
	KindVolumeChangeRequested
	KindRateChangeRequested
	KindRateCommitTimerFired
	KindWordCueEnteredEvent
	KindEngineEndedEvent
	KindDraggedTextReceived
	KindShutdownRequested
)

var kindNames = map[CommandKind]string{
	KindPlayRequested:         "PlayRequested",
	KindTogglePlayRequested:   "TogglePlayRequested",
	KindPauseRequested:        "PauseRequested",
	KindResumeRequested:       "ResumeRequested",
	KindStopRequested:         "StopRequested",
	KindVoiceChangeRequested:  "VoiceChangeRequested",
	KindVolumeChangeRequested: "VolumeChangeRequested",
	KindRateChangeRequested:   "RateChangeRequested",
	KindRateCommitTimerFired:  "RateCommitTimerFired",
	KindWordCueEnteredEvent:   "WordCueEnteredEvent",
	KindEngineEndedEvent:      "EngineEndedEvent",
	KindDraggedTextReceived:   "DraggedTextReceived",
	KindShutdownRequested:     "ShutdownRequested",
}

// String returns the command name.
func (k CommandKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type (
	// PlayRequested starts a new utterance with Text.
	PlayRequested struct{ Text string }

	// TogglePlayRequested plays Text when idle, otherwise pauses or resumes.
	TogglePlayRequested struct{ Text string }

	PauseRequested  struct{}
	ResumeRequested struct{}
	StopRequested   struct{}

	// VoiceChangeRequested selects the catalog voice at Index.
	VoiceChangeRequested struct{ Index int }

	VolumeChangeRequested struct{ Volume float64 }

	// RateChangeRequested records a slider value; it is committed once input
	// settles.
	RateChangeRequested struct{ Rate float64 }

	// RateCommitTimerFired is sent by the debounce timer.
	RateCommitTimerFired struct{ Generation uint64 }

	// WordCueEnteredEvent is sent by the playback engine when the next cue
	// is reached.
	WordCueEnteredEvent struct{ Generation uint64 }

	// EngineEndedEvent is sent by the playback engine when a source finishes.
	EngineEndedEvent struct{ Generation uint64 }

	// DraggedTextReceived carries text extracted from dropped files.
	DraggedTextReceived struct{ Text string }

	// ShutdownRequested stops the consumer loop.
	ShutdownRequested struct{}
)

func (PlayRequested) Kind() CommandKind         { return KindPlayRequested }
func (TogglePlayRequested) Kind() CommandKind   { return KindTogglePlayRequested }
func (PauseRequested) Kind() CommandKind        { return KindPauseRequested }
func (ResumeRequested) Kind() CommandKind       { return KindResumeRequested }
func (StopRequested) Kind() CommandKind         { return KindStopRequested }
func (VoiceChangeRequested) Kind() CommandKind  { return KindVoiceChangeRequested }
func (VolumeChangeRequested) Kind() CommandKind { return KindVolumeChangeRequested }
func (RateChangeRequested) Kind() CommandKind   { return KindRateChangeRequested }
func (RateCommitTimerFired) Kind() CommandKind  { return KindRateCommitTimerFired }
func (WordCueEnteredEvent) Kind() CommandKind   { return KindWordCueEnteredEvent }
func (EngineEndedEvent) Kind() CommandKind      { return KindEngineEndedEvent }
func (DraggedTextReceived) Kind() CommandKind   { return KindDraggedTextReceived }
func (ShutdownRequested) Kind() CommandKind     { return KindShutdownRequested }
