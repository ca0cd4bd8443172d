// Package record supervises a single ffmpeg recording session: it launches
// the encoder process, tracks its lifecycle through a small state machine and
// reports transitions and progress without ever blocking the caller.
package record

import "time"

// State is the recorder lifecycle. Exactly one session exists at a time and
// its state only ever moves forward until a terminal state is reached.
type State int

const (
	// Idle means no session exists. Start is accepted.
	Idle State = iota
	// Starting means the encoder process has been launched but has not yet
	// produced output.
	Starting
	// Recording means the encoder is confirmed writing output.
	Recording
	// Stopping means a graceful shutdown has been requested and the encoder
	// is finalizing the file.
	Stopping
	// Stopped is terminal: the session ended cleanly and the output file is
	// complete.
	Stopped
	// Failed is terminal: the session ended abnormally. The diagnostic on the
	// state event carries the reason.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has finished and a new Start is
// accepted again.
func (s State) Terminal() bool {
	return s == Stopped || s == Failed
}

// EventKind discriminates recorder events.
type EventKind int

const (
	// EventStateChange reports a lifecycle transition. Never dropped in
	// order; only the oldest is discarded when the consumer lags.
	EventStateChange EventKind = iota
	// EventProgress reports encoder progress while recording. Dropped freely
	// when the consumer lags.
	EventProgress
)

// Event is a recorder notification. State events carry the new state and, for
// Failed, a diagnostic. Progress events carry the recorded duration so far.
type Event struct {
	Kind       EventKind
	State      State
	Diagnostic string
	Elapsed    time.Duration
	Time       time.Time
}
