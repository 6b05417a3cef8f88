package runtime

import (
	"time"

	"github.com/google/uuid"
)

// Hooks is the host's subscription to runner lifecycle events, one field
// per event. Hooks run synchronously on the runner's call path: the
// DialogueStarted hook always completes before the first content event,
// so a host may persist state there.
type Hooks struct {
	DialogueStarted func(DialogueStartedEvent)
	NodeStarted     func(NodeStartedEvent)
	LineShown       func(LineEvent)
	ChoicesShown    func(ChoicesEvent)
	ChoiceSelected  func(ChoiceSelectedEvent)
	// WaitRequested reports a <<wait>> command. Returning true means the
	// host completes the wait asynchronously and will call Continue when
	// done; returning false (or a nil hook) continues immediately.
	WaitRequested func(WaitEvent) bool
	DialogueEnded func(DialogueEndedEvent)
}

type DialogueStartedEvent struct {
	Session uuid.UUID
	Node    string
}

type NodeStartedEvent struct {
	Session uuid.UUID
	Node    string
}

type LineEvent struct {
	Session uuid.UUID
	Speaker string
	Emotion string
	Text    string
	Tags    []string
}

// ChoiceOption is one presented choice. Unavailable options had a guard
// that did not hold at collection time; guards are re-checked at
// selection time.
type ChoiceOption struct {
	Index     int
	Text      string
	Available bool
}

type ChoicesEvent struct {
	Session uuid.UUID
	Options []ChoiceOption
}

type ChoiceSelectedEvent struct {
	Session uuid.UUID
	Index   int
	Text    string
}

type WaitEvent struct {
	Session  uuid.UUID
	Duration time.Duration
}

type EndReason int

const (
	EndCompleted EndReason = iota
	EndStopped
	EndError
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndStopped:
		return "stopped"
	case EndError:
		return "error"
	default:
		return "unknown"
	}
}

type DialogueEndedEvent struct {
	Session uuid.UUID
	Reason  EndReason
}
