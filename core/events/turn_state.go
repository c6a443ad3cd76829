package events

const (
	// KindStateChanged identifies turn controller state transitions.
	KindStateChanged Kind = "turn_state.changed"
	// KindTurnCancelled identifies a user-requested interrupt.
	KindTurnCancelled Kind = "turn_state.cancelled"
	// KindDegraded identifies an unrecoverable voice failure.
	KindDegraded Kind = "turn_state.degraded"
)

// StateChanged marks a turn controller state transition.
type StateChanged struct {
	Base
	From string
	To   string
}

// NewStateChanged creates a state changed event.
func NewStateChanged(from, to string) StateChanged {
	return StateChanged{Base: NewBase(KindStateChanged), From: from, To: to}
}

// TurnCancelled marks a user-requested interrupt of the current turn. This is
// not a failure; the degrade path does not run.
type TurnCancelled struct{ Base }

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled() TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled)}
}

// Degraded marks the one-way transition to text-only mode.
type Degraded struct {
	Base
	Reason string
}

// NewDegraded creates a degraded event.
func NewDegraded(reason string) Degraded {
	return Degraded{Base: NewBase(KindDegraded), Reason: reason}
}
