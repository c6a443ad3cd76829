package events

const (
	// KindCaptureStarted identifies the opening of a recording session.
	KindCaptureStarted Kind = "capture.started"
	// KindCaptureDenied identifies a refused microphone permission.
	KindCaptureDenied Kind = "capture.denied"
	// KindCaptureFailed identifies a recognizer or device failure mid-session.
	KindCaptureFailed Kind = "capture.failed"
	// KindCaptureStopped identifies the closing of a recording session.
	KindCaptureStopped Kind = "capture.stopped"
	// KindTranscriptUpdated identifies mutable live transcript updates.
	KindTranscriptUpdated Kind = "capture.transcript_updated"
	// KindWaitRequested identifies a "wait" trigger-word timer extension.
	KindWaitRequested Kind = "capture.wait_requested"
	// KindUtteranceSubmitted identifies a finished utterance leaving capture.
	KindUtteranceSubmitted Kind = "capture.utterance_submitted"
)

// CaptureStarted marks when a recording session opens.
type CaptureStarted struct{ Base }

// NewCaptureStarted creates a capture started event.
func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

// CaptureDenied marks a refused microphone permission. No retry follows.
type CaptureDenied struct {
	Base
	Err error
}

// NewCaptureDenied creates a capture denied event.
func NewCaptureDenied(err error) CaptureDenied {
	return CaptureDenied{Base: NewBase(KindCaptureDenied), Err: err}
}

// CaptureFailed marks a recognizer or device failure during a session.
type CaptureFailed struct {
	Base
	Err error
}

// NewCaptureFailed creates a capture failed event.
func NewCaptureFailed(err error) CaptureFailed {
	return CaptureFailed{Base: NewBase(KindCaptureFailed), Err: err}
}

// CaptureStopped marks when a recording session closes.
type CaptureStopped struct{ Base }

// NewCaptureStopped creates a capture stopped event.
func NewCaptureStopped() CaptureStopped {
	return CaptureStopped{Base: NewBase(KindCaptureStopped)}
}

// TranscriptUpdated carries the mutable live transcript snapshot.
type TranscriptUpdated struct {
	Base
	Transcript string
}

// NewTranscriptUpdated creates a live transcript snapshot event.
func NewTranscriptUpdated(transcript string) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated), Transcript: transcript}
}

// WaitRequested marks a "wait" trigger-word extension of the completion timer.
type WaitRequested struct{ Base }

// NewWaitRequested creates a wait requested event.
func NewWaitRequested() WaitRequested {
	return WaitRequested{Base: NewBase(KindWaitRequested)}
}

// UtteranceSubmitted carries a finished utterance.
type UtteranceSubmitted struct {
	Base
	RequestID string
	Text      string
}

// NewUtteranceSubmitted creates an utterance submitted event.
func NewUtteranceSubmitted(requestID, text string) UtteranceSubmitted {
	return UtteranceSubmitted{Base: NewBase(KindUtteranceSubmitted), RequestID: requestID, Text: text}
}
