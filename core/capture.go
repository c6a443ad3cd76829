package pipeline

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxloop/voxloop-core/core/audio"
	"github.com/voxloop/voxloop-core/core/events"
)

type CaptureMode string

const (
	CaptureModePushToTalk CaptureMode = "push_to_talk"
	CaptureModeHandsFree  CaptureMode = "hands_free"
)

var (
	// ErrAlreadyRecording is returned by Start when a session is active.
	ErrAlreadyRecording = errors.New("a capture session is already active")
	// ErrCaptureDenied wraps microphone permission failures. Denial is
	// terminal for voice input; the controller does not retry.
	ErrCaptureDenied = errors.New("microphone capture was denied")
)

// Utterance is a frozen user turn. Immutable once created; submitted to the
// agent exactly once.
type Utterance struct {
	RequestID   string
	Text        string
	SubmittedAt time.Time
}

// captureController owns the capture session state machine: it accumulates
// the live transcript, applies the trigger-word and noise filters, and
// decides when the transcript freezes into an Utterance.
//
// It is deliberately device-free. The Controller feeds it audio and
// recognizer results and reacts to its callbacks.
type captureController struct {
	mu sync.Mutex

	tunables Tunables
	encoding audio.EncodingInfo
	emit     eventEmitter

	mode      CaptureMode
	active    bool
	startedAt time.Time
	detector  *silenceDetector

	committed []string
	interim   string
	waiting   bool

	debounceTimer *time.Timer
	waitTimer     *time.Timer
	sessionTimer  *time.Timer

	lastRejectedWord string
	lastRejectedAt   time.Time

	onSubmit       func(utterance Utterance)
	onWaitExtended func()
	onAborted      func()
}

func newCaptureController(encoding audio.EncodingInfo, tunables Tunables, emit eventEmitter) *captureController {
	return &captureController{
		tunables: tunables,
		encoding: encoding,
		emit:     emit,
	}
}

// Start opens a capture session. Only one session may be active at a time.
func (c *captureController) Start(mode CaptureMode) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}

	c.mode = mode
	c.active = true
	c.startedAt = time.Now()
	c.committed = nil
	c.interim = ""
	c.waiting = false

	c.detector = newSilenceDetector(c.encoding, c.tunables)
	c.detector.onUtteranceComplete = func() { c.trySubmit() }
	c.detector.onSafetyStop = func() { c.abort() }

	// Hard cap on session duration. The silence detector measures time in
	// audio windows, so it cannot close a session once audio stops flowing.
	c.sessionTimer = time.AfterFunc(c.tunables.SafetyCeiling, func() { c.expireSession() })
	c.mu.Unlock()

	c.emit(events.NewCaptureStarted())
	return nil
}

// FeedAudio forwards captured frames to the silence detector. Call from a
// single goroutine.
func (c *captureController) FeedAudio(data []byte) {
	c.mu.Lock()
	detector := c.detector
	active := c.active
	c.mu.Unlock()

	if !active || detector == nil {
		return
	}
	detector.Feed(data)
}

// Active reports whether a session is open.
func (c *captureController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Mode reports the active session's capture mode.
func (c *captureController) Mode() CaptureMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// PeakEnergy reports the loudest RMS window of the active session.
func (c *captureController) PeakEnergy() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detector.PeakRMS()
}

// Transcript returns the current transcript including the interim tail.
func (c *captureController) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcriptLocked()
}

func (c *captureController) transcriptLocked() string {
	parts := append([]string(nil), c.committed...)
	if c.interim != "" {
		parts = append(parts, c.interim)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// OnInterimTranscript records a revisable transcript tail from the
// recognizer and keeps the debounce timer from firing mid-sentence.
func (c *captureController) OnInterimTranscript(text string) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.interim = text
	transcript := c.transcriptLocked()
	c.resetDebounceLocked()
	c.mu.Unlock()

	c.emit(events.NewTranscriptUpdated(transcript))
}

// OnFinalSegment commits a finalized transcript segment. Trigger words are
// only honored here, on finalized text.
func (c *captureController) OnFinalSegment(text string) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}

	c.interim = ""
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		c.committed = append(c.committed, trimmed)
	}
	transcript := c.transcriptLocked()

	stripped, trigger := stripTriggerSuffix(transcript)
	switch trigger {
	case "wait":
		c.committed = []string{stripped}
		c.waiting = true
		c.stopDebounceLocked()
		if c.waitTimer != nil {
			c.waitTimer.Stop()
		}
		c.waitTimer = time.AfterFunc(c.tunables.WaitExtension, func() { c.trySubmit() })
		if c.sessionTimer != nil {
			c.sessionTimer.Reset(c.tunables.WaitExtension + c.tunables.DebounceDelay)
		}
		onWait := c.onWaitExtended
		c.mu.Unlock()

		c.emit(events.NewWaitRequested())
		if onWait != nil {
			onWait()
		}
		return

	case "over":
		c.committed = []string{stripped}
		c.mu.Unlock()

		c.emit(events.NewTranscriptUpdated(stripped))
		c.trySubmit()
		return
	}

	// A finalized segment while waiting means the speaker resumed; fall back
	// to the normal completion timer.
	if c.waiting {
		c.waiting = false
		if c.waitTimer != nil {
			c.waitTimer.Stop()
		}
	}
	c.resetDebounceLocked()
	c.mu.Unlock()

	c.emit(events.NewTranscriptUpdated(transcript))
}

// Abort closes the session without submitting. Used for barge-in and
// shutdown.
func (c *captureController) Abort() {
	c.closeSession()
}

// Stop ends the session and submits whatever survived the filters. This is
// the push-to-talk release path.
func (c *captureController) Stop() {
	c.trySubmit()
}

// trySubmit freezes the transcript into an Utterance if it passes the noise
// filters; otherwise it keeps listening or closes the session.
func (c *captureController) trySubmit() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}

	text := c.transcriptLocked()
	if text == "" {
		c.mu.Unlock()
		c.abort()
		return
	}

	if isLikelyHallucination(text) {
		logger.Debug("discarding hallucinated transcript", "transcript", text)
		c.committed = nil
		c.interim = ""
		c.resetDebounceLocked()
		c.mu.Unlock()
		return
	}

	if isFillerOnly(text) {
		c.resetDebounceLocked()
		c.mu.Unlock()
		return
	}

	if isHomophoneRisk(text) {
		word := normalizeTranscript(text)
		repeated := word == c.lastRejectedWord &&
			time.Since(c.lastRejectedAt) <= c.tunables.RepeatConfirmWindow
		if !repeated {
			c.lastRejectedWord = word
			c.lastRejectedAt = time.Now()
			c.stopDebounceLocked()
			c.mu.Unlock()
			return
		}
	}

	c.closeSessionLocked()
	utterance := Utterance{
		RequestID:   uuid.NewString(),
		Text:        text,
		SubmittedAt: time.Now(),
	}
	onSubmit := c.onSubmit
	c.mu.Unlock()

	c.emit(events.NewUtteranceSubmitted(utterance.RequestID, utterance.Text))
	if onSubmit != nil {
		onSubmit(utterance)
	}
}

func (c *captureController) abort() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.closeSessionLocked()
	onAborted := c.onAborted
	c.mu.Unlock()

	c.emit(events.NewCaptureStopped())
	if onAborted != nil {
		onAborted()
	}
}

func (c *captureController) closeSession() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.closeSessionLocked()
	c.mu.Unlock()

	c.emit(events.NewCaptureStopped())
}

func (c *captureController) closeSessionLocked() {
	c.active = false
	c.waiting = false
	c.committed = nil
	c.interim = ""
	c.stopDebounceLocked()
	if c.waitTimer != nil {
		c.waitTimer.Stop()
		c.waitTimer = nil
	}
	if c.sessionTimer != nil {
		c.sessionTimer.Stop()
		c.sessionTimer = nil
	}
}

// expireSession closes a session that hit the duration cap. The transcript
// gets one last submission attempt; if the filters keep the session open,
// it is aborted instead.
func (c *captureController) expireSession() {
	c.trySubmit()
	if c.Active() {
		c.abort()
	}
}

func (c *captureController) resetDebounceLocked() {
	if c.waiting {
		return
	}

	delay := c.tunables.DebounceDelay
	if endsWithHesitation(c.transcriptLocked()) {
		delay = c.tunables.HesitationDebounce
	}

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceTimer = time.AfterFunc(delay, func() { c.trySubmit() })
}

func (c *captureController) stopDebounceLocked() {
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
		c.debounceTimer = nil
	}
}
