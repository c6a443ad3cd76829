package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voxloop/voxloop-core/core/events"
	"github.com/voxloop/voxloop-core/core/synthesis"
	"github.com/voxloop/voxloop-core/core/wire"
)

type TurnState string

const (
	StateListening        TurnState = "listening"
	StateProcessing       TurnState = "processing"
	StateSpeaking         TurnState = "speaking"
	StateWaitingExtended  TurnState = "waiting_extended"
	StateDegradedTextMode TurnState = "degraded_text_mode"
)

var (
	// ErrTurnInProgress is returned when an utterance is submitted while a
	// prior one is still being processed or spoken.
	ErrTurnInProgress = errors.New("a turn is already in progress")
	// ErrVoiceUnavailable is returned by voice operations after the pipeline
	// has degraded to text-only mode.
	ErrVoiceUnavailable = errors.New("voice pipeline is degraded to text-only mode")
)

// activeReply tracks one in-flight agent reply. stream is nil when voice
// output is disabled and the reply is text-only.
type activeReply struct {
	requestID string
	userText  string
	assistant string
	stream    *replyStream
}

// Controller is the top-level turn state machine. It owns the capture
// controller, the single live reply stream, and all transitions between
// listening, processing, and speaking.
type Controller struct {
	tunables     Tunables
	language     string
	fallbackClip []byte

	recognizer  recognizer
	audioInput  audioInput
	audioOutput audioOutput
	synthesizer synthesis.Client
	agent       AgentChannel

	capture *captureController

	stateMu sync.Mutex
	state   TurnState

	replyMu sync.Mutex
	reply   *activeReply

	playbackUnlocked   atomic.Bool
	voiceOutputEnabled atomic.Bool
	handsFree          atomic.Bool
	degraded           atomic.Bool
	voiceFailed        atomic.Bool

	transcript transcriptLog

	runOptions RunOptions
	emitEvent  eventEmitter

	baseContext context.Context
	closeOnce   sync.Once
	rearmMu     sync.Mutex
	rearmTimer  *time.Timer
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		tunables:    DefaultTunables(),
		language:    "en",
		state:       StateListening,
		emitEvent:   noopEventEmitter,
		baseContext: context.Background(),
		recognizer:  *newRecognizer(nil),
		audioOutput: *newAudioOutput(nil),
	}
	c.playbackUnlocked.Store(true)
	c.voiceOutputEnabled.Store(true)

	c.audioInput = *newAudioInput(nil, c.onInputAudio, func(err error) {
		c.handleCaptureFailure(err)
	})

	for _, opt := range opts {
		opt(c)
	}

	c.capture = newCaptureController(c.audioInput.EncodingInfo(), c.tunables, func(event events.Event) {
		c.emitEvent(event)
	})
	c.capture.onSubmit = func(utterance Utterance) { c.submitUtterance(utterance) }
	c.capture.onWaitExtended = func() { c.setState(StateWaitingExtended) }
	c.capture.onAborted = func() {
		if c.State() == StateWaitingExtended {
			c.setState(StateListening)
		}
		if c.runOptions.onCaptureStateChanged != nil {
			c.runOptions.onCaptureStateChanged(false)
		}
	}

	return c
}

// Run wires the per-session callbacks and starts the recognizer and audio
// stream. Call at most once per controller instance.
func (c *Controller) Run(ctx context.Context, opts ...RunOption) error {
	c.runOptions = RunOptions{}
	for _, opt := range opts {
		opt(&c.runOptions)
	}
	c.emitEvent = newCallbackEventEmitter(c.runOptions)
	c.baseContext = ctx

	c.audioInput.SetAlwaysCapture(c.handsFree.Load())

	if err := c.recognizer.Start(ctx, c.audioInput.EncodingInfo(), c.capture, func(err error) {
		c.handleCaptureFailure(err)
	}); err != nil {
		recordedErr := fmt.Errorf("failed to initialize recognition: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	go func() {
		<-ctx.Done()
		c.Close()
	}()

	return nil
}

func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.Interrupt()

		if err := c.audioInput.Close(); err != nil {
			recordedErr := fmt.Errorf("failed to close audio input: %w", err)
			span := trace.SpanFromContext(c.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}

		if err := c.recognizer.Close(c.baseContext); err != nil {
			recordedErr := fmt.Errorf("failed to close recognition client: %w", err)
			span := trace.SpanFromContext(c.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}
	})
}

// State returns the current turn state.
func (c *Controller) State() TurnState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Controller) setState(to TurnState) {
	c.stateMu.Lock()
	from := c.state
	if from == to {
		c.stateMu.Unlock()
		return
	}
	// Degraded mode is terminal.
	if from == StateDegradedTextMode {
		c.stateMu.Unlock()
		return
	}
	c.state = to
	c.stateMu.Unlock()

	c.emitEvent(events.NewStateChanged(string(from), string(to)))
}

// StartCapture opens a capture session in the current mode. Push-to-talk
// presses and hands-free re-arms both land here.
func (c *Controller) StartCapture() error {
	if c.degraded.Load() {
		return ErrVoiceUnavailable
	}
	if state := c.State(); state != StateListening && state != StateWaitingExtended {
		return ErrTurnInProgress
	}

	mode := CaptureModePushToTalk
	if c.handsFree.Load() {
		mode = CaptureModeHandsFree
	}

	if err := c.capture.Start(mode); err != nil {
		return err
	}

	if err := c.audioInput.Capture(c.baseContext); err != nil {
		c.capture.Abort()
		c.emitEvent(events.NewCaptureDenied(err))
		c.degrade("microphone capture was denied")
		return fmt.Errorf("%w: %w", ErrCaptureDenied, err)
	}

	if c.runOptions.onCaptureStateChanged != nil {
		c.runOptions.onCaptureStateChanged(true)
	}
	return nil
}

// StopCapture ends the session and submits what survived the filters. This
// is the push-to-talk release.
func (c *Controller) StopCapture() {
	c.capture.Stop()
}

// SubmitText submits a typed message, bypassing capture entirely. This is
// the only input path that keeps working after degradation.
func (c *Controller) SubmitText(text string) error {
	if state := c.State(); state == StateProcessing || state == StateSpeaking {
		return ErrTurnInProgress
	}

	utterance := Utterance{
		RequestID:   uuid.NewString(),
		Text:        text,
		SubmittedAt: time.Now(),
	}
	c.emitEvent(events.NewUtteranceSubmitted(utterance.RequestID, utterance.Text))
	c.submitUtterance(utterance)
	return nil
}

// Interrupt is the user-requested stop: it halts recording and playback,
// discards the live reply, and returns to listening without degrading.
func (c *Controller) Interrupt() {
	c.cancelRearm()
	c.capture.Abort()

	c.replyMu.Lock()
	reply := c.reply
	c.reply = nil
	c.replyMu.Unlock()

	if reply != nil && reply.stream != nil {
		reply.stream.Cancel()
	}
	c.audioOutput.Clear()

	if c.runOptions.onProcessingIndicator != nil {
		c.runOptions.onProcessingIndicator(false)
	}
	c.emitEvent(events.NewTurnCancelled())
	c.setState(StateListening)
}

// UnlockPlayback grants the one-time autoplay unlock. Slots buffered while
// locked start playing immediately, in order.
func (c *Controller) UnlockPlayback() {
	if !c.playbackUnlocked.CompareAndSwap(false, true) {
		return
	}

	c.replyMu.Lock()
	reply := c.reply
	c.replyMu.Unlock()

	if reply != nil && reply.stream != nil {
		reply.stream.sequencer.Unlock()
	}
}

func (c *Controller) SetHandsFree(handsFree bool) {
	if c.degraded.Load() {
		return
	}
	c.handsFree.Store(handsFree)
	c.audioInput.SetAlwaysCapture(handsFree)
}

func (c *Controller) HandsFree() bool { return c.handsFree.Load() }

func (c *Controller) SetVoiceOutputEnabled(enabled bool) {
	c.voiceOutputEnabled.Store(enabled)
}

func (c *Controller) VoiceOutputEnabled() bool {
	return c.voiceOutputEnabled.Load() && !c.degraded.Load()
}

// Transcript returns a deep copy of the finished turns so far.
func (c *Controller) Transcript() []FinishedTurn {
	return c.transcript.Snapshot()
}

// FeedReplyChunk accepts one incremental fragment of the agent's reply. The
// fragment is always displayed; it is synthesized only when a voice reply
// stream is live.
func (c *Controller) FeedReplyChunk(text string) {
	c.replyMu.Lock()
	reply := c.reply
	if reply != nil {
		reply.assistant += text
	}
	c.replyMu.Unlock()

	if reply == nil {
		return
	}

	if reply.stream != nil {
		reply.stream.AddChunk(text)
		return
	}
	c.emitEvent(events.NewReplySegment(text))
}

// EndOfReply signals that no more chunks are coming for the current reply.
func (c *Controller) EndOfReply() {
	c.replyMu.Lock()
	reply := c.reply
	c.replyMu.Unlock()

	if reply == nil {
		return
	}

	if c.runOptions.onProcessingIndicator != nil {
		c.runOptions.onProcessingIndicator(false)
	}

	if reply.stream != nil {
		reply.stream.Complete()
		return
	}

	// Text-only reply: no playback to wait for.
	c.emitEvent(events.NewReplyEnded())
	c.finishReply(reply, false, "")
}

func (c *Controller) onInputAudio(audio []byte) {
	if !c.capture.Active() {
		return
	}

	c.capture.FeedAudio(audio)
	if err := c.recognizer.SendAudio(audio); err != nil {
		logger.Warn("failed to forward audio to recognizer", "error", err)
	}

	if c.runOptions.onCaptureEnergy != nil {
		c.runOptions.onCaptureEnergy(c.capture.PeakEnergy())
	}
}

// submitUtterance freezes the turn: it sends the utterance to the agent and
// opens the reply stream that the agent's chunks will flow into.
func (c *Controller) submitUtterance(utterance Utterance) {
	ctx, span := tracer.Start(c.baseContext, "submit utterance")
	defer span.End()

	c.audioInput.StopCapture()

	voice := c.VoiceOutputEnabled() && c.synthesizer != nil
	envelope, err := wire.NewUtteranceEnvelope(utterance.RequestID, wire.Utterance{
		Text:        utterance.Text,
		VoiceMode:   voice,
		HandsFree:   c.handsFree.Load(),
		VoiceFailed: c.voiceFailed.CompareAndSwap(true, false),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	c.setState(StateProcessing)
	if c.runOptions.onProcessingIndicator != nil {
		c.runOptions.onProcessingIndicator(true)
	}

	if c.agent != nil {
		if err := c.agent.Submit(ctx, envelope); err != nil {
			// Channel not ready is recoverable: the surrounding application
			// reconnects and the user retries.
			logger.WarnContext(ctx, "failed to submit utterance", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if c.runOptions.onProcessingIndicator != nil {
				c.runOptions.onProcessingIndicator(false)
			}
			c.setState(StateListening)
			// Hands-free users retry by speaking, so capture must come back.
			c.scheduleHandsFreeRearm()
			return
		}
	}

	reply := &activeReply{requestID: utterance.RequestID, userText: utterance.Text}
	if voice {
		sequencer := newPlaybackSequencer(c.playbackUnlocked.Load())
		sequencer.play = c.playSlot
		sequencer.onFirstPlayback = func() {
			c.emitEvent(events.NewPlaybackStarted())
			c.setState(StateSpeaking)
		}
		sequencer.onSegmentPlayed = func(sequence int, text string) {
			c.emitEvent(events.NewSegmentPlayed(sequence, text))
		}
		sequencer.onFinished = func(totalFailure bool, spoken string) {
			c.replyMu.Lock()
			finished := c.reply
			c.replyMu.Unlock()
			if finished == nil || finished.requestID != utterance.RequestID {
				return
			}
			c.finishReply(finished, totalFailure, spoken)
		}

		reply.stream = newReplyStream(ctx, utterance.RequestID, c.tunables,
			func(q *playbackSequencer) *synthPool {
				return newSynthPool(c.synthesizer, c.language, c.tunables.SynthesisTimeout, q, c.emitEvent)
			},
			sequencer,
			func(event events.Event) { c.emitEvent(event) },
		)
	}

	c.replyMu.Lock()
	c.reply = reply
	c.replyMu.Unlock()
}

func (c *Controller) playSlot(slot playbackSlot, onDone func()) {
	if err := c.audioOutput.SendAudio(slot.Audio); err != nil {
		// The slot never played; stopping the sequencer supersedes onDone.
		c.handlePlaybackFailure(err)
		return
	}
	c.audioOutput.NotifyPlayed(slot.Audio, uuid.NewString(), c.tunables.PlaybackSafetyMargin, onDone)
}

// handlePlaybackFailure abandons the live reply when the output device
// refuses audio. A user who cannot hear replies must not be left in a
// silently cycling turn loop.
func (c *Controller) handlePlaybackFailure(err error) {
	logger.Warn("audio playback failed", "error", err)
	c.emitEvent(events.NewPlaybackFailed(err))

	c.replyMu.Lock()
	reply := c.reply
	c.reply = nil
	c.replyMu.Unlock()

	if reply != nil && reply.stream != nil {
		reply.stream.Cancel()
	}

	c.degrade("audio playback failed")
}

func (c *Controller) finishReply(reply *activeReply, totalFailure bool, spoken string) {
	c.replyMu.Lock()
	if c.reply == reply {
		c.reply = nil
	}
	assistant := reply.assistant
	c.replyMu.Unlock()

	c.transcript.Append(FinishedTurn{
		RequestID:        reply.requestID,
		UserText:         reply.userText,
		AssistantText:    assistant,
		SpokenTranscript: spoken,
		CompletedAt:      time.Now(),
	})

	if totalFailure {
		c.degrade("no segment of the reply could be synthesized")
		return
	}

	if reply.stream != nil {
		c.emitEvent(events.NewPlaybackEnded(spoken))
	}
	c.setState(StateListening)
	c.scheduleHandsFreeRearm()
}

func (c *Controller) handleCaptureFailure(err error) {
	c.emitEvent(events.NewCaptureFailed(err))
	if c.runOptions.onRecognitionError != nil {
		c.runOptions.onRecognitionError(err)
	}
	c.degrade("voice capture failed")
}

// degrade abandons voice for the rest of the session. It runs at most once;
// all later voice failures are no-ops.
func (c *Controller) degrade(reason string) {
	if !c.degraded.CompareAndSwap(false, true) {
		return
	}

	logger.Warn("degrading to text-only mode", "reason", reason)

	c.cancelRearm()
	c.handsFree.Store(false)
	c.audioInput.SetAlwaysCapture(false)
	c.capture.Abort()
	c.audioInput.StopCapture()
	c.audioOutput.Clear()
	c.voiceFailed.Store(true)

	if c.runOptions.onApology != nil {
		c.runOptions.onApology()
	}
	c.emitEvent(events.NewDegraded(reason))

	// The failure itself should be audible when possible. Best effort: the
	// output device may be the reason for degrading.
	if len(c.fallbackClip) > 0 {
		_ = c.audioOutput.SendAudio(c.fallbackClip)
	}

	c.setState(StateDegradedTextMode)
}

// scheduleHandsFreeRearm restarts capture a little after playback ends so
// the tail of the reply is not recorded as user speech.
func (c *Controller) scheduleHandsFreeRearm() {
	if !c.handsFree.Load() || c.degraded.Load() {
		return
	}

	c.rearmMu.Lock()
	defer c.rearmMu.Unlock()
	if c.rearmTimer != nil {
		c.rearmTimer.Stop()
	}
	c.rearmTimer = time.AfterFunc(c.tunables.HandsFreeRearmDelay, func() {
		if c.State() != StateListening {
			return
		}
		if err := c.StartCapture(); err != nil && !errors.Is(err, ErrAlreadyRecording) {
			logger.Warn("failed to re-arm hands-free capture", "error", err)
		}
	})
}

func (c *Controller) cancelRearm() {
	c.rearmMu.Lock()
	defer c.rearmMu.Unlock()
	if c.rearmTimer != nil {
		c.rearmTimer.Stop()
		c.rearmTimer = nil
	}
}
