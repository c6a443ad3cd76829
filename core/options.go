package pipeline

import (
	"context"

	"github.com/voxloop/voxloop-core/core/audio"
	"github.com/voxloop/voxloop-core/core/recognition"
	"github.com/voxloop/voxloop-core/core/synthesis"
	"github.com/voxloop/voxloop-core/core/wire"
)

type ControllerOption func(*Controller)

type Recognizer interface {
	Transcribe(ctx context.Context, opts ...recognition.TranscriptionOption) error
	SendAudio(audio []byte) error
}

func WithRecognizer(client Recognizer) ControllerOption {
	return func(c *Controller) { c.recognizer.set(client) }
}

func WithSynthesizer(client synthesis.Client) ControllerOption {
	return func(c *Controller) { c.synthesizer = client }
}

type AudioInput interface {
	audioInputBase
}

type AudioInputFine interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithAudioInput(client AudioInput) ControllerOption {
	return func(c *Controller) { c.audioInput.Set(client) }
}

type AudioOutput interface {
	audioOutputBase
}

type AudioOutputMarked interface {
	audioOutputBase
	Mark(string, func(string)) error
}

func WithAudioOutput(client AudioOutput) ControllerOption {
	return func(c *Controller) { c.audioOutput.Set(client) }
}

type AgentChannel interface {
	Submit(ctx context.Context, envelope wire.Envelope) error
}

func WithAgentChannel(channel AgentChannel) ControllerOption {
	return func(c *Controller) { c.agent = channel }
}

func WithTunables(tunables Tunables) ControllerOption {
	return func(c *Controller) { c.tunables = tunables.withDefaults() }
}

func WithLanguage(language string) ControllerOption {
	return func(c *Controller) { c.language = language }
}

// WithFallbackClip sets a locally bundled audio clip played when voice output
// degrades, so the failure itself is audible.
func WithFallbackClip(clip []byte) ControllerOption {
	return func(c *Controller) { c.fallbackClip = clip }
}

// WithGestureGatedPlayback starts playback locked until UnlockPlayback is
// called. Browser-style environments that refuse autoplay before a user
// gesture need this; everyone else can leave playback unlocked.
func WithGestureGatedPlayback() ControllerOption {
	return func(c *Controller) { c.playbackUnlocked.Store(false) }
}

type RunOptions struct {
	onAssistantText       func(text string)
	onProcessingIndicator func(visible bool)
	onTranscriptUpdate    func(transcript string, interim bool)
	onUtteranceSubmitted  func(utterance Utterance)
	onStateChanged        func(from, to TurnState)
	onPlaybackEnded       func(transcript string)
	onSpokenSegment       func(text string)
	onCancellation        func()
	onDegraded            func(reason string)
	onApology             func()
	onWaitRequested       func()
	onCaptureEnergy       func(peakRMS float64)
	onCaptureStateChanged func(recording bool)
	onRecognitionError    func(err error)
}

type RunOption func(*RunOptions)

// WithAssistantTextCallback registers a callback for reply text chunks as the
// agent streams them, independent of whether voice output is enabled.
func WithAssistantTextCallback(callback func(text string)) RunOption {
	return func(o *RunOptions) { o.onAssistantText = callback }
}

// WithProcessingIndicatorCallback registers a callback toggled while an
// utterance is awaiting the agent's reply.
func WithProcessingIndicatorCallback(callback func(visible bool)) RunOption {
	return func(o *RunOptions) { o.onProcessingIndicator = callback }
}

// WithTranscriptUpdateCallback registers a callback for live transcripts of
// the user's speech. Interim updates are flagged; they may be revised.
func WithTranscriptUpdateCallback(callback func(transcript string, interim bool)) RunOption {
	return func(o *RunOptions) { o.onTranscriptUpdate = callback }
}

func WithUtteranceSubmittedCallback(callback func(utterance Utterance)) RunOption {
	return func(o *RunOptions) { o.onUtteranceSubmitted = callback }
}

func WithStateChangedCallback(callback func(from, to TurnState)) RunOption {
	return func(o *RunOptions) { o.onStateChanged = callback }
}

// WithPlaybackEndedCallback registers a callback invoked with the spoken
// transcript once a reply finishes playing.
func WithPlaybackEndedCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) { o.onPlaybackEnded = callback }
}

func WithSpokenSegmentCallback(callback func(text string)) RunOption {
	return func(o *RunOptions) { o.onSpokenSegment = callback }
}

func WithCancellationCallback(callback func()) RunOption {
	return func(o *RunOptions) { o.onCancellation = callback }
}

// WithDegradedCallback registers a callback fired once when voice output is
// abandoned for the session.
func WithDegradedCallback(callback func(reason string)) RunOption {
	return func(o *RunOptions) { o.onDegraded = callback }
}

// WithApologyCallback registers a callback fired alongside degradation so the
// surrounding application can show an explanatory message.
func WithApologyCallback(callback func()) RunOption {
	return func(o *RunOptions) { o.onApology = callback }
}

func WithWaitRequestedCallback(callback func()) RunOption {
	return func(o *RunOptions) { o.onWaitRequested = callback }
}

// WithCaptureEnergyCallback registers a callback receiving the running peak
// RMS of the active capture session, for level meters.
func WithCaptureEnergyCallback(callback func(peakRMS float64)) RunOption {
	return func(o *RunOptions) { o.onCaptureEnergy = callback }
}

func WithCaptureStateChangedCallback(callback func(recording bool)) RunOption {
	return func(o *RunOptions) { o.onCaptureStateChanged = callback }
}

func WithRecognitionErrorCallback(callback func(err error)) RunOption {
	return func(o *RunOptions) { o.onRecognitionError = callback }
}

type audioOutputBase interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	ClearBuffer()
}

type audioInputBase interface {
	EncodingInfo() audio.EncodingInfo
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	Close()
}
