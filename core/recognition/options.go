package recognition

import (
	"errors"

	"github.com/voxloop/voxloop-core/core/audio"
)

// ErrNoSpeech is reported by recognizers when a result window contained no
// usable speech. It is transient: capture keeps running when it sees it.
var ErrNoSpeech = errors.New("recognizer produced no speech")

type TranscriptionOptions struct {
	// InterimTranscriptionCallback receives the mutable full-transcript
	// snapshot while an utterance is still in progress.
	InterimTranscriptionCallback func(transcript string)
	// SegmentTranscriptionCallback receives finalized, append-only transcript
	// segments.
	SegmentTranscriptionCallback func(segment string)
	// TranscriptionCallback receives the final transcript of a whole
	// utterance once speech ends.
	TranscriptionCallback func(transcript string)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// ErrorCallback receives recognizer errors. [ErrNoSpeech] is transient
	// and safe to ignore; anything else means the session is over.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.InterimTranscriptionCallback = callback
	}
}

func WithSegmentTranscriptionCallback(callback func(segment string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SegmentTranscriptionCallback = callback
	}
}

func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
