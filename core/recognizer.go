package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/voxloop/voxloop-core/core/audio"
	"github.com/voxloop/voxloop-core/core/recognition"
)

// recognizer wraps the configured recognition client so the rest of the
// pipeline can stay nil-safe when no voice input is wired up.
type recognizer struct {
	client Recognizer
}

func newRecognizer(client Recognizer) *recognizer {
	return &recognizer{client: client}
}

func (r *recognizer) set(client Recognizer) {
	if r != nil {
		r.client = client
	}
}

func (r *recognizer) isConfigured() bool {
	return r != nil && r.client != nil
}

// Start opens the transcription stream and routes results into the capture
// controller. Transient no-speech errors are swallowed; everything else
// reaches onError.
func (r *recognizer) Start(ctx context.Context, encodingInfo audio.EncodingInfo, capture *captureController, onError func(err error)) error {
	if !r.isConfigured() {
		return nil
	}

	opts := []recognition.TranscriptionOption{
		recognition.WithInterimTranscriptionCallback(capture.OnInterimTranscript),
		recognition.WithSegmentTranscriptionCallback(capture.OnFinalSegment),
		recognition.WithErrorCallback(func(err error) {
			if errors.Is(err, recognition.ErrNoSpeech) {
				logger.Debug("recognizer reported no speech, continuing")
				return
			}
			if onError != nil {
				onError(err)
			}
		}),
		recognition.WithEncodingInfo(encodingInfo),
	}

	if err := r.client.Transcribe(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start transcribing: %w", err)
	}

	return nil
}

func (r *recognizer) SendAudio(audio []byte) error {
	if !r.isConfigured() {
		return nil
	}

	return r.client.SendAudio(audio)
}

func (r *recognizer) Close(ctx context.Context) error {
	if !r.isConfigured() {
		return nil
	}

	switch c := r.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close recognition client: %w", err)
		}
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close recognition client: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}
