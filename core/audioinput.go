package pipeline

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/voxloop/voxloop-core/core/audio"
)

// audioInput hides the difference between streaming-only devices and devices
// with explicit capture controls. Push-to-talk uses the controls when they
// exist; hands-free keeps the stream open continuously.
type audioInput struct {
	// base stores the configured input client used for streaming audio.
	base audioInputBase
	// fineControls is set when the input client supports explicit capture controls.
	fineControls AudioInputFine

	// connected reports whether a concrete input client is currently configured.
	connected atomic.Bool
	// capturing reports whether the input client is currently capturing audio.
	capturing atomic.Bool
	// alwaysCapture keeps capture running continuously when control APIs exist.
	alwaysCapture atomic.Bool

	// onAudio receives every captured frame.
	onAudio func(audio []byte)
	// onCaptureError receives asynchronous device failures.
	onCaptureError func(err error)
}

func newAudioInput(client audioInputBase, onAudio func(audio []byte), onCaptureError func(err error)) *audioInput {
	if onAudio == nil {
		onAudio = func([]byte) {}
	}
	if onCaptureError == nil {
		onCaptureError = func(error) {}
	}

	input := audioInput{onAudio: onAudio, onCaptureError: onCaptureError}
	input.Set(client)
	return &input
}

func (a *audioInput) Set(client audioInputBase) {
	if a == nil {
		return
	}

	a.base = client
	a.fineControls = nil
	a.connected.Store(false)
	a.capturing.Store(false)

	if client == nil {
		return
	}

	a.connected.Store(true)
	if fine, ok := client.(AudioInputFine); ok {
		a.fineControls = fine
	}
}

func (a *audioInput) IsConfigured() bool            { return a != nil && a.connected.Load() }
func (a *audioInput) SupportsCaptureControls() bool { return a != nil && a.fineControls != nil }
func (a *audioInput) IsCapturing() bool             { return a != nil && a.capturing.Load() }

func (a *audioInput) SetAlwaysCapture(always bool) {
	if a == nil {
		return
	}
	a.alwaysCapture.Store(always)
}

// Capture opens the device stream. Permission failures surface synchronously
// wrapped in ErrCaptureDenied when the client reports them that way; other
// failures arrive through the error callback.
func (a *audioInput) Capture(ctx context.Context) error {
	if a == nil || !a.IsConfigured() {
		return nil
	}

	if !a.capturing.CompareAndSwap(false, true) {
		return nil
	}

	if a.SupportsCaptureControls() {
		if err := a.fineControls.StartCapture(ctx, a.onAudio); err != nil {
			a.capturing.Store(false)
			return err
		}
		return nil
	}

	go func() {
		if err := a.base.Stream(ctx, a.onAudio); err != nil {
			a.capturing.Store(false)
			a.onCaptureError(err)
		}
	}()
	return nil
}

func (a *audioInput) StopCapture() error {
	if a == nil || !a.IsCapturing() {
		return nil
	}

	// Continuous streams stay open; frames are simply not fed downstream
	// while no session is active.
	if a.alwaysCapture.Load() || !a.SupportsCaptureControls() {
		return nil
	}

	if err := a.fineControls.StopCapture(); err != nil {
		return err
	}
	a.capturing.Store(false)
	return nil
}

func (a *audioInput) Close() error {
	var errs error
	if a.base != nil && a.IsConfigured() {
		if a.fineControls != nil {
			if err := a.fineControls.StopCapture(); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		a.base.Close()
	}
	a.capturing.Store(false)

	return errs
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}
