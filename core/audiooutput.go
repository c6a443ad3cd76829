package pipeline

import (
	"reflect"
	"time"

	"github.com/voxloop/voxloop-core/core/audio"
)

// audioOutput normalizes playback clients behind one facade. Clients that
// support marks report playback completion precisely; for the rest,
// completion is estimated from the audio's nominal duration.
type audioOutput struct {
	// base stores the configured output client.
	base audioOutputBase
	// marked is set when the output client supports callback-based marks.
	marked AudioOutputMarked
}

func newAudioOutput(client audioOutputBase) *audioOutput {
	output := audioOutput{}
	output.Set(client)
	return &output
}

// Set replaces the configured output client. Nil and typed-nil clients are
// treated as unconfigured.
func (a *audioOutput) Set(client audioOutputBase) {
	if a == nil {
		return
	}

	a.base = nil
	a.marked = nil

	if isNilAudioOutputBase(client) {
		return
	}
	a.base = client

	if marked, ok := client.(AudioOutputMarked); ok {
		a.marked = marked
	}
}

func (a *audioOutput) IsConfigured() bool {
	return a != nil && a.base != nil
}

// SendAudio forwards a chunk to the configured output client. Unconfigured
// facades drop the chunk. A returned error means the device refused the
// audio; nothing queued by this call will be heard.
func (a *audioOutput) SendAudio(audio []byte) error {
	if a == nil || a.base == nil {
		return nil
	}
	return a.base.SendAudio(audio)
}

// NotifyPlayed arranges for onPlayed to run once the given audio has been
// heard. Marked clients confirm through the device; otherwise a timer based
// on the audio's duration plus the safety margin stands in. The caller must
// tolerate both paths firing; it deduplicates.
func (a *audioOutput) NotifyPlayed(audioData []byte, mark string, margin time.Duration, onPlayed func()) {
	if a == nil || a.base == nil {
		onPlayed()
		return
	}

	estimate := a.EncodingInfo().Duration(len(audioData)) + margin
	if a.marked != nil {
		if err := a.marked.Mark(mark, func(string) { onPlayed() }); err == nil {
			// The watchdog still runs in case the mark never comes back.
			time.AfterFunc(estimate, onPlayed)
			return
		}
	}

	time.AfterFunc(estimate, onPlayed)
}

// Clear flushes buffered output on the configured client.
func (a *audioOutput) Clear() {
	if a == nil || a.base == nil {
		return
	}
	a.base.ClearBuffer()
}

func (a *audioOutput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

// isNilAudioOutputBase detects nil and typed-nil interface values so Set does
// not store unusable interface wrappers as configured clients.
func isNilAudioOutputBase(client audioOutputBase) bool {
	if client == nil {
		return true
	}

	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
