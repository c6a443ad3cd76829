package pipeline

import "time"

// Tunables are the empirically tuned knobs of the pipeline. The defaults come
// from the original browser/microphone deployment and are not asserted to be
// optimal; embedders are expected to adjust them per device and environment.
type Tunables struct {
	// EnergyWindow is the sampling window over which RMS amplitude is
	// computed.
	EnergyWindow time.Duration
	// GracePeriod suppresses silence detection right after recording starts,
	// so the initial pause before speaking is never mistaken for "done".
	GracePeriod time.Duration
	// SilenceDuration is how long RMS must stay below threshold, after
	// speech was detected at least once, before the utterance is complete.
	SilenceDuration time.Duration
	// PeakRatio scales the running peak RMS into the speech threshold.
	PeakRatio float64
	// MinimumFloor is the lowest the adaptive threshold is allowed to go.
	MinimumFloor float64
	// SafetyCeiling force-stops a session in which no speech was ever
	// detected, so a stuck or muted microphone cannot record forever.
	SafetyCeiling time.Duration

	// DebounceDelay is the pause after the last transcript update before
	// auto-submitting.
	DebounceDelay time.Duration
	// HesitationDebounce replaces DebounceDelay when the trailing text ends
	// with a verbal hesitation marker.
	HesitationDebounce time.Duration
	// WaitExtension is the completion timer applied by the "wait" trigger
	// word.
	WaitExtension time.Duration
	// RepeatConfirmWindow is how soon a repeated short homophone-risk word
	// counts as confirmation rather than noise.
	RepeatConfirmWindow time.Duration

	// MinSegmentLength holds segments shorter than this for concatenation
	// with the next one; very short synthesized snippets sound like
	// stutters.
	MinSegmentLength int
	// FirstSegmentMaxLength is the force-cut ceiling for the first segment
	// of a reply, kept tight to minimize time-to-first-audio.
	FirstSegmentMaxLength int
	// SegmentMaxLength is the force-cut ceiling for later segments.
	SegmentMaxLength int
	// FlushMinLength is the minimum trailing text worth emitting on flush.
	FlushMinLength int

	// SynthesisTimeout caps each synthesis request.
	SynthesisTimeout time.Duration
	// HandsFreeRearmDelay is the pause before recording restarts after
	// playback, to avoid capturing playback echo.
	HandsFreeRearmDelay time.Duration
	// PlaybackSafetyMargin pads the per-slot playback watchdog beyond the
	// audio's nominal duration.
	PlaybackSafetyMargin time.Duration
}

func DefaultTunables() Tunables {
	return Tunables{
		EnergyWindow:    100 * time.Millisecond,
		GracePeriod:     1500 * time.Millisecond,
		SilenceDuration: 1800 * time.Millisecond,
		PeakRatio:       0.15,
		MinimumFloor:    0.01,
		SafetyCeiling:   20 * time.Second,

		DebounceDelay:       1200 * time.Millisecond,
		HesitationDebounce:  2500 * time.Millisecond,
		WaitExtension:       20 * time.Second,
		RepeatConfirmWindow: 3 * time.Second,

		MinSegmentLength:      18,
		FirstSegmentMaxLength: 80,
		SegmentMaxLength:      240,
		FlushMinLength:        5,

		SynthesisTimeout:     12 * time.Second,
		HandsFreeRearmDelay:  2 * time.Second,
		PlaybackSafetyMargin: 3 * time.Second,
	}
}

// withDefaults fills any zero-valued knob with its default so partially
// populated Tunables stay usable.
func (t Tunables) withDefaults() Tunables {
	defaults := DefaultTunables()
	if t.EnergyWindow == 0 {
		t.EnergyWindow = defaults.EnergyWindow
	}
	if t.GracePeriod == 0 {
		t.GracePeriod = defaults.GracePeriod
	}
	if t.SilenceDuration == 0 {
		t.SilenceDuration = defaults.SilenceDuration
	}
	if t.PeakRatio == 0 {
		t.PeakRatio = defaults.PeakRatio
	}
	if t.MinimumFloor == 0 {
		t.MinimumFloor = defaults.MinimumFloor
	}
	if t.SafetyCeiling == 0 {
		t.SafetyCeiling = defaults.SafetyCeiling
	}
	if t.DebounceDelay == 0 {
		t.DebounceDelay = defaults.DebounceDelay
	}
	if t.HesitationDebounce == 0 {
		t.HesitationDebounce = defaults.HesitationDebounce
	}
	if t.WaitExtension == 0 {
		t.WaitExtension = defaults.WaitExtension
	}
	if t.RepeatConfirmWindow == 0 {
		t.RepeatConfirmWindow = defaults.RepeatConfirmWindow
	}
	if t.MinSegmentLength == 0 {
		t.MinSegmentLength = defaults.MinSegmentLength
	}
	if t.FirstSegmentMaxLength == 0 {
		t.FirstSegmentMaxLength = defaults.FirstSegmentMaxLength
	}
	if t.SegmentMaxLength == 0 {
		t.SegmentMaxLength = defaults.SegmentMaxLength
	}
	if t.FlushMinLength == 0 {
		t.FlushMinLength = defaults.FlushMinLength
	}
	if t.SynthesisTimeout == 0 {
		t.SynthesisTimeout = defaults.SynthesisTimeout
	}
	if t.HandsFreeRearmDelay == 0 {
		t.HandsFreeRearmDelay = defaults.HandsFreeRearmDelay
	}
	if t.PlaybackSafetyMargin == 0 {
		t.PlaybackSafetyMargin = defaults.PlaybackSafetyMargin
	}
	return t
}
