package pipeline

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/voxloop/voxloop-core/core/audio"
)

// silenceDetector decides when the speaker has finished talking by watching
// RMS amplitude of the captured audio. The speech threshold adapts to the
// loudest window seen so far, so a quiet speaker in a quiet room and a loud
// speaker near a fan both get a usable cutoff.
//
// Time is measured in whole windows of buffered samples rather than wall
// clock, which keeps the detector deterministic regardless of how audio
// frames are batched upstream.
type silenceDetector struct {
	encoding audio.EncodingInfo
	tunables Tunables

	windowBytes    int
	graceWindows   int
	silenceWindows int
	safetyWindows  int

	pending []byte

	windowsSeen  int
	quietWindows int
	peakRMS      float64
	speechSeen   bool
	fired        bool

	onSpeech            func()
	onUtteranceComplete func()
	onSafetyStop        func()
}

func newSilenceDetector(encoding audio.EncodingInfo, tunables Tunables) *silenceDetector {
	d := &silenceDetector{
		encoding:    encoding,
		tunables:    tunables,
		windowBytes: encoding.BytesPerWindow(tunables.EnergyWindow),
	}
	d.graceWindows = windowCount(tunables.GracePeriod, tunables.EnergyWindow)
	d.silenceWindows = windowCount(tunables.SilenceDuration, tunables.EnergyWindow)
	d.safetyWindows = windowCount(tunables.SafetyCeiling, tunables.EnergyWindow)
	return d
}

func windowCount(total, window time.Duration) int {
	if window <= 0 {
		return 0
	}
	n := int(total / window)
	if n < 1 {
		n = 1
	}
	return n
}

// Feed accepts raw captured audio and evaluates every complete window it
// closes. Partial windows stay buffered until more audio arrives.
func (d *silenceDetector) Feed(data []byte) {
	if d == nil || d.fired {
		return
	}

	d.pending = append(d.pending, data...)
	for len(d.pending) >= d.windowBytes {
		window := d.pending[:d.windowBytes]
		d.pending = d.pending[d.windowBytes:]
		d.evaluateWindow(window)
		if d.fired {
			return
		}
	}
}

// PeakRMS reports the loudest window seen since the last Reset.
func (d *silenceDetector) PeakRMS() float64 {
	if d == nil {
		return 0
	}
	return d.peakRMS
}

// Reset returns the detector to its initial state for a fresh session.
func (d *silenceDetector) Reset() {
	if d == nil {
		return
	}
	d.pending = d.pending[:0]
	d.windowsSeen = 0
	d.quietWindows = 0
	d.peakRMS = 0
	d.speechSeen = false
	d.fired = false
}

func (d *silenceDetector) evaluateWindow(window []byte) {
	d.windowsSeen++

	rms := rmsLinear16(window)
	if rms > d.peakRMS {
		d.peakRMS = rms
	}

	threshold := d.peakRMS * d.tunables.PeakRatio
	if threshold < d.tunables.MinimumFloor {
		threshold = d.tunables.MinimumFloor
	}

	if rms >= threshold && rms >= d.tunables.MinimumFloor {
		if !d.speechSeen && d.onSpeech != nil {
			d.onSpeech()
		}
		d.speechSeen = true
		d.quietWindows = 0
		return
	}

	if !d.speechSeen {
		if d.windowsSeen >= d.safetyWindows {
			d.fired = true
			if d.onSafetyStop != nil {
				d.onSafetyStop()
			}
		}
		return
	}

	// The grace period only delays the start of silence counting; it never
	// blocks the safety ceiling or peak tracking.
	if d.windowsSeen <= d.graceWindows {
		return
	}

	d.quietWindows++
	if d.quietWindows >= d.silenceWindows {
		d.fired = true
		if d.onUtteranceComplete != nil {
			d.onUtteranceComplete()
		}
	}
}

// rmsLinear16 computes root-mean-square amplitude of little-endian 16-bit PCM,
// normalized to [0, 1].
func rmsLinear16(window []byte) float64 {
	sampleCount := len(window) / 2
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < sampleCount; i++ {
		sample := int16(binary.LittleEndian.Uint16(window[i*2:]))
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}
	return math.Sqrt(sum / float64(sampleCount))
}
