package events

import (
	"errors"
	"testing"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "capture started", event: NewCaptureStarted(), expected: KindCaptureStarted},
		{name: "capture denied", event: NewCaptureDenied(errors.New("denied")), expected: KindCaptureDenied},
		{name: "capture failed", event: NewCaptureFailed(errors.New("failed")), expected: KindCaptureFailed},
		{name: "capture stopped", event: NewCaptureStopped(), expected: KindCaptureStopped},
		{name: "transcript updated", event: NewTranscriptUpdated("text"), expected: KindTranscriptUpdated},
		{name: "wait requested", event: NewWaitRequested(), expected: KindWaitRequested},
		{name: "utterance submitted", event: NewUtteranceSubmitted("id", "text"), expected: KindUtteranceSubmitted},
		{name: "reply segment", event: NewReplySegment("seg"), expected: KindReplySegment},
		{name: "reply ended", event: NewReplyEnded(), expected: KindReplyEnded},
		{name: "segment dispatched", event: NewSegmentDispatched(0, "seg"), expected: KindSegmentDispatched},
		{name: "segment skipped", event: NewSegmentSkipped(0, errors.New("timeout")), expected: KindSegmentSkipped},
		{name: "playback started", event: NewPlaybackStarted(), expected: KindPlaybackStarted},
		{name: "segment played", event: NewSegmentPlayed(0, "seg"), expected: KindSegmentPlayed},
		{name: "playback ended", event: NewPlaybackEnded("text"), expected: KindPlaybackEnded},
		{name: "playback failed", event: NewPlaybackFailed(errors.New("device")), expected: KindPlaybackFailed},
		{name: "state changed", event: NewStateChanged("listening", "processing"), expected: KindStateChanged},
		{name: "turn cancelled", event: NewTurnCancelled(), expected: KindTurnCancelled},
		{name: "degraded", event: NewDegraded("total synthesis failure"), expected: KindDegraded},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestKindNamespaces(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected string
	}{
		{kind: KindCaptureStarted, expected: "capture"},
		{kind: KindUtteranceSubmitted, expected: "capture"},
		{kind: KindReplySegment, expected: "reply"},
		{kind: KindSegmentSkipped, expected: "synthesis"},
		{kind: KindPlaybackFailed, expected: "playback"},
		{kind: KindDegraded, expected: "turn_state"},
	}

	for _, testCase := range testCases {
		if got := testCase.kind.Namespace(); got != testCase.expected {
			t.Fatalf("expected namespace %q for kind %q, got %q", testCase.expected, testCase.kind, got)
		}
	}
}

func TestCancelledAndDegradedKindsAreDistinct(t *testing.T) {
	cancelled := NewTurnCancelled()
	degraded := NewDegraded("playback exception")

	if cancelled.Kind() == degraded.Kind() {
		t.Fatalf("expected cancelled and degraded kinds to differ, both were %q", cancelled.Kind())
	}
}
