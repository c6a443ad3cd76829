package events

const (
	// KindPlaybackStarted identifies the first audio slot beginning playback.
	KindPlaybackStarted Kind = "playback.started"
	// KindSegmentPlayed identifies an audio slot finishing playback.
	KindSegmentPlayed Kind = "playback.segment_played"
	// KindPlaybackEnded identifies the ordered sequence draining completely.
	KindPlaybackEnded Kind = "playback.ended"
	// KindPlaybackFailed identifies the output device refusing audio.
	KindPlaybackFailed Kind = "playback.failed"
)

// PlaybackStarted marks the first audio slot of a reply beginning playback.
type PlaybackStarted struct{ Base }

// NewPlaybackStarted creates a playback started event.
func NewPlaybackStarted() PlaybackStarted {
	return PlaybackStarted{Base: NewBase(KindPlaybackStarted)}
}

// SegmentPlayed marks an audio slot finishing playback, with its spoken text.
type SegmentPlayed struct {
	Base
	Sequence int
	Text     string
}

// NewSegmentPlayed creates a segment played event.
func NewSegmentPlayed(sequence int, text string) SegmentPlayed {
	return SegmentPlayed{Base: NewBase(KindSegmentPlayed), Sequence: sequence, Text: text}
}

// PlaybackEnded marks the end of ordered playback for the current reply.
// Transcript holds the text of every slot that actually played.
type PlaybackEnded struct {
	Base
	Transcript string
}

// NewPlaybackEnded creates a playback ended event.
func NewPlaybackEnded(transcript string) PlaybackEnded {
	return PlaybackEnded{Base: NewBase(KindPlaybackEnded), Transcript: transcript}
}

// PlaybackFailed marks the output device refusing audio. It precedes the
// degraded event for the same failure.
type PlaybackFailed struct {
	Base
	Err error
}

// NewPlaybackFailed creates a playback failed event.
func NewPlaybackFailed(err error) PlaybackFailed {
	return PlaybackFailed{Base: NewBase(KindPlaybackFailed), Err: err}
}
