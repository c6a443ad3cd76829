package events

const (
	// KindSegmentDispatched identifies a segment sent for synthesis.
	KindSegmentDispatched Kind = "synthesis.segment_dispatched"
	// KindSegmentSkipped identifies a segment that resolved to skip.
	KindSegmentSkipped Kind = "synthesis.segment_skipped"
)

// SegmentDispatched marks a sentence segment sent to the synthesis endpoint.
type SegmentDispatched struct {
	Base
	Sequence int
	Text     string
}

// NewSegmentDispatched creates a segment dispatched event.
func NewSegmentDispatched(sequence int, text string) SegmentDispatched {
	return SegmentDispatched{Base: NewBase(KindSegmentDispatched), Sequence: sequence, Text: text}
}

// SegmentSkipped marks a segment whose synthesis failed or returned no audio.
// Skips are absorbed locally and never stall the rest of the reply.
type SegmentSkipped struct {
	Base
	Sequence int
	Err      error
}

// NewSegmentSkipped creates a segment skipped event.
func NewSegmentSkipped(sequence int, err error) SegmentSkipped {
	return SegmentSkipped{Base: NewBase(KindSegmentSkipped), Sequence: sequence, Err: err}
}
