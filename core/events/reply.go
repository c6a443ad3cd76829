package events

const (
	// KindReplySegment identifies streamed assistant reply text segments.
	KindReplySegment Kind = "reply.segment"
	// KindReplyEnded identifies the end of the assistant reply stream.
	KindReplyEnded Kind = "reply.ended"
)

// ReplySegment carries a streamed assistant reply text segment.
type ReplySegment struct {
	Base
	Segment string
}

// NewReplySegment creates a reply segment event.
func NewReplySegment(segment string) ReplySegment {
	return ReplySegment{Base: NewBase(KindReplySegment), Segment: segment}
}

// ReplyEnded marks that no more reply chunks are coming for this turn.
type ReplyEnded struct{ Base }

// NewReplyEnded creates a reply ended event.
func NewReplyEnded() ReplyEnded {
	return ReplyEnded{Base: NewBase(KindReplyEnded)}
}
