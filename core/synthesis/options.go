package synthesis

import "context"

// Request is one independent synthesis call for a single sentence segment.
// Sequence is the ordering key assigned by the segmenter; the endpoint echoes
// it back so out-of-order completions can be reassembled downstream.
type Request struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Sequence int    `json:"sequence"`
}

// Client synthesizes one segment per call. Implementations return the raw
// audio bytes; an empty result with a nil error means the endpoint produced
// no audio for the text (treated as a skippable segment by callers).
type Client interface {
	Synthesize(ctx context.Context, request Request) ([]byte, error)
}
