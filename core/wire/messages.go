// Package wire models the JSON messages exchanged with the surrounding chat
// application as a closed set of tagged variants, validated at the boundary.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

type MessageType string

const (
	// MessageTypeUtterance is an outbound user utterance submission.
	MessageTypeUtterance MessageType = "utterance"
	// MessageTypeReplyChunk is an inbound incremental assistant reply fragment.
	MessageTypeReplyChunk MessageType = "reply_chunk"
	// MessageTypeReplyEnd marks the end of the current assistant reply.
	MessageTypeReplyEnd MessageType = "reply_end"
)

var ErrUnknownMessageType = errors.New("unknown wire message type")

// Envelope is the outer frame of every channel message.
type Envelope struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Utterance is the payload of an outbound utterance submission.
type Utterance struct {
	Text      string `json:"text"`
	VoiceMode bool   `json:"voice_mode"`
	HandsFree bool   `json:"hands_free"`
	// VoiceFailed tags the submission after the pipeline degraded to
	// text-only mode, so the agent does not expect voice continuation.
	VoiceFailed bool `json:"voice_failed,omitempty"`
}

// ReplyChunk is the payload of an inbound reply fragment.
type ReplyChunk struct {
	Text string `json:"text"`
}

func NewUtteranceEnvelope(requestID string, utterance Utterance) (Envelope, error) {
	payload, err := json.Marshal(utterance)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode utterance payload: %w", err)
	}

	return Envelope{Type: MessageTypeUtterance, RequestID: requestID, Payload: payload}, nil
}

// Validate checks the closed-set invariants of an envelope before it crosses
// the channel boundary in either direction.
func (e Envelope) Validate() error {
	switch e.Type {
	case MessageTypeUtterance:
		var utterance Utterance
		if err := json.Unmarshal(e.Payload, &utterance); err != nil {
			return fmt.Errorf("malformed utterance payload: %w", err)
		}
		if utterance.Text == "" {
			return fmt.Errorf("utterance payload has empty text")
		}
		if e.RequestID == "" {
			return fmt.Errorf("utterance envelope has no request id")
		}
	case MessageTypeReplyChunk:
		var chunk ReplyChunk
		if err := json.Unmarshal(e.Payload, &chunk); err != nil {
			return fmt.Errorf("malformed reply chunk payload: %w", err)
		}
	case MessageTypeReplyEnd:
		// No payload.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, e.Type)
	}

	return nil
}

// DecodeReplyChunk extracts the text of a reply chunk envelope.
func DecodeReplyChunk(e Envelope) (string, error) {
	if e.Type != MessageTypeReplyChunk {
		return "", fmt.Errorf("expected %q envelope, got %q", MessageTypeReplyChunk, e.Type)
	}

	var chunk ReplyChunk
	if err := json.Unmarshal(e.Payload, &chunk); err != nil {
		return "", fmt.Errorf("malformed reply chunk payload: %w", err)
	}
	return chunk.Text, nil
}
