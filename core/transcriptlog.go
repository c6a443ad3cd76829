package pipeline

import (
	"sync"
	"time"

	"github.com/jinzhu/copier"
)

// FinishedTurn is one completed exchange: what the user said, what the agent
// answered, and how much of the answer was actually spoken aloud.
type FinishedTurn struct {
	RequestID        string
	UserText         string
	AssistantText    string
	SpokenTranscript string
	CompletedAt      time.Time
}

// transcriptLog keeps the session's conversation history for display and
// hand-off to the surrounding application.
type transcriptLog struct {
	mu    sync.Mutex
	turns []FinishedTurn
}

func (l *transcriptLog) Append(turn FinishedTurn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
}

// Snapshot returns a deep copy so callers can hold onto it across later
// turns without locking.
func (l *transcriptLog) Snapshot() []FinishedTurn {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]FinishedTurn, 0, len(l.turns))
	if err := copier.CopyWithOption(&snapshot, &l.turns, copier.Option{DeepCopy: true}); err != nil {
		return append([]FinishedTurn(nil), l.turns...)
	}
	return snapshot
}
