package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voxloop/voxloop-core/core/synthesis"
)

// scriptedSynthesizer resolves requests according to per-sequence scripts.
type scriptedSynthesizer struct {
	mu      sync.Mutex
	started map[int]chan struct{}
	results map[int]func(ctx context.Context) ([]byte, error)
}

func newScriptedSynthesizer() *scriptedSynthesizer {
	return &scriptedSynthesizer{
		started: map[int]chan struct{}{},
		results: map[int]func(ctx context.Context) ([]byte, error){},
	}
}

func (s *scriptedSynthesizer) script(sequence int, result func(ctx context.Context) ([]byte, error)) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := make(chan struct{})
	s.started[sequence] = started
	s.results[sequence] = result
	return started
}

func (s *scriptedSynthesizer) Synthesize(ctx context.Context, request synthesis.Request) ([]byte, error) {
	s.mu.Lock()
	started := s.started[request.Sequence]
	result := s.results[request.Sequence]
	s.mu.Unlock()

	if started != nil {
		close(started)
	}
	if result == nil {
		return []byte{1}, nil
	}
	return result(ctx)
}

func poolForTest(t *testing.T, client synthesis.Client) (*synthPool, *playbackSequencer, *recordingPlayer, chan struct{}) {
	t.Helper()

	player := &recordingPlayer{}
	q := newPlaybackSequencer(true)
	q.play = player.play

	finished := make(chan struct{})
	q.onFinished = func(bool, string) { close(finished) }

	pool := newSynthPool(client, "en", 500*time.Millisecond, q, noopEventEmitter)
	return pool, q, player, finished
}

func TestSynthPoolRunsRequestsConcurrently(t *testing.T) {
	client := newScriptedSynthesizer()

	release := make(chan struct{})
	started0 := client.script(0, func(ctx context.Context) ([]byte, error) {
		<-release
		return []byte{1}, nil
	})
	started1 := client.script(1, func(ctx context.Context) ([]byte, error) {
		<-release
		return []byte{1}, nil
	})

	pool, q, player, finished := poolForTest(t, client)
	pool.Dispatch(context.Background(), Segment{Sequence: 0, Text: "s0"})
	pool.Dispatch(context.Background(), Segment{Sequence: 1, Text: "s1"})
	q.NoMoreSegments()

	// Both requests must be in flight at once while neither has resolved.
	for _, started := range []chan struct{}{started0, started1} {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatalf("request did not start while another was in flight")
		}
	}
	if pool.inFlight.Load() != 2 {
		t.Fatalf("expected 2 in-flight requests, got %d", pool.inFlight.Load())
	}

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("reply never completed")
	}

	got := player.order()
	if len(got) != 2 || got[0] != "s0" || got[1] != "s1" {
		t.Fatalf("played %v, want [s0 s1]", got)
	}
}

func TestSynthPoolResolvesFailureToSkip(t *testing.T) {
	client := newScriptedSynthesizer()
	client.script(0, func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("boom")
	})
	client.script(1, nil)

	pool, q, player, finished := poolForTest(t, client)
	pool.Dispatch(context.Background(), Segment{Sequence: 0, Text: "s0"})
	pool.Dispatch(context.Background(), Segment{Sequence: 1, Text: "s1"})
	q.NoMoreSegments()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("a failed segment stalled the reply")
	}

	got := player.order()
	if len(got) != 1 || got[0] != "s1" {
		t.Fatalf("played %v, want [s1]", got)
	}
}

func TestSynthPoolTreatsEmptyAudioAsSkip(t *testing.T) {
	client := newScriptedSynthesizer()
	client.script(0, func(ctx context.Context) ([]byte, error) {
		return nil, nil
	})

	pool, q, player, finished := poolForTest(t, client)
	pool.Dispatch(context.Background(), Segment{Sequence: 0, Text: "s0"})
	q.NoMoreSegments()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatalf("empty-audio segment stalled the reply")
	}

	if got := player.order(); len(got) != 0 {
		t.Fatalf("empty audio was played: %v", got)
	}
}

func TestSynthPoolTimesOutSlowRequests(t *testing.T) {
	client := newScriptedSynthesizer()
	client.script(0, func(ctx context.Context) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	pool, q, player, finished := poolForTest(t, client)
	pool.Dispatch(context.Background(), Segment{Sequence: 0, Text: "s0"})
	q.NoMoreSegments()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed-out segment stalled the reply")
	}

	if got := player.order(); len(got) != 0 {
		t.Fatalf("timed-out segment was played: %v", got)
	}
}
