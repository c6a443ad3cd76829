package pipeline

import (
	"fmt"
	"sync"
	"testing"
)

// recordingPlayer completes every slot synchronously and records play order.
type recordingPlayer struct {
	mu     sync.Mutex
	played []string
}

func (p *recordingPlayer) play(slot playbackSlot, onDone func()) {
	p.mu.Lock()
	p.played = append(p.played, slot.Text)
	p.mu.Unlock()
	onDone()
}

func (p *recordingPlayer) order() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

func permutations(values []int) [][]int {
	if len(values) <= 1 {
		return [][]int{append([]int(nil), values...)}
	}

	var result [][]int
	for i := range values {
		rest := make([]int, 0, len(values)-1)
		rest = append(rest, values[:i]...)
		rest = append(rest, values[i+1:]...)
		for _, tail := range permutations(rest) {
			result = append(result, append([]int{values[i]}, tail...))
		}
	}
	return result
}

func TestSequencerPlaysInOrderForEveryResolutionOrder(t *testing.T) {
	const segments = 4

	for _, perm := range permutations([]int{0, 1, 2, 3}) {
		player := &recordingPlayer{}
		q := newPlaybackSequencer(true)
		q.play = player.play

		finished := false
		q.onFinished = func(totalFailure bool, _ string) {
			if totalFailure {
				t.Fatalf("perm %v: unexpected total failure", perm)
			}
			finished = true
		}

		for seq := 0; seq < segments; seq++ {
			q.NoteDispatched(seq)
		}
		for _, seq := range perm {
			q.Resolve(seq, playbackSlot{Audio: []byte{1}, Text: fmt.Sprintf("s%d", seq)})
		}
		q.NoMoreSegments()

		want := []string{"s0", "s1", "s2", "s3"}
		got := player.order()
		if len(got) != len(want) {
			t.Fatalf("perm %v: played %v, want %v", perm, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("perm %v: played %v, want %v", perm, got, want)
			}
		}
		if !finished {
			t.Fatalf("perm %v: sequencer never reported completion", perm)
		}
	}
}

func TestSequencerSkipsFailedSlotsWithoutStalling(t *testing.T) {
	player := &recordingPlayer{}
	q := newPlaybackSequencer(true)
	q.play = player.play

	for seq := 0; seq < 3; seq++ {
		q.NoteDispatched(seq)
	}

	// Segment 1 fails; 2 resolves before 0.
	q.Resolve(2, playbackSlot{Audio: []byte{1}, Text: "s2"})
	q.Resolve(1, playbackSlot{Text: "s1", Skip: true})
	q.Resolve(0, playbackSlot{Audio: []byte{1}, Text: "s0"})
	q.NoMoreSegments()

	got := player.order()
	if len(got) != 2 || got[0] != "s0" || got[1] != "s2" {
		t.Fatalf("played %v, want [s0 s2]", got)
	}
}

func TestSequencerNothingPlaysBeforeLowerSequenceResolves(t *testing.T) {
	player := &recordingPlayer{}
	q := newPlaybackSequencer(true)
	q.play = player.play

	q.NoteDispatched(0)
	q.NoteDispatched(1)

	q.Resolve(1, playbackSlot{Audio: []byte{1}, Text: "s1"})
	if got := player.order(); len(got) != 0 {
		t.Fatalf("segment 1 played before segment 0 resolved: %v", got)
	}

	q.Resolve(0, playbackSlot{Audio: []byte{1}, Text: "s0"})
	got := player.order()
	if len(got) != 2 || got[0] != "s0" || got[1] != "s1" {
		t.Fatalf("played %v, want [s0 s1]", got)
	}
}

func TestSequencerTotalFailure(t *testing.T) {
	q := newPlaybackSequencer(true)
	q.play = func(playbackSlot, func()) {
		t.Fatalf("skip slots must not reach the player")
	}

	var gotTotalFailure bool
	finishes := 0
	q.onFinished = func(totalFailure bool, _ string) {
		gotTotalFailure = totalFailure
		finishes++
	}

	remaining := 3
	q.inFlight = func() int { return remaining }

	for seq := 0; seq < 3; seq++ {
		q.NoteDispatched(seq)
	}
	q.NoMoreSegments()
	for seq := 0; seq < 3; seq++ {
		remaining--
		q.Resolve(seq, playbackSlot{Text: fmt.Sprintf("s%d", seq), Skip: true})
	}

	if finishes != 1 {
		t.Fatalf("expected exactly one completion report, got %d", finishes)
	}
	if !gotTotalFailure {
		t.Fatalf("all-skip reply was not reported as total failure")
	}
}

func TestSequencerEmptyReplyIsNotTotalFailure(t *testing.T) {
	q := newPlaybackSequencer(true)
	q.play = func(playbackSlot, func()) {}

	var gotTotalFailure bool
	q.onFinished = func(totalFailure bool, _ string) { gotTotalFailure = totalFailure }

	q.NoMoreSegments()

	if gotTotalFailure {
		t.Fatalf("reply with no segments was reported as total failure")
	}
}

func TestSequencerUnlockPlaysRetroactively(t *testing.T) {
	player := &recordingPlayer{}
	q := newPlaybackSequencer(false)
	q.play = player.play

	var firstPlaybacks int
	q.onFirstPlayback = func() { firstPlaybacks++ }

	q.NoteDispatched(0)
	q.NoteDispatched(1)
	q.Resolve(0, playbackSlot{Audio: []byte{1}, Text: "s0"})
	q.Resolve(1, playbackSlot{Audio: []byte{1}, Text: "s1"})

	if got := player.order(); len(got) != 0 {
		t.Fatalf("locked sequencer played %v", got)
	}

	q.Unlock()
	q.NoMoreSegments()

	got := player.order()
	if len(got) != 2 || got[0] != "s0" || got[1] != "s1" {
		t.Fatalf("played %v after unlock, want [s0 s1]", got)
	}
	if firstPlaybacks != 1 {
		t.Fatalf("first playback fired %d times", firstPlaybacks)
	}
}

func TestSequencerTranscriptCoversPlayedSegments(t *testing.T) {
	player := &recordingPlayer{}
	q := newPlaybackSequencer(true)
	q.play = player.play

	var transcript string
	q.onFinished = func(_ bool, spoken string) { transcript = spoken }

	q.NoteDispatched(0)
	q.NoteDispatched(1)
	q.Resolve(0, playbackSlot{Audio: []byte{1}, Text: "Hello there."})
	q.Resolve(1, playbackSlot{Audio: []byte{1}, Text: "How are you?"})
	q.NoMoreSegments()

	if transcript != "Hello there. How are you?" {
		t.Fatalf("transcript %q", transcript)
	}
}

func TestSequencerStopDiscardsPending(t *testing.T) {
	player := &recordingPlayer{}
	q := newPlaybackSequencer(true)
	q.play = player.play

	q.NoteDispatched(0)
	q.Stop()
	q.Resolve(0, playbackSlot{Audio: []byte{1}, Text: "s0"})
	q.NoMoreSegments()

	if got := player.order(); len(got) != 0 {
		t.Fatalf("stopped sequencer played %v", got)
	}
}
