package pipeline

import (
	"strings"
	"sync"
)

// playbackSlot is the resolved outcome of one synthesis request. A skip slot
// holds the text that failed to synthesize so the spoken transcript stays
// complete.
type playbackSlot struct {
	Audio []byte
	Text  string
	Skip  bool
}

// playbackSequencer reorders synthesis completions, which arrive in arbitrary
// order, back into strict sequence order for playback. At most one slot plays
// at a time; skip slots are consumed silently; ready slots wait until playback
// is unlocked.
//
// Completion of the whole reply requires that no slot is playing, no further
// segments are coming, and the request pool reports nothing in flight.
type playbackSequencer struct {
	mu sync.Mutex

	slots    map[int]playbackSlot
	next     int
	playing  bool
	unlocked bool
	noMore   bool
	finished bool
	stopped  bool

	dispatched int
	skipped    int
	played     int
	spoken     []string

	// inFlight reports outstanding synthesis requests; nil means none.
	inFlight func() int

	play            func(slot playbackSlot, onDone func())
	onFirstPlayback func()
	onSegmentPlayed func(sequence int, text string)
	onFinished      func(totalFailure bool, transcript string)
}

func newPlaybackSequencer(unlocked bool) *playbackSequencer {
	return &playbackSequencer{
		slots:    map[int]playbackSlot{},
		unlocked: unlocked,
	}
}

// NoteDispatched records that a segment was handed to the request pool, so
// total failure can be told apart from a reply that produced no segments.
func (q *playbackSequencer) NoteDispatched(sequence int) {
	q.mu.Lock()
	q.dispatched++
	q.mu.Unlock()
}

// Resolve stores the outcome for a sequence number and tries to make
// progress. Resolutions may arrive in any order.
func (q *playbackSequencer) Resolve(sequence int, slot playbackSlot) {
	q.mu.Lock()
	if q.stopped || q.finished {
		q.mu.Unlock()
		return
	}
	q.slots[sequence] = slot
	q.mu.Unlock()

	q.advance()
}

// NoMoreSegments marks the reply's segment stream as complete.
func (q *playbackSequencer) NoMoreSegments() {
	q.mu.Lock()
	q.noMore = true
	q.mu.Unlock()

	q.advance()
}

// Unlock permits ready slots to play. Slots resolved while locked play
// retroactively, in order.
func (q *playbackSequencer) Unlock() {
	q.mu.Lock()
	q.unlocked = true
	q.mu.Unlock()

	q.advance()
}

// Poke re-evaluates completion; the pool calls it when its in-flight count
// drains to zero.
func (q *playbackSequencer) Poke() {
	q.advance()
}

// Stop abandons all pending slots. Used on barge-in and shutdown.
func (q *playbackSequencer) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.slots = map[int]playbackSlot{}
	q.mu.Unlock()
}

func (q *playbackSequencer) advance() {
	for {
		q.mu.Lock()
		if q.stopped || q.finished || q.playing {
			q.mu.Unlock()
			return
		}

		slot, ok := q.slots[q.next]
		if !ok {
			q.finishIfDoneLocked()
			return
		}

		if slot.Skip {
			delete(q.slots, q.next)
			q.next++
			q.skipped++
			q.mu.Unlock()
			continue
		}

		if !q.unlocked {
			q.mu.Unlock()
			return
		}

		sequence := q.next
		delete(q.slots, q.next)
		q.next++
		first := q.played == 0
		q.played++
		q.playing = true
		q.spoken = append(q.spoken, slot.Text)
		q.mu.Unlock()

		if first && q.onFirstPlayback != nil {
			q.onFirstPlayback()
		}

		// Playback completion can race between the device mark and the
		// watchdog; only the first wins.
		done := sync.OnceFunc(func() { q.slotDone(sequence, slot.Text) })
		q.play(slot, done)
		return
	}
}

func (q *playbackSequencer) slotDone(sequence int, text string) {
	q.mu.Lock()
	q.playing = false
	q.mu.Unlock()

	if q.onSegmentPlayed != nil {
		q.onSegmentPlayed(sequence, text)
	}

	q.advance()
}

// finishIfDoneLocked is entered holding q.mu and releases it.
func (q *playbackSequencer) finishIfDoneLocked() {
	if !q.noMore || q.playing {
		q.mu.Unlock()
		return
	}
	if q.inFlight != nil && q.inFlight() > 0 {
		q.mu.Unlock()
		return
	}
	if _, pending := q.slots[q.next]; pending {
		q.mu.Unlock()
		return
	}

	q.finished = true
	totalFailure := q.dispatched > 0 && q.played == 0
	transcript := strings.Join(q.spoken, " ")
	onFinished := q.onFinished
	q.mu.Unlock()

	if onFinished != nil {
		onFinished(totalFailure, transcript)
	}
}
