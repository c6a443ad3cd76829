package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/voxloop/voxloop-core/core/events"
	"github.com/voxloop/voxloop-core/core/synthesis"
)

var errEmptyAudio = errors.New("synthesis returned no audio")

// synthPool dispatches segments to the synthesis client with unbounded
// concurrency, so later segments synthesize while earlier ones are still in
// flight. Failures and timeouts resolve the slot to skip; they never surface
// as errors.
type synthPool struct {
	client   synthesis.Client
	language string
	timeout  time.Duration

	inFlight  atomic.Int32
	sequencer *playbackSequencer
	emit      eventEmitter
}

func newSynthPool(client synthesis.Client, language string, timeout time.Duration, sequencer *playbackSequencer, emit eventEmitter) *synthPool {
	pool := &synthPool{
		client:    client,
		language:  language,
		timeout:   timeout,
		sequencer: sequencer,
		emit:      emit,
	}
	sequencer.inFlight = func() int { return int(pool.inFlight.Load()) }
	return pool
}

// Dispatch starts a synthesis request for the segment and returns
// immediately. The outcome lands in the sequencer under the segment's
// sequence number.
func (p *synthPool) Dispatch(ctx context.Context, segment Segment) {
	p.sequencer.NoteDispatched(segment.Sequence)
	p.inFlight.Add(1)
	p.emit(events.NewSegmentDispatched(segment.Sequence, segment.Text))

	go func() {
		defer func() {
			if p.inFlight.Add(-1) == 0 {
				p.sequencer.Poke()
			}
		}()

		requestCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		audio, err := p.client.Synthesize(requestCtx, synthesis.Request{
			Text:     segment.Text,
			Language: p.language,
			Sequence: segment.Sequence,
		})
		if err == nil && len(audio) == 0 {
			err = errEmptyAudio
		}
		if err != nil {
			logger.WarnContext(ctx, "synthesis failed, skipping segment",
				"sequence", segment.Sequence, "error", err)
			p.emit(events.NewSegmentSkipped(segment.Sequence, err))
			p.sequencer.Resolve(segment.Sequence, playbackSlot{Text: segment.Text, Skip: true})
			return
		}

		p.sequencer.Resolve(segment.Sequence, playbackSlot{Audio: audio, Text: segment.Text})
	}()
}
