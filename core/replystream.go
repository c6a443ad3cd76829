package pipeline

import (
	"context"

	"github.com/voxloop/voxloop-core/core/events"
)

// replyStream owns one agent reply end to end: buffered text chunks, the
// segmenter cutting them into synthesizable pieces, the request pool, and
// the sequencer putting completions back in order. Exactly one reply stream
// is live at a time.
type replyStream struct {
	requestID string

	chunks    *chunkBuffer
	segmenter *sentenceSegmenter
	pool      *synthPool
	sequencer *playbackSequencer

	cancel context.CancelFunc
	done   chan struct{}

	emit eventEmitter
}

func newReplyStream(ctx context.Context, requestID string, tunables Tunables, pool func(*playbackSequencer) *synthPool, sequencer *playbackSequencer, emit eventEmitter) *replyStream {
	streamCtx, cancel := context.WithCancel(ctx)

	stream := &replyStream{
		requestID: requestID,
		chunks:    newChunkBuffer(),
		segmenter: newSentenceSegmenter(tunables),
		sequencer: sequencer,
		cancel:    cancel,
		done:      make(chan struct{}),
		emit:      emit,
	}
	stream.pool = pool(sequencer)

	go func() {
		defer close(stream.done)
		if err := panicSafeNamedWorker("reply segmentation", stream.run)(streamCtx); err != nil {
			logger.ErrorContext(streamCtx, "reply stream worker failed", "error", err)
		}
	}()

	return stream
}

func (s *replyStream) run(ctx context.Context) error {
	cancelHook := withContextCancelHook(ctx, func() { s.chunks.Clear() })
	defer close(cancelHook)

	for {
		chunk, ok := s.chunks.Next()
		if !ok {
			break
		}
		for _, segment := range s.segmenter.Feed(chunk) {
			s.pool.Dispatch(ctx, segment)
		}
	}

	if ctx.Err() != nil {
		return nil
	}

	for _, segment := range s.segmenter.Flush() {
		s.pool.Dispatch(ctx, segment)
	}
	s.sequencer.NoMoreSegments()
	return nil
}

// AddChunk feeds streamed reply text into the segmentation worker.
func (s *replyStream) AddChunk(chunk string) {
	s.emit(events.NewReplySegment(chunk))
	s.chunks.AddChunk(chunk)
}

// Complete marks the reply text as fully received.
func (s *replyStream) Complete() {
	s.emit(events.NewReplyEnded())
	s.chunks.Complete()
}

// Cancel abandons the reply: pending chunks are dropped, in-flight synthesis
// requests are cancelled, and unplayed slots are discarded.
func (s *replyStream) Cancel() {
	s.cancel()
	s.chunks.Clear()
	s.sequencer.Stop()
}
