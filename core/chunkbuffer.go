package pipeline

import "sync"

// chunkBuffer queues streamed reply text for the one segmentation worker.
// Producers append while the worker drains; consumed chunks are released
// right away, so memory tracks the backlog, not the whole reply.
type chunkBuffer struct {
	mu      sync.Mutex
	pending []string
	done    bool
	cleared bool
	signal  chan struct{}
}

func newChunkBuffer() *chunkBuffer {
	return &chunkBuffer{signal: make(chan struct{}, 1)}
}

// AddChunk appends one reply fragment. No-op once the stream has been
// completed or cleared.
func (b *chunkBuffer) AddChunk(chunk string) {
	b.mu.Lock()
	if b.done || b.cleared {
		b.mu.Unlock()
		return
	}
	b.pending = append(b.pending, chunk)
	b.mu.Unlock()
	b.wake()
}

// Complete marks the stream finished. Next drains the backlog first, then
// reports exhaustion.
func (b *chunkBuffer) Complete() {
	b.mu.Lock()
	b.done = true
	b.mu.Unlock()
	b.wake()
}

// Clear abandons the stream: queued chunks are dropped and a blocked Next
// unblocks immediately.
func (b *chunkBuffer) Clear() {
	b.mu.Lock()
	b.cleared = true
	b.pending = nil
	b.mu.Unlock()
	b.wake()
}

// Next blocks until a chunk is available and pops it. ok is false once the
// stream is exhausted or abandoned. Single consumer only.
func (b *chunkBuffer) Next() (chunk string, ok bool) {
	for {
		b.mu.Lock()
		switch {
		case b.cleared:
			b.mu.Unlock()
			return "", false
		case len(b.pending) > 0:
			chunk = b.pending[0]
			b.pending[0] = ""
			b.pending = b.pending[1:]
			if len(b.pending) == 0 {
				b.pending = nil
			}
			b.mu.Unlock()
			return chunk, true
		case b.done:
			b.mu.Unlock()
			return "", false
		}
		b.mu.Unlock()
		<-b.signal
	}
}

func (b *chunkBuffer) wake() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}
