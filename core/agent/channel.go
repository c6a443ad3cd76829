// Package agent carries wire messages over the duplex channel the
// surrounding application keeps open to the conversational agent. The channel
// lifecycle (dialing, auth, reconnects) belongs to the application; this
// package only reads and writes validated envelopes on an established
// connection.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/voxloop/voxloop-core/core/wire"
)

// ErrChannelNotReady is returned when a submission arrives while no
// connection is attached. It is recoverable: the application retries after
// reconnecting.
var ErrChannelNotReady = errors.New("agent channel not ready")

type Channel struct {
	connMu sync.Mutex
	conn   *websocket.Conn

	onReplyChunk func(text string)
	onReplyEnd   func()
}

type ChannelOption func(*Channel)

func WithReplyChunkCallback(callback func(text string)) ChannelOption {
	return func(c *Channel) { c.onReplyChunk = callback }
}

func WithReplyEndCallback(callback func()) ChannelOption {
	return func(c *Channel) { c.onReplyEnd = callback }
}

func NewChannel(opts ...ChannelOption) *Channel {
	channel := &Channel{
		onReplyChunk: func(string) {},
		onReplyEnd:   func() {},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel
}

// Attach hands an established connection to the channel and starts the read
// loop. Attaching replaces any previous connection.
func (c *Channel) Attach(ctx context.Context, conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.readAndDispatch(ctx, conn)
}

// Detach drops the current connection without closing it; the application
// owns the socket.
func (c *Channel) Detach() {
	c.connMu.Lock()
	c.conn = nil
	c.connMu.Unlock()
}

// Submit validates and writes an outbound envelope.
func (c *Channel) Submit(_ context.Context, envelope wire.Envelope) error {
	if err := envelope.Validate(); err != nil {
		return fmt.Errorf("refusing to submit invalid envelope: %w", err)
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return ErrChannelNotReady
	}

	if err := c.conn.WriteJSON(envelope); err != nil {
		return fmt.Errorf("failed to write envelope to agent channel: %w", err)
	}
	return nil
}

func (c *Channel) readAndDispatch(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}

		var envelope wire.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if err.Error() != "websocket: close 1000 (normal)" {
				logger.Warn("failed to read agent channel message", "error", err)
			}

			c.connMu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.connMu.Unlock()
			return
		}

		if err := envelope.Validate(); err != nil {
			logger.Warn("dropping invalid agent channel message", "error", err)
			continue
		}

		switch envelope.Type {
		case wire.MessageTypeReplyChunk:
			text, err := wire.DecodeReplyChunk(envelope)
			if err != nil {
				logger.Warn("dropping malformed reply chunk", "error", err)
				continue
			}
			c.onReplyChunk(text)
		case wire.MessageTypeReplyEnd:
			c.onReplyEnd()
		}
	}
}
