// Package transport carries protocol messages between the review UI and the
// importer over a duplex byte stream.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/Veraticus/spice-reconcile/internal/common"
	"github.com/Veraticus/spice-reconcile/internal/model"
	"github.com/Veraticus/spice-reconcile/internal/protocol"
)

// Sender delivers outbound messages.
type Sender interface {
	Send(ctx context.Context, msg protocol.Message) error
}

// Receiver yields validated candidate sets.
type Receiver interface {
	Receive(ctx context.Context) (model.CandidateSet, error)
}

// Duplex is both ends of a review connection.
type Duplex interface {
	Sender
	Receiver
}

type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Conn frames messages on an io.ReadWriteCloser with a codec. Send is safe
// for concurrent use; Receive must be called from a single goroutine.
type Conn struct {
	rwc   io.ReadWriteCloser
	enc   protocol.Encoder
	dec   protocol.Decoder
	codec protocol.Codec
	mu    sync.Mutex
}

// NewConn wraps rwc.
func NewConn(rwc io.ReadWriteCloser, codec protocol.Codec) *Conn {
	return &Conn{
		rwc:   rwc,
		codec: codec,
		enc:   codec.NewEncoder(rwc),
		dec:   codec.NewDecoder(rwc),
	}
}

// Dial connects to the importer at addr over TCP.
func Dial(ctx context.Context, addr string, codec protocol.Codec) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	common.LogDebug("Connected to importer", common.Fields{"addr": addr, "codec": codec.Name()})
	return NewConn(c, codec), nil
}

// Pipe returns two connected in-memory ends sharing codec.
func Pipe(codec protocol.Codec) (client, server *Conn) {
	a, b := net.Pipe()
	return NewConn(a, codec), NewConn(b, codec)
}

// Codec returns the connection's codec.
func (c *Conn) Codec() protocol.Codec { return c.codec }

// Close closes the underlying stream.
func (c *Conn) Close() error { return c.rwc.Close() }

// Send writes msg. Delivery is not acknowledged.
func (c *Conn) Send(ctx context.Context, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if d, ok := c.rwc.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() { _ = d.SetWriteDeadline(time.Now()) })
		defer stop()
	}

	if err := c.enc.Encode(msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to send %s: %w", msg.Type(), closedErr(err))
	}
	common.LogDebug("Sent message", common.Fields{"type": string(msg.Type())})
	return nil
}

// ReceiveMessage reads the next message of any type.
func (c *Conn) ReceiveMessage(ctx context.Context) (protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d, ok := c.rwc.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() { _ = d.SetReadDeadline(time.Now()) })
		defer stop()
	}

	msg, err := c.dec.Decode()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, closedErr(err)
	}
	return msg, nil
}

// Receive returns the next valid candidate set. Messages of other types are
// skipped, and so are sets that fail to decode or validate.
func (c *Conn) Receive(ctx context.Context) (model.CandidateSet, error) {
	for {
		msg, err := c.ReceiveMessage(ctx)
		if errors.Is(err, protocol.ErrUnknownMessageType) || errors.Is(err, protocol.ErrMalformedMessage) {
			common.LogDebug("Skipping message", common.Fields{"reason": err.Error()})
			continue
		}
		if err != nil {
			return model.CandidateSet{}, err
		}

		candidates, ok := msg.(protocol.Candidates)
		if !ok {
			common.LogDebug("Skipping message", common.Fields{"type": string(msg.Type())})
			continue
		}
		if err := candidates.Validate(); err != nil {
			common.LogError(fmt.Errorf("%w: %w", common.ErrInvalidCandidateSet, err),
				"Dropping candidate set", common.Fields{"generation": candidates.Generation})
			continue
		}
		common.LogDebug("Received candidates", common.Fields{
			"generation": candidates.Generation,
			"count":      len(candidates.Candidates),
		})
		return candidates.CandidateSet, nil
	}
}

func closedErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", common.ErrConnectionClosed, err)
	}
	return err
}
