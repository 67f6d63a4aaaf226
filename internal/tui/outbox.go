package tui

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/spice-reconcile/internal/protocol"
	"github.com/Veraticus/spice-reconcile/internal/transport"
)

const sendTimeout = 10 * time.Second

type pendingSend struct {
	msg  protocol.Message
	done chan error
}

// outbox delivers messages one at a time in the order they were queued, so
// a change followed by an accept reaches the server in that order. A flush
// goroutine runs only while the queue is non-empty.
type outbox struct {
	ctx     context.Context
	conn    transport.Sender
	queue   []pendingSend
	mu      sync.Mutex
	running bool
}

func newOutbox(ctx context.Context, conn transport.Sender) *outbox {
	return &outbox{ctx: ctx, conn: conn}
}

// enqueue queues msg and returns a channel that receives its send result.
func (o *outbox) enqueue(msg protocol.Message) <-chan error {
	done := make(chan error, 1)

	o.mu.Lock()
	o.queue = append(o.queue, pendingSend{msg: msg, done: done})
	start := !o.running
	o.running = true
	o.mu.Unlock()

	if start {
		go o.flush()
	}
	return done
}

func (o *outbox) flush() {
	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			o.running = false
			o.mu.Unlock()
			return
		}
		p := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()

		ctx, cancel := context.WithTimeout(o.ctx, sendTimeout)
		p.done <- o.conn.Send(ctx, p.msg)
		cancel()
	}
}
