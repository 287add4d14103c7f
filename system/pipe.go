package system

import (
	"context"
	"sync"

	"github.com/wippyai/mojom/errors"
)

type queuedMessage struct {
	data    []byte
	handles []transit
}

// messagePipe holds both directions of a pipe. queues[i] is what endpoint
// i reads.
type messagePipe struct {
	mu      sync.Mutex
	queues  [2][]queuedMessage
	closed  [2]bool
	signals [2]chan struct{}
}

type pipeEnd struct {
	pipe *messagePipe
	side int
}

func (e *pipeEnd) close() {
	p := e.pipe
	p.mu.Lock()
	p.closed[e.side] = true
	dropped := p.queues[e.side]
	p.queues[e.side] = nil
	p.wake(1 - e.side)
	p.mu.Unlock()

	for _, m := range dropped {
		for _, t := range m.handles {
			t.obj.close()
		}
	}
}

// wake notifies side that its state changed. Callers hold mu.
func (p *messagePipe) wake(side int) {
	close(p.signals[side])
	p.signals[side] = make(chan struct{})
}

// CreateMessagePipe returns the two connected endpoints of a new pipe.
func (c *Core) CreateMessagePipe() (MessagePipeHandle, MessagePipeHandle, error) {
	p := &messagePipe{}
	p.signals[0] = make(chan struct{})
	p.signals[1] = make(chan struct{})

	a, err := c.insert(TypeMessagePipe, &pipeEnd{pipe: p, side: 0})
	if err != nil {
		return MessagePipeHandle{}, MessagePipeHandle{}, err
	}
	b, err := c.insert(TypeMessagePipe, &pipeEnd{pipe: p, side: 1})
	if err != nil {
		_ = a.Close()
		return MessagePipeHandle{}, MessagePipeHandle{}, err
	}
	return MessagePipeHandle{a}, MessagePipeHandle{b}, nil
}

func (h MessagePipeHandle) end() (*pipeEnd, error) {
	if !h.IsValid() {
		return nil, badHandle(h.value, TypeMessagePipe)
	}
	obj, kind, ok := h.core.lookup(h.value)
	if !ok || kind != TypeMessagePipe {
		return nil, badHandle(h.value, TypeMessagePipe)
	}
	return obj.(*pipeEnd), nil
}

// WriteMessage queues data and moves handles to the peer. On success the
// handles are no longer valid on this side. On failure the caller keeps
// ownership of every handle.
func (h MessagePipeHandle) WriteMessage(data []byte, handles []UntypedHandle) error {
	end, err := h.end()
	if err != nil {
		return err
	}

	for _, hh := range handles {
		if hh == h.UntypedHandle {
			return errors.InvalidInput(errors.PhaseTransport, "cannot send a pipe endpoint through itself")
		}
		if hh.core != h.core {
			return errors.InvalidInput(errors.PhaseTransport, "handle belongs to another core")
		}
		if _, _, ok := h.core.lookup(hh.value); !ok {
			return badHandle(hh.value, TypeInvalid)
		}
	}

	p := end.pipe
	peer := 1 - end.side

	p.mu.Lock()
	if p.closed[peer] {
		p.mu.Unlock()
		return peerClosed("message pipe")
	}
	p.mu.Unlock()

	msg := queuedMessage{data: append([]byte(nil), data...)}
	for i, hh := range handles {
		t, err := h.core.detach(hh.value)
		if err != nil {
			// return what was already detached
			for _, back := range msg.handles[:i] {
				_, _ = h.core.attach(back)
			}
			return err
		}
		msg.handles = append(msg.handles, t)
	}

	p.mu.Lock()
	if p.closed[peer] {
		p.mu.Unlock()
		for _, t := range msg.handles {
			t.obj.close()
		}
		return peerClosed("message pipe")
	}
	p.queues[peer] = append(p.queues[peer], msg)
	p.wake(peer)
	p.mu.Unlock()
	return nil
}

// ReadMessage dequeues the next message without blocking. It returns
// ErrShouldWait when the queue is empty and ErrPeerClosed when the queue
// is empty and the peer is gone.
func (h MessagePipeHandle) ReadMessage() ([]byte, []UntypedHandle, error) {
	end, err := h.end()
	if err != nil {
		return nil, nil, err
	}

	p := end.pipe
	p.mu.Lock()
	if len(p.queues[end.side]) == 0 {
		closed := p.closed[1-end.side]
		p.mu.Unlock()
		if closed {
			return nil, nil, peerClosed("message pipe")
		}
		return nil, nil, shouldWait("message pipe")
	}
	msg := p.queues[end.side][0]
	p.queues[end.side] = p.queues[end.side][1:]
	p.mu.Unlock()

	handles := make([]UntypedHandle, 0, len(msg.handles))
	for i, t := range msg.handles {
		hh, err := h.core.attach(t)
		if err != nil {
			_ = CloseAll(handles)
			for _, rest := range msg.handles[i+1:] {
				rest.obj.close()
			}
			return nil, nil, err
		}
		handles = append(handles, hh)
	}
	return msg.data, handles, nil
}

// Wait blocks until a message is available, the peer closes or ctx is
// done.
func (h MessagePipeHandle) Wait(ctx context.Context) error {
	end, err := h.end()
	if err != nil {
		return err
	}

	p := end.pipe
	for {
		p.mu.Lock()
		if len(p.queues[end.side]) > 0 {
			p.mu.Unlock()
			return nil
		}
		if p.closed[1-end.side] {
			p.mu.Unlock()
			return peerClosed("message pipe")
		}
		signal := p.signals[end.side]
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
		}
	}
}
