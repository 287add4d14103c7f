package message

import (
	"context"
	stderrors "errors"

	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

// Transport moves encoded messages and their handles.
// system.MessagePipeHandle implements it.
type Transport interface {
	WriteMessage(data []byte, handles []system.UntypedHandle) error
	ReadMessage() ([]byte, []system.UntypedHandle, error)
}

// Waiter is implemented by transports that can block until a message
// arrives.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Send builds a message and writes it to t. If the write fails the
// handles stay with the caller.
func Send[T any](t Transport, h Header, c bindings.PointerCodec[T], v T) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseTransport, nil, "message.Transport")
	}
	msg, err := Build(h, c, v)
	if err != nil {
		return err
	}
	return t.WriteMessage(msg.Data, msg.Handles)
}

// Receive reads one message without blocking and decodes it through r.
// It returns system.ErrShouldWait when nothing is queued. A nil transport
// or registry fails before anything is read, so no message is lost.
func Receive(t Transport, r *Registry) (*Inbound, error) {
	if t == nil {
		return nil, errors.NilPointer(errors.PhaseTransport, nil, "message.Transport")
	}
	if r == nil {
		return nil, errors.NilPointer(errors.PhaseDispatch, nil, "*message.Registry")
	}
	data, handles, err := t.ReadMessage()
	if err != nil {
		return nil, err
	}
	return r.Decode(data, handles)
}

// ReceiveContext is Receive that waits for a message when t is a Waiter.
func ReceiveContext(ctx context.Context, t Transport, r *Registry) (*Inbound, error) {
	for {
		in, err := Receive(t, r)
		if !stderrors.Is(err, system.ErrShouldWait) {
			return in, err
		}
		w, ok := t.(Waiter)
		if !ok {
			return nil, err
		}
		if err := w.Wait(ctx); err != nil {
			return nil, err
		}
	}
}
