package system

import "github.com/wippyai/mojom/errors"

// HandleType identifies the kind of object a handle refers to.
type HandleType uint8

const (
	TypeInvalid HandleType = iota
	TypeMessagePipe
	TypeSharedBuffer
	TypeDataPipeProducer
	TypeDataPipeConsumer
)

func (t HandleType) String() string {
	switch t {
	case TypeMessagePipe:
		return "message_pipe"
	case TypeSharedBuffer:
		return "shared_buffer"
	case TypeDataPipeProducer:
		return "data_pipe_producer"
	case TypeDataPipeConsumer:
		return "data_pipe_consumer"
	default:
		return "invalid"
	}
}

// Event types for handle lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventClosed
	EventSent
	EventReceived
)

// Event represents a handle lifecycle event.
type Event struct {
	Handle uint32
	Kind   HandleType
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

var (
	// ErrShouldWait is returned by non-blocking reads and writes that
	// cannot make progress yet.
	ErrShouldWait = errors.ErrShouldWait
	// ErrPeerClosed matches errors returned once the other end of a pipe
	// has been closed and nothing is left to read.
	ErrPeerClosed = errors.ErrClosed
)

// object is what a handle refers to. close is called exactly once, when
// the last handle to it is closed or the core shuts down.
type object interface {
	close()
}

func peerClosed(what string) error {
	return errors.New(errors.PhaseTransport, errors.KindClosed).
		Detail("%s peer closed", what).
		Build()
}

func shouldWait(what string) error {
	return errors.New(errors.PhaseTransport, errors.KindShouldWait).
		Detail("%s not ready", what).
		Build()
}

func badHandle(value uint32, want HandleType) error {
	return errors.New(errors.PhaseTransport, errors.KindNotFound).
		Type(want.String()).
		Value(value).
		Detail("handle %d is not a live %s", value, want).
		Build()
}
