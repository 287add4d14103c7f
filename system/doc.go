// Package system provides in-process handles for the Mojom bindings.
//
// A Core is a handle table mapping integer handles to message pipes,
// shared buffers and data pipes. It stands in for the operating-system
// transport so that messages carrying handles can be built, sent and
// decoded inside one process:
//
//	core := system.NewCore()
//	a, b, _ := core.CreateMessagePipe()
//
//	_ = a.WriteMessage(data, handles)
//	data, handles, err := b.ReadMessage()
//
// # Ownership
//
// Handles move. Sending a handle through a pipe invalidates it on the
// sending side; the receiver gets a fresh handle to the same object.
// Closing the last handle to an object releases it.
//
// # Non-blocking reads
//
// Reads never block. An empty pipe reports ErrShouldWait while the peer
// is open, and ErrPeerClosed once the peer has gone. Use Wait to block on
// a message pipe with a context.
//
// # Observers
//
// Subscribe an Observer to receive EventCreated, EventClosed, EventSent and
// EventReceived notifications.
package system
