package system

// UntypedHandle refers to an object in a Core. The zero value is the
// invalid handle. Handles are moved, not shared: after Close, or after the
// handle is sent through a message pipe, the value must not be used again.
type UntypedHandle struct {
	core  *Core
	value uint32
}

// Value returns the raw handle number.
func (h UntypedHandle) Value() uint32 { return h.value }

// Core returns the table the handle belongs to.
func (h UntypedHandle) Core() *Core { return h.core }

// IsValid reports whether h names a handle. It does not check that the
// handle is still open.
func (h UntypedHandle) IsValid() bool {
	return h.core != nil && h.value != 0
}

// Type returns the kind of object h refers to, or TypeInvalid once closed.
func (h UntypedHandle) Type() HandleType {
	if !h.IsValid() {
		return TypeInvalid
	}
	_, kind, _ := h.core.lookup(h.value)
	return kind
}

// Close releases the handle.
func (h UntypedHandle) Close() error {
	if !h.IsValid() {
		return badHandle(h.value, TypeInvalid)
	}
	return h.core.closeHandle(h.value)
}

func (h UntypedHandle) ToMessagePipe() MessagePipeHandle {
	return MessagePipeHandle{h}
}

func (h UntypedHandle) ToSharedBuffer() SharedBufferHandle {
	return SharedBufferHandle{h}
}

func (h UntypedHandle) ToConsumer() ConsumerHandle {
	return ConsumerHandle{h}
}

func (h UntypedHandle) ToProducer() ProducerHandle {
	return ProducerHandle{h}
}

// MessagePipeHandle is one endpoint of a message pipe.
type MessagePipeHandle struct {
	UntypedHandle
}

// SharedBufferHandle refers to a shared memory region.
type SharedBufferHandle struct {
	UntypedHandle
}

// ConsumerHandle is the read end of a data pipe.
type ConsumerHandle struct {
	UntypedHandle
}

// ProducerHandle is the write end of a data pipe.
type ProducerHandle struct {
	UntypedHandle
}

// Untyped returns the handle without its type.
func (h MessagePipeHandle) Untyped() UntypedHandle { return h.UntypedHandle }
func (h SharedBufferHandle) Untyped() UntypedHandle { return h.UntypedHandle }
func (h ConsumerHandle) Untyped() UntypedHandle { return h.UntypedHandle }
func (h ProducerHandle) Untyped() UntypedHandle { return h.UntypedHandle }

// CloseAll closes every valid handle in hs and returns the first error.
func CloseAll(hs []UntypedHandle) error {
	var first error
	for _, h := range hs {
		if !h.IsValid() {
			continue
		}
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
