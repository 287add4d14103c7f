package system

import (
	"sync/atomic"

	"github.com/wippyai/mojom/errors"
)

type sharedRegion struct {
	data []byte
	refs atomic.Int32
}

// bufferRef is one handle's reference to a region.
type bufferRef struct {
	region *sharedRegion
}

func (b *bufferRef) close() {
	if b.region.refs.Add(-1) == 0 {
		b.region.data = nil
	}
}

// CreateSharedBuffer allocates a zeroed region of size bytes.
func (c *Core) CreateSharedBuffer(size uint64) (SharedBufferHandle, error) {
	if size == 0 {
		return SharedBufferHandle{}, errors.InvalidInput(errors.PhaseTransport, "shared buffer size must be non-zero")
	}
	r := &sharedRegion{data: make([]byte, size)}
	r.refs.Store(1)
	h, err := c.insert(TypeSharedBuffer, &bufferRef{region: r})
	if err != nil {
		return SharedBufferHandle{}, err
	}
	return SharedBufferHandle{h}, nil
}

func (h SharedBufferHandle) ref() (*bufferRef, error) {
	if !h.IsValid() {
		return nil, badHandle(h.value, TypeSharedBuffer)
	}
	obj, kind, ok := h.core.lookup(h.value)
	if !ok || kind != TypeSharedBuffer {
		return nil, badHandle(h.value, TypeSharedBuffer)
	}
	return obj.(*bufferRef), nil
}

// Bytes returns the mapped region. Writes are visible through every
// handle to the same buffer.
func (h SharedBufferHandle) Bytes() ([]byte, error) {
	r, err := h.ref()
	if err != nil {
		return nil, err
	}
	return r.region.data, nil
}

// Duplicate returns a second handle to the same region.
func (h SharedBufferHandle) Duplicate() (SharedBufferHandle, error) {
	r, err := h.ref()
	if err != nil {
		return SharedBufferHandle{}, err
	}
	r.region.refs.Add(1)
	dup, err := h.core.insert(TypeSharedBuffer, &bufferRef{region: r.region})
	if err != nil {
		r.region.refs.Add(-1)
		return SharedBufferHandle{}, err
	}
	return SharedBufferHandle{dup}, nil
}
