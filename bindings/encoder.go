package bindings

import (
	"fmt"

	"github.com/wippyai/mojom/bindings/internal/layout"
	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

// Encoder lays chunks out back to back in a caller-supplied buffer and
// collects the handles referenced by the encoded value. An Encoder is
// used by one goroutine for one value.
type Encoder struct {
	buf     []byte
	chunks  []Chunk
	handles []system.UntypedHandle
	size    uint64
}

// NewEncoder returns an encoder writing into buf. The buffer must be large
// enough for the whole value; use ComputeSize to find out how large.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{
		buf:    buf,
		chunks: make([]Chunk, 0, 8),
	}
}

// Add claims a new chunk of at least size bytes. The size is padded to a
// multiple of 8, the region is zeroed and the header (padded size,
// metadata) is written. The returned context points just past the header.
func (e *Encoder) Add(size, metadata uint32) (Context, error) {
	if size < HeaderSize {
		return Context{}, errors.InvalidInput(errors.PhaseEncode,
			fmt.Sprintf("chunk size %d smaller than header", size))
	}
	// padding must not carry past 32 bits
	if _, ok := layout.SafeAddU32(size, layout.ChunkAlign-1); !ok {
		return Context{}, errors.Overflow(errors.PhaseEncode, nil, size, "chunk size")
	}
	padded := layout.AlignChunk(uint64(size))

	start := e.size
	end := start + padded
	if end > uint64(len(e.buf)) {
		return Context{}, errors.AllocationFailed(errors.PhaseEncode, padded, uint64(len(e.buf))-start)
	}

	clear(e.buf[start:end])
	wire.PutUint32(e.buf, start, uint32(padded))
	wire.PutUint32(e.buf, start+4, metadata)

	e.chunks = append(e.chunks, Chunk{
		offset:   start,
		size:     uint32(padded),
		metadata: metadata,
		cur:      layout.Cursor{Bytes: HeaderSize},
	})
	e.size = end
	return Context{index: len(e.chunks) - 1}, nil
}

// AddHandle moves h into the handle list and returns its index.
func (e *Encoder) AddHandle(h system.UntypedHandle) int32 {
	e.handles = append(e.handles, h)
	return int32(len(e.handles) - 1)
}

// Chunk returns the chunk ctx refers to. It panics if ctx was not issued
// by this encoder.
func (e *Encoder) Chunk(ctx Context) *Chunk {
	if ctx.index < 0 || ctx.index >= len(e.chunks) {
		panic(fmt.Sprintf("bindings: context %d does not belong to this encoder (%d chunks)", ctx.index, len(e.chunks)))
	}
	return &e.chunks[ctx.index]
}

// Size returns the number of bytes claimed so far. It is also where the
// next chunk will start.
func (e *Encoder) Size() uint64 { return e.size }

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte { return e.buf[:e.size] }

// Finish returns the collected handles. The encoder keeps no reference
// to them.
func (e *Encoder) Finish() []system.UntypedHandle {
	hs := e.handles
	e.handles = nil
	return hs
}

func (e *Encoder) place(ctx Context, size BitCount, align Alignment) (uint64, uint8, error) {
	c := e.Chunk(ctx)
	off, bit, ok := c.place(size, align)
	if !ok {
		return 0, 0, errors.New(errors.PhaseEncode, errors.KindOutOfBounds).
			Detail("%d-bit field does not fit %d-byte chunk at %d", size, c.size, c.offset).
			Build()
	}
	return off, bit, nil
}

func writeScalar[T any](e *Encoder, ctx Context, size BitCount, align Alignment, put func([]byte, uint64, T), v T) error {
	off, _, err := e.place(ctx, size, align)
	if err != nil {
		return err
	}
	put(e.buf, off, v)
	return nil
}

// WriteBool writes a single bit at the chunk's bit cursor.
func (e *Encoder) WriteBool(ctx Context, v bool) error {
	off, bit, err := e.place(ctx, 1, AlignBit)
	if err != nil {
		return err
	}
	wire.PutBit(e.buf, off, bit, v)
	return nil
}

// WriteInt8 through WriteFloat64 write a little-endian value at the next
// position aligned to its own width. A partly used bool byte is skipped
// first.
func (e *Encoder) WriteInt8(ctx Context, v int8) error {
	return writeScalar(e, ctx, 8, Align1, wire.PutInt8, v)
}

func (e *Encoder) WriteUint8(ctx Context, v uint8) error {
	return writeScalar(e, ctx, 8, Align1, wire.PutUint8, v)
}

func (e *Encoder) WriteInt16(ctx Context, v int16) error {
	return writeScalar(e, ctx, 16, Align2, wire.PutInt16, v)
}

func (e *Encoder) WriteUint16(ctx Context, v uint16) error {
	return writeScalar(e, ctx, 16, Align2, wire.PutUint16, v)
}

func (e *Encoder) WriteInt32(ctx Context, v int32) error {
	return writeScalar(e, ctx, 32, Align4, wire.PutInt32, v)
}

func (e *Encoder) WriteUint32(ctx Context, v uint32) error {
	return writeScalar(e, ctx, 32, Align4, wire.PutUint32, v)
}

func (e *Encoder) WriteInt64(ctx Context, v int64) error {
	return writeScalar(e, ctx, 64, Align8, wire.PutInt64, v)
}

func (e *Encoder) WriteUint64(ctx Context, v uint64) error {
	return writeScalar(e, ctx, 64, Align8, wire.PutUint64, v)
}

func (e *Encoder) WriteFloat32(ctx Context, v float32) error {
	return writeScalar(e, ctx, 32, Align4, wire.PutFloat32, v)
}

func (e *Encoder) WriteFloat64(ctx Context, v float64) error {
	return writeScalar(e, ctx, 64, Align8, wire.PutFloat64, v)
}

// WritePointer writes a relative pointer to the absolute offset target.
// Pointers only point forward.
func (e *Encoder) WritePointer(ctx Context, target uint64) error {
	off, _, err := e.place(ctx, PointerBits, Align8)
	if err != nil {
		return err
	}
	if target <= off {
		return errors.New(errors.PhaseEncode, errors.KindIllegalPointer).
			Detail("target %d does not follow pointer field at %d", target, off).
			Build()
	}
	wire.PutUint64(e.buf, off, target-off)
	return nil
}

// WriteNullPointer writes the null pointer sentinel.
func (e *Encoder) WriteNullPointer(ctx Context) error {
	return writeScalar(e, ctx, PointerBits, Align8, wire.PutUint64, 0)
}
