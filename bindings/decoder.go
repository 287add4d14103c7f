package bindings

import (
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/mojom/bindings/internal/layout"
	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

// DefaultMaxRecursionDepth bounds pointer nesting when no limit is given.
const DefaultMaxRecursionDepth = 100

// Config controls decoding limits.
type Config struct {
	// MaxRecursionDepth is the deepest pointer chain a decode may follow.
	// The root value counts as one level. 0 means DefaultMaxRecursionDepth.
	MaxRecursionDepth int
}

// DataHeader is the first 8 bytes of a chunk.
type DataHeader struct {
	Size     uint32
	Metadata uint32
}

// Decoder validates and reads an untrusted buffer. Every chunk is checked
// for bounds, alignment and overlap before any field is read. A Decoder
// is used by one goroutine for one value.
type Decoder struct {
	data     []byte
	handles  []system.UntypedHandle
	claimed  []bool
	chunks   []Chunk
	spans    []span
	depth    int
	maxDepth int
}

type span struct {
	begin, end uint64
}

// NewDecoder returns a decoder over data and handles. maxDepth <= 0 means
// DefaultMaxRecursionDepth. The decoder owns handles until they are
// claimed.
func NewDecoder(data []byte, handles []system.UntypedHandle, maxDepth int) *Decoder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRecursionDepth
	}
	return &Decoder{
		data:     data,
		handles:  handles,
		claimed:  make([]bool, len(handles)),
		chunks:   make([]Chunk, 0, 8),
		maxDepth: maxDepth,
	}
}

// NewDecoderWithConfig returns a decoder with custom limits. A nil cfg
// uses the defaults.
func NewDecoderWithConfig(data []byte, handles []system.UntypedHandle, cfg *Config) *Decoder {
	depth := 0
	if cfg != nil {
		depth = cfg.MaxRecursionDepth
	}
	return NewDecoder(data, handles, depth)
}

func (d *Decoder) fail(err *errors.Error, offset uint64) error {
	Logger().Debug("validation failed",
		zap.String("kind", string(err.Kind)),
		zap.Uint64("offset", offset),
		zap.Int("depth", d.depth),
		zap.String("detail", err.Detail))
	return err
}

// Claim validates the chunk header at offset and registers the chunk. The
// returned context points just past the header.
func (d *Decoder) Claim(offset uint64) (Context, error) {
	n := uint64(len(d.data))
	if offset >= n {
		return Context{}, d.fail(errors.IllegalPointer(offset, fmt.Sprintf("beyond %d-byte buffer", n)), offset)
	}
	if offset%layout.ChunkAlign != 0 {
		return Context{}, d.fail(errors.IllegalPointer(offset, "misaligned"), offset)
	}
	if offset+HeaderSize > n {
		return Context{}, d.fail(errors.OutOfBounds(errors.PhaseDecode, nil, int(offset+HeaderSize), int(n)), offset)
	}

	size := wire.Uint32(d.data, offset)
	metadata := wire.Uint32(d.data, offset+4)
	if size < HeaderSize || size%layout.ChunkAlign != 0 {
		return Context{}, d.fail(errors.InvalidData(errors.PhaseDecode, nil,
			fmt.Sprintf("chunk size %d is not a positive multiple of 8", size)), offset)
	}

	end := offset + uint64(size)
	if end > n {
		return Context{}, d.fail(errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Detail("chunk [%d, %d) overruns %d-byte buffer", offset, end, n).
			Value(end).
			Build(), offset)
	}

	i := sort.Search(len(d.spans), func(i int) bool { return d.spans[i].begin >= offset })
	if (i > 0 && d.spans[i-1].end > offset) || (i < len(d.spans) && d.spans[i].begin < end) {
		return Context{}, d.fail(errors.IllegalMemoryRange(offset, end), offset)
	}
	d.spans = slices.Insert(d.spans, i, span{begin: offset, end: end})

	d.chunks = append(d.chunks, Chunk{
		offset:   offset,
		size:     size,
		metadata: metadata,
		cur:      layout.Cursor{Bytes: HeaderSize},
	})
	return Context{index: len(d.chunks) - 1}, nil
}

// ClaimHandle takes ownership of the handle at index. Each index may be
// claimed once.
func (d *Decoder) ClaimHandle(index int32) (system.UntypedHandle, error) {
	if index == -1 {
		return system.UntypedHandle{}, d.fail(errors.UnexpectedInvalidHandle(errors.PhaseDecode, "handle"), 0)
	}
	if index < 0 || int(index) >= len(d.handles) {
		return system.UntypedHandle{}, d.fail(errors.OutOfBounds(errors.PhaseDecode, nil, int(index), len(d.handles)), 0)
	}
	if d.claimed[index] {
		return system.UntypedHandle{}, d.fail(errors.IllegalHandle(index), 0)
	}
	d.claimed[index] = true
	return d.handles[index], nil
}

// Chunk returns the chunk ctx refers to. It panics if ctx was not issued
// by this decoder.
func (d *Decoder) Chunk(ctx Context) *Chunk {
	if ctx.index < 0 || ctx.index >= len(d.chunks) {
		panic(fmt.Sprintf("bindings: context %d does not belong to this decoder (%d chunks)", ctx.index, len(d.chunks)))
	}
	return &d.chunks[ctx.index]
}

// DecodeStructHeader checks the chunk header against a version table. A
// known version needs at least its tabulated size. A version newer than
// any known one needs at least the largest known size.
func (d *Decoder) DecodeStructHeader(ctx Context, versions VersionTable) (DataHeader, error) {
	c := d.Chunk(ctx)
	h := DataHeader{Size: c.size, Metadata: c.metadata}

	if len(versions) == 0 {
		return h, nil
	}
	if entry, ok := versions.Lookup(h.Metadata); ok {
		if h.Size >= entry.Size {
			return h, nil
		}
	} else if last := versions[len(versions)-1]; h.Metadata > last.Version && h.Size >= last.Size {
		return h, nil
	}
	return h, d.fail(errors.UnexpectedStructHeader("", h.Size, h.Metadata), c.offset)
}

// DecodeArrayHeader checks that the declared size matches the element
// count for elements of elemBits each.
func (d *Decoder) DecodeArrayHeader(ctx Context, elemBits BitCount) (DataHeader, error) {
	c := d.Chunk(ctx)
	h := DataHeader{Size: c.size, Metadata: c.metadata}

	want := layout.ArrayChunkSize(uint64(h.Metadata), elemBits)
	if uint64(h.Size) != want {
		return h, d.fail(errors.UnexpectedArrayHeader("",
			fmt.Sprintf("%d elements need %d bytes, header says %d", h.Metadata, want, h.Size)), c.offset)
	}
	return h, nil
}

// DecodePointer reads a relative pointer and returns the absolute target.
// ok is false for the null pointer.
func (d *Decoder) DecodePointer(ctx Context) (uint64, bool, error) {
	off, _, err := d.place(ctx, PointerBits, Align8)
	if err != nil {
		return 0, false, err
	}
	rel := wire.Uint64(d.data, off)
	if rel == 0 {
		return 0, false, nil
	}
	if rel >= uint64(len(d.data)) {
		return 0, false, d.fail(errors.IllegalPointer(rel, "relative offset beyond buffer"), off)
	}
	return off + rel, true, nil
}

// enter counts one level of pointer nesting.
func (d *Decoder) enter() error {
	if d.depth >= d.maxDepth {
		return d.fail(errors.RecursionLimitExceeded(d.maxDepth), 0)
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() { d.depth-- }

// Depth returns the current pointer nesting.
func (d *Decoder) Depth() int { return d.depth }

// Close closes every handle that was never claimed. Claimed handles
// belong to the decoded value.
func (d *Decoder) Close() error {
	var unclaimed []system.UntypedHandle
	for i, h := range d.handles {
		if !d.claimed[i] {
			unclaimed = append(unclaimed, h)
		}
	}
	d.handles = nil
	d.claimed = nil
	return system.CloseAll(unclaimed)
}

// Abort closes every handle, claimed or not. Use it when the decoded value
// is being discarded.
func (d *Decoder) Abort() error {
	hs := d.handles
	d.handles = nil
	d.claimed = nil
	return system.CloseAll(hs)
}

func (d *Decoder) place(ctx Context, size BitCount, align Alignment) (uint64, uint8, error) {
	c := d.Chunk(ctx)
	off, bit, ok := c.place(size, align)
	if !ok {
		return 0, 0, d.fail(errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Detail("%d-bit field past end of %d-byte chunk", size, c.size).
			Build(), c.offset)
	}
	return off, bit, nil
}

func readScalar[T any](d *Decoder, ctx Context, size BitCount, align Alignment, get func([]byte, uint64) T) (T, error) {
	off, _, err := d.place(ctx, size, align)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(d.data, off), nil
}

// ReadBool reads a single bit at the chunk's bit cursor.
func (d *Decoder) ReadBool(ctx Context) (bool, error) {
	off, bit, err := d.place(ctx, 1, AlignBit)
	if err != nil {
		return false, err
	}
	return wire.Bit(d.data, off, bit), nil
}

// ReadInt8 through ReadFloat64 read a little-endian value from the next
// position aligned to its own width, mirroring the Encoder's writers.
func (d *Decoder) ReadInt8(ctx Context) (int8, error) {
	return readScalar(d, ctx, 8, Align1, wire.Int8)
}

func (d *Decoder) ReadUint8(ctx Context) (uint8, error) {
	return readScalar(d, ctx, 8, Align1, wire.Uint8)
}

func (d *Decoder) ReadInt16(ctx Context) (int16, error) {
	return readScalar(d, ctx, 16, Align2, wire.Int16)
}

func (d *Decoder) ReadUint16(ctx Context) (uint16, error) {
	return readScalar(d, ctx, 16, Align2, wire.Uint16)
}

func (d *Decoder) ReadInt32(ctx Context) (int32, error) {
	return readScalar(d, ctx, 32, Align4, wire.Int32)
}

func (d *Decoder) ReadUint32(ctx Context) (uint32, error) {
	return readScalar(d, ctx, 32, Align4, wire.Uint32)
}

func (d *Decoder) ReadInt64(ctx Context) (int64, error) {
	return readScalar(d, ctx, 64, Align8, wire.Int64)
}

func (d *Decoder) ReadUint64(ctx Context) (uint64, error) {
	return readScalar(d, ctx, 64, Align8, wire.Uint64)
}

func (d *Decoder) ReadFloat32(ctx Context) (float32, error) {
	return readScalar(d, ctx, 32, Align4, wire.Float32)
}

func (d *Decoder) ReadFloat64(ctx Context) (float64, error) {
	return readScalar(d, ctx, 64, Align8, wire.Float64)
}
