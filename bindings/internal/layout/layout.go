package layout

import (
	"math"
	"math/bits"

	"github.com/wippyai/mojom/errors"
)

const (
	// HeaderSize is the size of the data header at the start of every chunk.
	HeaderSize = 8
	// ChunkAlign is the byte alignment of every chunk.
	ChunkAlign = 8
	// PointerBits is the inline size of a relative pointer.
	PointerBits BitCount = 64
	// UnionBits is the inline size of an unboxed union.
	UnionBits BitCount = 128
	// MapSize is the size of a map shell: header plus two pointers.
	MapSize = HeaderSize + 16
	// UnionSize is the size of an inline union block and of a boxed union chunk.
	UnionSize = 16
)

const (
	MaxArrayLength = math.MaxUint32
	MaxChunkSize   = math.MaxUint32 &^ (ChunkAlign - 1)
)

// Alignment is measured in bits so that bool fields can align to a single bit.
type Alignment uint32

const (
	AlignBit Alignment = 1
	Align1   Alignment = 8
	Align2   Alignment = 16
	Align4   Alignment = 32
	Align8   Alignment = 64
)

// Bytes returns the byte alignment, 0 for AlignBit.
func (a Alignment) Bytes() uint64 {
	return uint64(a) / 8
}

// BitCount is a size measured in bits.
type BitCount uint64

func (b BitCount) Add(o BitCount) BitCount { return b + o }

func (b BitCount) Mul(n uint64) BitCount { return b * BitCount(n) }

// Split returns the bits left over past the last whole byte, and the
// number of whole bytes.
func (b BitCount) Split() (leftover uint8, whole uint64) {
	return uint8(b % 8), uint64(b / 8)
}

// Bytes rounds up to whole bytes.
func (b BitCount) Bytes() uint64 {
	return BitsToBytes(uint64(b))
}

// BitsToBytes divides by 8, rounding up.
func BitsToBytes(n uint64) uint64 {
	return (n + 7) / 8
}

// AlignBytes rounds size up to a multiple of alignment. Both must be
// non-zero and alignment must be a power of two.
func AlignBytes(size, alignment uint64) (uint64, error) {
	if size == 0 || alignment == 0 || bits.OnesCount64(alignment) != 1 {
		return 0, errors.InvalidInput(errors.PhaseValidate,
			"alignment requires non-zero size and a power-of-two alignment")
	}
	return alignUp(size, alignment), nil
}

// AlignChunk rounds n up to the chunk alignment. Zero stays zero.
func AlignChunk(n uint64) uint64 {
	return alignUp(n, ChunkAlign)
}

func alignUp(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}

// ArrayChunkSize returns the padded size of an array chunk holding count
// elements of elem bits each.
func ArrayChunkSize(count uint64, elem BitCount) uint64 {
	return AlignChunk(HeaderSize + elem.Mul(count).Bytes())
}

// Cursor tracks the next free position inside a chunk. Bools take single
// bits; any other value flushes a partially used byte before aligning.
type Cursor struct {
	Bytes uint64
	Bit   uint8
}

// Place reserves size bits at the given alignment and returns the byte
// offset and bit index where the value starts.
func (c *Cursor) Place(size BitCount, align Alignment) (offset uint64, bit uint8) {
	if align == AlignBit {
		offset, bit = c.Bytes, c.Bit
		c.Bit++
		if c.Bit == 8 {
			c.Bit = 0
			c.Bytes++
		}
		return offset, bit
	}

	c.Flush()
	c.Bytes = alignUp(c.Bytes, align.Bytes())
	offset = c.Bytes
	c.Bytes += size.Bytes()
	return offset, 0
}

// Flush advances past a partially consumed byte.
func (c *Cursor) Flush() {
	if c.Bit > 0 {
		c.Bytes++
		c.Bit = 0
	}
}

// End returns the number of bytes touched so far.
func (c Cursor) End() uint64 {
	if c.Bit > 0 {
		return c.Bytes + 1
	}
	return c.Bytes
}

// SafeAddU32 returns a+b and false when the sum does not fit in 32 bits.
func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}
