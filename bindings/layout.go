package bindings

import "github.com/wippyai/mojom/bindings/internal/layout"

type (
	// Alignment of an inline value, in bits.
	Alignment = layout.Alignment
	// BitCount is a size in bits.
	BitCount = layout.BitCount
)

const (
	AlignBit = layout.AlignBit
	Align1   = layout.Align1
	Align2   = layout.Align2
	Align4   = layout.Align4
	Align8   = layout.Align8

	// HeaderSize is the size of the data header at the start of every chunk.
	HeaderSize = layout.HeaderSize
	// PointerBits is the inline size of a relative pointer.
	PointerBits = layout.PointerBits
	// MapSize is the size of the header-only map shell.
	MapSize = layout.MapSize
	// UnionSize is the size of an inline union block.
	UnionSize = layout.UnionSize
)

// AlignBytes rounds size up to a multiple of alignment. Both must be
// non-zero and alignment must be a power of two.
func AlignBytes(size, alignment uint64) (uint64, error) {
	return layout.AlignBytes(size, alignment)
}

// BitsToBytes divides by 8, rounding up.
func BitsToBytes(bits uint64) uint64 {
	return layout.BitsToBytes(bits)
}
