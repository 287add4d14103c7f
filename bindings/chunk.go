package bindings

import "github.com/wippyai/mojom/bindings/internal/layout"

// Chunk is one 8-byte aligned region of the buffer: a struct, array, map
// shell or boxed union. The cursor is relative to the chunk start.
type Chunk struct {
	offset   uint64
	size     uint32
	metadata uint32
	cur      layout.Cursor
}

// Offset returns the absolute offset of the chunk.
func (c *Chunk) Offset() uint64 { return c.offset }

// Size returns the padded size recorded in the header.
func (c *Chunk) Size() uint32 { return c.size }

// Metadata returns the second header word: element count, version or tag.
func (c *Chunk) Metadata() uint32 { return c.metadata }

// Cursor returns the next free byte and bit within the chunk.
func (c *Chunk) Cursor() (uint64, uint8) { return c.cur.Bytes, c.cur.Bit }

// place reserves an inline slot and returns its absolute offset. The
// cursor is left untouched when the slot would run past the chunk.
func (c *Chunk) place(size BitCount, align Alignment) (uint64, uint8, bool) {
	saved := c.cur
	local, bit := c.cur.Place(size, align)

	end := local + size.Bytes()
	if align == AlignBit {
		end = local + 1
	}
	if end > uint64(c.size) {
		c.cur = saved
		return 0, 0, false
	}
	return c.offset + local, bit, true
}

// seek moves the cursor to a byte offset within the chunk.
func (c *Chunk) seek(local uint64) {
	c.cur = layout.Cursor{Bytes: local}
}
