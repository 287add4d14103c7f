package bindings

import (
	"fmt"

	"github.com/wippyai/mojom/bindings/internal/layout"
	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
)

// ChunkInfo is a chunk found by Scan.
type ChunkInfo struct {
	Offset uint64
	DataHeader
}

// End returns the offset just past the padded chunk.
func (c ChunkInfo) End() uint64 {
	return c.Offset + layout.AlignChunk(uint64(c.Size))
}

// Word is one annotated 8-byte word of an encoded buffer.
type Word struct {
	Offset uint64
	Value  uint64
	// Chunk is the index of the chunk holding the word, or -1.
	Chunk int
	// Header marks the first word of a chunk.
	Header bool
	// Target is the absolute offset the word points at when it reads as a
	// relative pointer to a later chunk, or 0.
	Target uint64
}

// Scan walks the chunks of an encoded buffer in encoding order. Chunks are
// placed back to back on 8-byte boundaries, so the walk needs no type
// information. It stops with an error at the first header that does not
// fit.
func Scan(data []byte) ([]ChunkInfo, error) {
	var chunks []ChunkInfo
	var off uint64
	n := uint64(len(data))
	for off < n {
		if n-off < HeaderSize {
			return chunks, errors.OutOfBounds(errors.PhaseDecode, nil, int(off+HeaderSize), len(data))
		}
		h := DataHeader{Size: wire.Uint32(data, off), Metadata: wire.Uint32(data, off+4)}
		if h.Size < HeaderSize {
			return chunks, errors.InvalidData(errors.PhaseDecode, nil,
				fmt.Sprintf("chunk at %d has size %d", off, h.Size))
		}
		c := ChunkInfo{Offset: off, DataHeader: h}
		if c.End() > n {
			return chunks, errors.OutOfBounds(errors.PhaseDecode, nil, int(c.End()), len(data))
		}
		chunks = append(chunks, c)
		off = c.End()
	}
	return chunks, nil
}

// Words splits data into 8-byte words annotated with the chunks from
// Scan. A trailing partial word is zero padded.
func Words(data []byte, chunks []ChunkInfo) []Word {
	starts := make(map[uint64]int, len(chunks))
	for i, c := range chunks {
		starts[c.Offset] = i
	}

	words := make([]Word, 0, (len(data)+7)/8)
	ci := 0
	for off := uint64(0); off < uint64(len(data)); off += 8 {
		var v uint64
		if off+8 <= uint64(len(data)) {
			v = wire.Uint64(data, off)
		} else {
			var tail [8]byte
			copy(tail[:], data[off:])
			v = wire.Uint64(tail[:], 0)
		}

		for ci < len(chunks) && chunks[ci].End() <= off {
			ci++
		}
		w := Word{Offset: off, Value: v, Chunk: -1}
		if ci < len(chunks) && chunks[ci].Offset <= off {
			w.Chunk = ci
			w.Header = chunks[ci].Offset == off
		}
		if !w.Header && v != 0 && v%8 == 0 && v < uint64(len(data)) {
			if _, ok := starts[off+v]; ok {
				w.Target = off + v
			}
		}
		words = append(words, w)
	}
	return words
}
