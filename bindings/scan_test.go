package bindings

import (
	"reflect"
	"testing"

	"github.com/wippyai/mojom/errors"
)

func TestScan(t *testing.T) {
	data := mustSerialize[pair](t, pairCodec, pair{A: "x", B: "y"})

	chunks, err := Scan(data)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []ChunkInfo{
		{Offset: 0, DataHeader: DataHeader{Size: 24, Metadata: 0}},
		{Offset: 24, DataHeader: DataHeader{Size: 16, Metadata: 1}},
		{Offset: 40, DataHeader: DataHeader{Size: 16, Metadata: 1}},
	}
	if !reflect.DeepEqual(chunks, want) {
		t.Fatalf("chunks = %+v, want %+v", chunks, want)
	}

	words := Words(data, chunks)
	if len(words) != 7 {
		t.Fatalf("words = %d, want 7", len(words))
	}
	tests := []struct {
		index  int
		chunk  int
		header bool
		target uint64
	}{
		{0, 0, true, 0},
		{1, 0, false, 24},
		{2, 0, false, 40},
		{3, 1, true, 0},
		{4, 1, false, 0},
		{5, 2, true, 0},
		{6, 2, false, 0},
	}
	for _, tt := range tests {
		w := words[tt.index]
		if w.Offset != uint64(tt.index*8) || w.Chunk != tt.chunk || w.Header != tt.header || w.Target != tt.target {
			t.Errorf("word %d = %+v", tt.index, w)
		}
	}
}

func TestScan_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{"short header", []byte{8, 0, 0, 0}, errors.KindOutOfBounds},
		{"tiny chunk", []byte{4, 0, 0, 0, 0, 0, 0, 0}, errors.KindInvalidData},
		{"past end", []byte{16, 0, 0, 0, 0, 0, 0, 0}, errors.KindOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.data)
			expectKind(t, err, tt.kind)
		})
	}
}

func TestWords_PartialTail(t *testing.T) {
	data := []byte{8, 0, 0, 0, 0, 0, 0, 0, 0xaa}
	words := Words(data, []ChunkInfo{{Offset: 0, DataHeader: DataHeader{Size: 8}}})
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}
	if words[1].Value != 0xaa || words[1].Chunk != -1 {
		t.Errorf("tail = %+v", words[1])
	}
}
