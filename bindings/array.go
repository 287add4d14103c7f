package bindings

import (
	"fmt"
	"strconv"

	"github.com/wippyai/mojom/bindings/internal/layout"
	"github.com/wippyai/mojom/errors"
)

type arrayCodec[T any] struct {
	elem  Codec[T]
	fixed int
}

// Array returns a codec for variable-length arrays of c.
func Array[T any](c Codec[T]) PointerCodec[[]T] {
	return arrayCodec[T]{elem: c, fixed: -1}
}

// FixedArray returns a codec for arrays of exactly n elements. Other
// lengths are rejected on both encode and decode.
func FixedArray[T any](c Codec[T], n int) PointerCodec[[]T] {
	if n < 0 {
		panic("bindings: negative fixed array length")
	}
	return arrayCodec[T]{elem: c, fixed: n}
}

func (a arrayCodec[T]) Name() string {
	if a.fixed >= 0 {
		return fmt.Sprintf("array<%s, %d>", TypeName(a.elem), a.fixed)
	}
	return "array<" + TypeName(a.elem) + ">"
}

func (a arrayCodec[T]) Kind() Kind { return KindPointer }
func (a arrayCodec[T]) Alignment() Alignment { return Align8 }
func (a arrayCodec[T]) EmbedSize(Context) BitCount { return PointerBits }

func (a arrayCodec[T]) elemBits() BitCount {
	return a.elem.EmbedSize(Context{})
}

func (a arrayCodec[T]) ComputeSize(v []T, _ Context) uint64 {
	size := layout.ArrayChunkSize(uint64(len(v)), a.elemBits())
	if a.elem.Kind() == KindSimple || a.elem.Kind() == KindHandle {
		return size
	}
	for _, x := range v {
		size += a.elem.ComputeSize(x, Context{})
	}
	return size
}

func (a arrayCodec[T]) Encode(enc *Encoder, ctx Context, v []T) error {
	return encodePointee[[]T](enc, ctx, a, v)
}

func (a arrayCodec[T]) Decode(dec *Decoder, ctx Context) ([]T, error) {
	return decodePointee[[]T](dec, ctx, a)
}

func (a arrayCodec[T]) EncodeNew(enc *Encoder, v []T) error {
	if a.fixed >= 0 && len(v) != a.fixed {
		return errors.New(errors.PhaseEncode, errors.KindUnexpectedArrayHeader).
			Type(a.Name()).
			Detail("got %d elements", len(v)).
			Build()
	}
	if uint64(len(v)) > layout.MaxArrayLength {
		return errors.Overflow(errors.PhaseEncode, nil, len(v), a.Name())
	}
	size := layout.ArrayChunkSize(uint64(len(v)), a.elemBits())
	if size > layout.MaxChunkSize {
		return errors.Overflow(errors.PhaseEncode, nil, size, a.Name())
	}

	ctx, err := enc.Add(uint32(size), uint32(len(v)))
	if err != nil {
		return err
	}
	for i, x := range v {
		if err := a.elem.Encode(enc, ctx, x); err != nil {
			return errors.WithPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

func (a arrayCodec[T]) DecodeNew(dec *Decoder, offset uint64) ([]T, error) {
	ctx, err := dec.Claim(offset)
	if err != nil {
		return nil, err
	}
	h, err := dec.DecodeArrayHeader(ctx, a.elemBits())
	if err != nil {
		return nil, withType(err, a.Name())
	}
	if a.fixed >= 0 && int(h.Metadata) != a.fixed {
		return nil, dec.fail(errors.UnexpectedArrayHeader(a.Name(),
			fmt.Sprintf("got %d elements", h.Metadata)), offset)
	}

	// fill a scratch slice; nothing partial escapes on error
	out := make([]T, 0, h.Metadata)
	for i := uint32(0); i < h.Metadata; i++ {
		x, err := a.elem.Decode(dec, ctx)
		if err != nil {
			return nil, errors.WithPath(err, strconv.Itoa(int(i)))
		}
		out = append(out, x)
	}
	return out, nil
}
