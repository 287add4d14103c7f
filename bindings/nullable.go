package bindings

import (
	"fmt"

	"github.com/wippyai/mojom/bindings/internal/wire"
)

type nullable[T any] struct {
	inner Codec[T]
}

// Nullable wraps a pointer, union, handle or interface codec so that nil
// encodes as the type's null sentinel. It panics for simple types, which
// have no null representation.
func Nullable[T any](c Codec[T]) Codec[*T] {
	if c.Kind() == KindSimple {
		panic(fmt.Sprintf("bindings: %s is a simple type and cannot be nullable", TypeName(c)))
	}
	return nullable[T]{inner: c}
}

func (n nullable[T]) Name() string { return TypeName(n.inner) + "?" }
func (n nullable[T]) Kind() Kind { return n.inner.Kind() }
func (n nullable[T]) Alignment() Alignment { return n.inner.Alignment() }
func (n nullable[T]) EmbedSize(ctx Context) BitCount { return n.inner.EmbedSize(ctx) }

func (n nullable[T]) ComputeSize(v *T, ctx Context) uint64 {
	if v == nil {
		return 0
	}
	return n.inner.ComputeSize(*v, ctx)
}

func (n nullable[T]) Encode(enc *Encoder, ctx Context, v *T) error {
	if v != nil {
		return n.inner.Encode(enc, ctx, *v)
	}

	off, _, err := enc.place(ctx, n.inner.EmbedSize(ctx), n.inner.Alignment())
	if err != nil {
		return err
	}
	switch n.nullForm(ctx) {
	case nullHandle:
		wire.PutInt32(enc.buf, off, -1)
	case nullInterface:
		wire.PutInt32(enc.buf, off, -1)
		wire.PutUint32(enc.buf, off+4, 0)
	}
	// pointers and unions are all zero, and Add zeroed the chunk
	return nil
}

func (n nullable[T]) Decode(dec *Decoder, ctx Context) (*T, error) {
	isNull, err := n.peekNull(dec, ctx)
	if err != nil || isNull {
		return nil, err
	}
	v, err := n.inner.Decode(dec, ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type nullForm uint8

const (
	nullPointer nullForm = iota
	nullUnion
	nullHandle
	nullInterface
)

func (n nullable[T]) nullForm(ctx Context) nullForm {
	switch n.inner.Kind() {
	case KindUnion:
		if ctx.IsUnion() {
			return nullPointer
		}
		return nullUnion
	case KindHandle:
		return nullHandle
	case KindInterface:
		return nullInterface
	default:
		return nullPointer
	}
}

// peekNull reads the slot and reports whether it holds the null sentinel.
// A null slot is consumed; otherwise the cursor is restored for the inner
// codec.
func (n nullable[T]) peekNull(dec *Decoder, ctx Context) (bool, error) {
	c := dec.Chunk(ctx)
	saved := c.cur

	off, _, err := dec.place(ctx, n.inner.EmbedSize(ctx), n.inner.Alignment())
	if err != nil {
		return false, err
	}

	var isNull bool
	switch n.nullForm(ctx) {
	case nullPointer:
		isNull = wire.Uint64(dec.data, off) == 0
	case nullUnion:
		isNull = wire.Uint32(dec.data, off) == 0
	case nullHandle, nullInterface:
		isNull = wire.Int32(dec.data, off) == -1
	}

	if !isNull {
		c.cur = saved
	}
	return isNull, nil
}
