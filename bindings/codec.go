package bindings

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/mojom/errors"
)

// Kind is the storage strategy of a type.
type Kind uint8

const (
	// KindSimple values are stored inline: numbers, bools and enums.
	KindSimple Kind = iota
	// KindPointer values live in their own chunk behind a relative pointer.
	KindPointer
	// KindUnion values are a 16-byte inline block, or boxed inside unions.
	KindUnion
	// KindHandle values are an index into the handle list.
	KindHandle
	// KindInterface values are a handle index plus a version.
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindPointer:
		return "pointer"
	case KindUnion:
		return "union"
	case KindHandle:
		return "handle"
	case KindInterface:
		return "interface"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Codec encodes and decodes values of one Mojom type. Encode and Decode
// operate on the inline slot at the context's cursor; pointer types
// write the pointer there and their contents in a new chunk.
type Codec[T any] interface {
	Kind() Kind
	Alignment() Alignment
	// EmbedSize is the size of the inline slot.
	EmbedSize(ctx Context) BitCount
	// ComputeSize is the number of out-of-line bytes the value needs,
	// including its own chunk for pointer types.
	ComputeSize(v T, ctx Context) uint64
	Encode(enc *Encoder, ctx Context, v T) error
	Decode(dec *Decoder, ctx Context) (T, error)
}

// PointerCodec is implemented by types that can be the root of a message
// or the target of a pointer.
type PointerCodec[T any] interface {
	Codec[T]
	// EncodeNew writes v as a new chunk at the end of the encoder.
	EncodeNew(enc *Encoder, v T) error
	// DecodeNew reads the chunk at the absolute offset.
	DecodeNew(dec *Decoder, offset uint64) (T, error)
}

// TypeName returns the Mojom type name of a codec.
func TypeName(c any) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}

// DecodeAt decodes the chunk at offset as one level of nesting.
func DecodeAt[T any](dec *Decoder, c PointerCodec[T], offset uint64) (T, error) {
	if err := dec.enter(); err != nil {
		var zero T
		return zero, err
	}
	defer dec.leave()
	return c.DecodeNew(dec, offset)
}

func encodePointee[T any](enc *Encoder, ctx Context, c PointerCodec[T], v T) error {
	if err := enc.WritePointer(ctx, enc.Size()); err != nil {
		return err
	}
	return c.EncodeNew(enc, v)
}

func decodePointee[T any](dec *Decoder, ctx Context, c PointerCodec[T]) (T, error) {
	var zero T
	target, ok, err := dec.DecodePointer(ctx)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, dec.fail(errors.UnexpectedNullPointer(errors.PhaseDecode, TypeName(c)), dec.Chunk(ctx).offset)
	}
	return DecodeAt(dec, c, target)
}

// withType fills in the type name of a structured error that has none.
func withType(err error, name string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Type == "" {
		e.Type = name
	}
	return err
}

type lazyCodec[T any] struct {
	get func() PointerCodec[T]
}

// Lazy defers codec construction for recursive structs and arrays, whose
// codec refers to itself. get is called on first use.
func Lazy[T any](get func() PointerCodec[T]) PointerCodec[T] {
	return lazyCodec[T]{get: get}
}

func (l lazyCodec[T]) Name() string { return TypeName(l.get()) }
func (l lazyCodec[T]) Kind() Kind { return KindPointer }
func (l lazyCodec[T]) Alignment() Alignment { return Align8 }
func (l lazyCodec[T]) EmbedSize(Context) BitCount { return PointerBits }
func (l lazyCodec[T]) ComputeSize(v T, ctx Context) uint64 { return l.get().ComputeSize(v, ctx) }

func (l lazyCodec[T]) Encode(enc *Encoder, ctx Context, v T) error {
	return l.get().Encode(enc, ctx, v)
}

func (l lazyCodec[T]) Decode(dec *Decoder, ctx Context) (T, error) {
	return l.get().Decode(dec, ctx)
}

func (l lazyCodec[T]) EncodeNew(enc *Encoder, v T) error {
	return l.get().EncodeNew(enc, v)
}

func (l lazyCodec[T]) DecodeNew(dec *Decoder, offset uint64) (T, error) {
	return l.get().DecodeNew(dec, offset)
}
