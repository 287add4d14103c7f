package bindings

import (
	"fmt"

	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
)

// UnionCase is one variant of a union over U.
type UnionCase[U any] interface {
	tag() uint32
	caseName() string
	match(v U) bool
	computeSize(v U, ctx Context) uint64
	encode(enc *Encoder, ctx Context, v U) error
	decode(dec *Decoder, ctx Context) (U, error)
	embed() BitCount
}

type unionCase[U, T any] struct {
	codec  Codec[T]
	wrap   func(T) U
	unwrap func(U) (T, bool)
	name   string
	tagged uint32
}

// Case declares the variant with the given tag. wrap builds the union
// value from a payload and unwrap extracts it, reporting whether v holds
// this variant.
func Case[U, T any](tag uint32, name string, c Codec[T], wrap func(T) U, unwrap func(U) (T, bool)) UnionCase[U] {
	return &unionCase[U, T]{codec: c, wrap: wrap, unwrap: unwrap, name: name, tagged: tag}
}

func (c *unionCase[U, T]) tag() uint32 { return c.tagged }
func (c *unionCase[U, T]) caseName() string { return c.name }
func (c *unionCase[U, T]) embed() BitCount { return c.codec.EmbedSize(Context{union: true}) }

func (c *unionCase[U, T]) match(v U) bool {
	_, ok := c.unwrap(v)
	return ok
}

func (c *unionCase[U, T]) computeSize(v U, ctx Context) uint64 {
	p, _ := c.unwrap(v)
	return c.codec.ComputeSize(p, ctx)
}

func (c *unionCase[U, T]) encode(enc *Encoder, ctx Context, v U) error {
	p, _ := c.unwrap(v)
	if err := c.codec.Encode(enc, ctx, p); err != nil {
		return errors.WithPath(err, c.name)
	}
	return nil
}

func (c *unionCase[U, T]) decode(dec *Decoder, ctx Context) (U, error) {
	p, err := c.codec.Decode(dec, ctx)
	if err != nil {
		var zero U
		return zero, errors.WithPath(err, c.name)
	}
	return c.wrap(p), nil
}

// UnionCodec encodes a tagged union. Inline it is a 16-byte block
// (size, tag, payload); directly inside another union it is boxed in a
// 16-byte chunk whose header is (16, tag).
type UnionCodec[U any] struct {
	name  string
	cases []UnionCase[U]
	byTag map[uint32]UnionCase[U]
}

// NewUnion returns a codec for the given cases. It panics on duplicate
// tags or on a payload wider than 64 bits.
func NewUnion[U any](name string, cases ...UnionCase[U]) *UnionCodec[U] {
	u := &UnionCodec[U]{name: name, cases: cases, byTag: make(map[uint32]UnionCase[U], len(cases))}
	for _, c := range cases {
		if _, dup := u.byTag[c.tag()]; dup {
			panic(fmt.Sprintf("bindings: union %s declares tag %d twice", name, c.tag()))
		}
		if c.embed() > 64 {
			panic(fmt.Sprintf("bindings: union %s case %s does not fit 8 bytes", name, c.caseName()))
		}
		u.byTag[c.tag()] = c
	}
	return u
}

func (u *UnionCodec[U]) Name() string { return u.name }
func (u *UnionCodec[U]) Kind() Kind { return KindUnion }
func (u *UnionCodec[U]) Alignment() Alignment { return Align8 }

func (u *UnionCodec[U]) EmbedSize(ctx Context) BitCount {
	if ctx.IsUnion() {
		return PointerBits
	}
	return BitCount(UnionSize * 8)
}

func (u *UnionCodec[U]) which(v U) (UnionCase[U], error) {
	if any(v) == nil {
		return nil, errors.UnexpectedNullUnion(errors.PhaseEncode, u.name)
	}
	for _, c := range u.cases {
		if c.match(v) {
			return c, nil
		}
	}
	return nil, errors.New(errors.PhaseEncode, errors.KindInvalidVariant).
		Type(u.name).
		Detail("%T matches no case", v).
		Build()
}

func (u *UnionCodec[U]) ComputeSize(v U, ctx Context) uint64 {
	c, err := u.which(v)
	if err != nil {
		return 0
	}
	payload := c.computeSize(v, Context{union: true})
	if ctx.IsUnion() {
		return UnionSize + payload
	}
	return payload
}

func (u *UnionCodec[U]) Encode(enc *Encoder, ctx Context, v U) error {
	if ctx.IsUnion() {
		return encodePointee[U](enc, ctx, u, v)
	}

	c, err := u.which(v)
	if err != nil {
		return err
	}
	off, _, err := enc.place(ctx, u.EmbedSize(ctx), Align8)
	if err != nil {
		return err
	}
	wire.PutUint32(enc.buf, off, UnionSize)
	wire.PutUint32(enc.buf, off+4, c.tag())

	chunk := enc.Chunk(ctx)
	local := off - chunk.offset
	chunk.seek(local + 8)
	err = c.encode(enc, ctx.WithinUnion(), v)
	enc.Chunk(ctx).seek(local + UnionSize)
	return err
}

func (u *UnionCodec[U]) Decode(dec *Decoder, ctx Context) (U, error) {
	var zero U
	if ctx.IsUnion() {
		target, ok, err := dec.DecodePointer(ctx)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, dec.fail(errors.UnexpectedNullUnion(errors.PhaseDecode, u.name), dec.Chunk(ctx).offset)
		}
		return DecodeAt[U](dec, u, target)
	}

	off, _, err := dec.place(ctx, u.EmbedSize(ctx), Align8)
	if err != nil {
		return zero, err
	}
	size := wire.Uint32(dec.data, off)
	tag := wire.Uint32(dec.data, off+4)
	if size == 0 {
		return zero, dec.fail(errors.UnexpectedNullUnion(errors.PhaseDecode, u.name), off)
	}
	if size != UnionSize {
		return zero, dec.fail(errors.InvalidData(errors.PhaseDecode, nil,
			fmt.Sprintf("union %s declares %d bytes, want %d", u.name, size, UnionSize)), off)
	}
	c, ok := u.byTag[tag]
	if !ok {
		return zero, dec.fail(errors.InvalidDiscriminant(errors.PhaseDecode, u.name, tag), off)
	}

	chunk := dec.Chunk(ctx)
	local := off - chunk.offset
	chunk.seek(local + 8)
	v, err := c.decode(dec, ctx.WithinUnion())
	dec.Chunk(ctx).seek(local + UnionSize)
	return v, err
}

// EncodeNew writes v boxed in its own 16-byte chunk.
func (u *UnionCodec[U]) EncodeNew(enc *Encoder, v U) error {
	c, err := u.which(v)
	if err != nil {
		return err
	}
	ctx, err := enc.Add(UnionSize, c.tag())
	if err != nil {
		return err
	}
	return c.encode(enc, ctx.WithinUnion(), v)
}

// DecodeNew reads a boxed union chunk.
func (u *UnionCodec[U]) DecodeNew(dec *Decoder, offset uint64) (U, error) {
	var zero U
	ctx, err := dec.Claim(offset)
	if err != nil {
		return zero, err
	}
	chunk := dec.Chunk(ctx)
	if chunk.size != UnionSize {
		return zero, dec.fail(errors.InvalidData(errors.PhaseDecode, nil,
			fmt.Sprintf("boxed union %s is %d bytes, want %d", u.name, chunk.size, UnionSize)), offset)
	}
	c, ok := u.byTag[chunk.metadata]
	if !ok {
		return zero, dec.fail(errors.InvalidDiscriminant(errors.PhaseDecode, u.name, chunk.metadata), offset)
	}
	return c.decode(dec, ctx.WithinUnion())
}
