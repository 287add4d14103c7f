package bindings

import "github.com/wippyai/mojom/errors"

type enumCodec[E ~int32] struct {
	name  string
	valid func(E) bool
}

// NewEnum returns a codec for an int32-backed enum. Values for which
// valid returns false are rejected; a nil valid accepts everything, as an
// extensible enum does.
func NewEnum[E ~int32](name string, valid func(E) bool) Codec[E] {
	return enumCodec[E]{name: name, valid: valid}
}

// EnumValues returns a validator accepting exactly the given values.
func EnumValues[E ~int32](values ...E) func(E) bool {
	set := make(map[E]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(v E) bool {
		_, ok := set[v]
		return ok
	}
}

func (e enumCodec[E]) Name() string { return e.name }
func (e enumCodec[E]) Kind() Kind { return KindSimple }
func (e enumCodec[E]) Alignment() Alignment { return Align4 }
func (e enumCodec[E]) EmbedSize(Context) BitCount { return 32 }
func (e enumCodec[E]) ComputeSize(E, Context) uint64 { return 0 }

func (e enumCodec[E]) Encode(enc *Encoder, ctx Context, v E) error {
	if e.valid != nil && !e.valid(v) {
		return errors.InvalidEnum(errors.PhaseEncode, nil, int32(v), e.name)
	}
	return enc.WriteInt32(ctx, int32(v))
}

func (e enumCodec[E]) Decode(dec *Decoder, ctx Context) (E, error) {
	raw, err := dec.ReadInt32(ctx)
	if err != nil {
		return 0, err
	}
	v := E(raw)
	if e.valid != nil && !e.valid(v) {
		return 0, dec.fail(errors.InvalidEnum(errors.PhaseDecode, nil, raw, e.name), dec.Chunk(ctx).offset)
	}
	return v, nil
}
