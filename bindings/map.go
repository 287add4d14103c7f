package bindings

import (
	"cmp"
	"slices"

	"github.com/wippyai/mojom/errors"
)

// Pair is one map entry in wire order.
type Pair[K, V any] struct {
	Key   K
	Value V
}

var mapVersions = VersionTable{{Version: 0, Size: MapSize}}

type pairsCodec[K, V any] struct {
	keys   PointerCodec[[]K]
	values PointerCodec[[]V]
	name   string
}

// Pairs returns a map codec that keeps entries as an ordered slice. It
// shares the wire format of Map and accepts any key type.
func Pairs[K, V any](k Codec[K], v Codec[V]) PointerCodec[[]Pair[K, V]] {
	return pairsCodec[K, V]{
		keys:   Array(k),
		values: Array(v),
		name:   "map<" + TypeName(k) + ", " + TypeName(v) + ">",
	}
}

func (p pairsCodec[K, V]) Name() string { return p.name }
func (p pairsCodec[K, V]) Kind() Kind { return KindPointer }
func (p pairsCodec[K, V]) Alignment() Alignment { return Align8 }
func (p pairsCodec[K, V]) EmbedSize(Context) BitCount { return PointerBits }

func split[K, V any](pairs []Pair[K, V]) ([]K, []V) {
	keys := make([]K, len(pairs))
	values := make([]V, len(pairs))
	for i, p := range pairs {
		keys[i], values[i] = p.Key, p.Value
	}
	return keys, values
}

func (p pairsCodec[K, V]) ComputeSize(v []Pair[K, V], _ Context) uint64 {
	keys, values := split(v)
	return MapSize + p.keys.ComputeSize(keys, Context{}) + p.values.ComputeSize(values, Context{})
}

func (p pairsCodec[K, V]) Encode(enc *Encoder, ctx Context, v []Pair[K, V]) error {
	return encodePointee[[]Pair[K, V]](enc, ctx, p, v)
}

func (p pairsCodec[K, V]) Decode(dec *Decoder, ctx Context) ([]Pair[K, V], error) {
	return decodePointee[[]Pair[K, V]](dec, ctx, p)
}

func (p pairsCodec[K, V]) EncodeNew(enc *Encoder, v []Pair[K, V]) error {
	keys, values := split(v)
	return p.encodeShell(enc, keys, values)
}

// encodeShell writes the 24-byte shell followed by the keys array and
// then the values array.
func (p pairsCodec[K, V]) encodeShell(enc *Encoder, keys []K, values []V) error {
	ctx, err := enc.Add(MapSize, 0)
	if err != nil {
		return err
	}
	if err := p.keys.Encode(enc, ctx, keys); err != nil {
		return errors.WithPath(err, "keys")
	}
	if err := p.values.Encode(enc, ctx, values); err != nil {
		return errors.WithPath(err, "values")
	}
	return nil
}

func (p pairsCodec[K, V]) DecodeNew(dec *Decoder, offset uint64) ([]Pair[K, V], error) {
	keys, values, err := p.decodeShell(dec, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Pair[K, V], len(keys))
	for i := range keys {
		out[i] = Pair[K, V]{Key: keys[i], Value: values[i]}
	}
	return out, nil
}

func (p pairsCodec[K, V]) decodeShell(dec *Decoder, offset uint64) ([]K, []V, error) {
	ctx, err := dec.Claim(offset)
	if err != nil {
		return nil, nil, err
	}
	h, err := dec.DecodeStructHeader(ctx, mapVersions)
	if err != nil {
		return nil, nil, withType(err, p.name)
	}
	if h.Size != MapSize || h.Metadata != 0 {
		return nil, nil, dec.fail(errors.UnexpectedStructHeader(p.name, h.Size, h.Metadata), offset)
	}

	keys, err := p.keys.Decode(dec, ctx)
	if err != nil {
		return nil, nil, errors.WithPath(err, "keys")
	}
	values, err := p.values.Decode(dec, ctx)
	if err != nil {
		return nil, nil, errors.WithPath(err, "values")
	}
	if len(keys) != len(values) {
		return nil, nil, dec.fail(errors.DifferentSizedArraysInMap(p.name, uint32(len(keys)), uint32(len(values))), offset)
	}
	return keys, values, nil
}

type mapCodec[K cmp.Ordered, V any] struct {
	pairs pairsCodec[K, V]
}

// Map returns a codec for Go maps. Entries are written in ascending key
// order so equal maps encode to equal bytes. When a decoded message repeats
// a key, the last entry wins.
func Map[K cmp.Ordered, V any](k Codec[K], v Codec[V]) PointerCodec[map[K]V] {
	return mapCodec[K, V]{pairs: Pairs(k, v).(pairsCodec[K, V])}
}

func (m mapCodec[K, V]) Name() string { return m.pairs.name }
func (m mapCodec[K, V]) Kind() Kind { return KindPointer }
func (m mapCodec[K, V]) Alignment() Alignment { return Align8 }
func (m mapCodec[K, V]) EmbedSize(Context) BitCount { return PointerBits }

func sorted[K cmp.Ordered, V any](v map[K]V) ([]K, []V) {
	keys := make([]K, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([]V, len(keys))
	for i, k := range keys {
		values[i] = v[k]
	}
	return keys, values
}

func (m mapCodec[K, V]) ComputeSize(v map[K]V, _ Context) uint64 {
	keys, values := sorted(v)
	return MapSize + m.pairs.keys.ComputeSize(keys, Context{}) + m.pairs.values.ComputeSize(values, Context{})
}

func (m mapCodec[K, V]) Encode(enc *Encoder, ctx Context, v map[K]V) error {
	return encodePointee[map[K]V](enc, ctx, m, v)
}

func (m mapCodec[K, V]) Decode(dec *Decoder, ctx Context) (map[K]V, error) {
	return decodePointee[map[K]V](dec, ctx, m)
}

func (m mapCodec[K, V]) EncodeNew(enc *Encoder, v map[K]V) error {
	keys, values := sorted(v)
	return m.pairs.encodeShell(enc, keys, values)
}

func (m mapCodec[K, V]) DecodeNew(dec *Decoder, offset uint64) (map[K]V, error) {
	keys, values, err := m.pairs.decodeShell(dec, offset)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, len(keys))
	for i, k := range keys {
		out[k] = values[i]
	}
	return out, nil
}
