package bindings

import (
	"unicode/utf8"

	"github.com/wippyai/mojom/bindings/internal/layout"
	"github.com/wippyai/mojom/errors"
)

type byteArray struct{}

// Bytes is array<uint8> with a bulk copy.
var Bytes PointerCodec[[]byte] = byteArray{}

func (byteArray) Name() string { return "array<uint8>" }
func (byteArray) Kind() Kind { return KindPointer }
func (byteArray) Alignment() Alignment { return Align8 }
func (byteArray) EmbedSize(Context) BitCount { return PointerBits }
func (byteArray) ComputeSize(v []byte, _ Context) uint64 { return layout.ArrayChunkSize(uint64(len(v)), 8) }

func (b byteArray) Encode(enc *Encoder, ctx Context, v []byte) error {
	return encodePointee[[]byte](enc, ctx, b, v)
}

func (b byteArray) Decode(dec *Decoder, ctx Context) ([]byte, error) {
	return decodePointee[[]byte](dec, ctx, b)
}

func (byteArray) EncodeNew(enc *Encoder, v []byte) error {
	return encodeByteArray(enc, v, "array<uint8>")
}

func (byteArray) DecodeNew(dec *Decoder, offset uint64) ([]byte, error) {
	raw, err := decodeByteArray(dec, offset, "array<uint8>")
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), raw...), nil
}

func encodeByteArray(enc *Encoder, v []byte, name string) error {
	if uint64(len(v)) > layout.MaxArrayLength {
		return errors.Overflow(errors.PhaseEncode, nil, len(v), name)
	}
	size, ok := layout.SafeAddU32(HeaderSize, uint32(len(v)))
	if !ok || size > layout.MaxChunkSize {
		return errors.Overflow(errors.PhaseEncode, nil, len(v), name)
	}
	ctx, err := enc.Add(size, uint32(len(v)))
	if err != nil {
		return err
	}
	start := enc.Chunk(ctx).offset + HeaderSize
	copy(enc.buf[start:], v)
	return nil
}

// decodeByteArray returns the array contents aliased into the input.
func decodeByteArray(dec *Decoder, offset uint64, name string) ([]byte, error) {
	ctx, err := dec.Claim(offset)
	if err != nil {
		return nil, err
	}
	h, err := dec.DecodeArrayHeader(ctx, 8)
	if err != nil {
		return nil, withType(err, name)
	}
	start := dec.Chunk(ctx).offset + HeaderSize
	return dec.data[start : start+uint64(h.Metadata)], nil
}

type stringCodec struct{}

// String is a UTF-8 string stored as array<uint8>. Invalid UTF-8 is
// rejected in both directions.
var String PointerCodec[string] = stringCodec{}

func (stringCodec) Name() string { return "string" }
func (stringCodec) Kind() Kind { return KindPointer }
func (stringCodec) Alignment() Alignment { return Align8 }
func (stringCodec) EmbedSize(Context) BitCount { return PointerBits }
func (stringCodec) ComputeSize(v string, _ Context) uint64 {
	return layout.ArrayChunkSize(uint64(len(v)), 8)
}

func (s stringCodec) Encode(enc *Encoder, ctx Context, v string) error {
	return encodePointee[string](enc, ctx, s, v)
}

func (s stringCodec) Decode(dec *Decoder, ctx Context) (string, error) {
	return decodePointee[string](dec, ctx, s)
}

func (stringCodec) EncodeNew(enc *Encoder, v string) error {
	if !utf8.ValidString(v) {
		return errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(v))
	}
	return encodeByteArray(enc, []byte(v), "string")
}

func (stringCodec) DecodeNew(dec *Decoder, offset uint64) (string, error) {
	raw, err := decodeByteArray(dec, offset, "string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", dec.fail(errors.InvalidUTF8(errors.PhaseDecode, nil, raw), offset)
	}
	return string(raw), nil
}
