package bindings

type scalar[T any] struct {
	name  string
	read  func(*Decoder, Context) (T, error)
	write func(*Encoder, Context, T) error
	size  BitCount
	align Alignment
}

func (s scalar[T]) Name() string { return s.name }
func (s scalar[T]) Kind() Kind { return KindSimple }
func (s scalar[T]) Alignment() Alignment { return s.align }
func (s scalar[T]) EmbedSize(Context) BitCount { return s.size }
func (s scalar[T]) ComputeSize(T, Context) uint64 { return 0 }
func (s scalar[T]) Encode(enc *Encoder, ctx Context, v T) error {
	return s.write(enc, ctx, v)
}

func (s scalar[T]) Decode(dec *Decoder, ctx Context) (T, error) {
	return s.read(dec, ctx)
}

// Built-in scalar codecs.
var (
	Bool    Codec[bool]    = scalar[bool]{"bool", (*Decoder).ReadBool, (*Encoder).WriteBool, 1, AlignBit}
	Int8    Codec[int8]    = scalar[int8]{"int8", (*Decoder).ReadInt8, (*Encoder).WriteInt8, 8, Align1}
	Uint8   Codec[uint8]   = scalar[uint8]{"uint8", (*Decoder).ReadUint8, (*Encoder).WriteUint8, 8, Align1}
	Int16   Codec[int16]   = scalar[int16]{"int16", (*Decoder).ReadInt16, (*Encoder).WriteInt16, 16, Align2}
	Uint16  Codec[uint16]  = scalar[uint16]{"uint16", (*Decoder).ReadUint16, (*Encoder).WriteUint16, 16, Align2}
	Int32   Codec[int32]   = scalar[int32]{"int32", (*Decoder).ReadInt32, (*Encoder).WriteInt32, 32, Align4}
	Uint32  Codec[uint32]  = scalar[uint32]{"uint32", (*Decoder).ReadUint32, (*Encoder).WriteUint32, 32, Align4}
	Int64   Codec[int64]   = scalar[int64]{"int64", (*Decoder).ReadInt64, (*Encoder).WriteInt64, 64, Align8}
	Uint64  Codec[uint64]  = scalar[uint64]{"uint64", (*Decoder).ReadUint64, (*Encoder).WriteUint64, 64, Align8}
	Float32 Codec[float32] = scalar[float32]{"float", (*Decoder).ReadFloat32, (*Encoder).WriteFloat32, 32, Align4}
	Float64 Codec[float64] = scalar[float64]{"double", (*Decoder).ReadFloat64, (*Encoder).WriteFloat64, 64, Align8}
)
