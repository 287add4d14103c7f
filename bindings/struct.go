package bindings

import (
	"fmt"
	"sort"

	"github.com/wippyai/mojom/bindings/internal/layout"
	"github.com/wippyai/mojom/errors"
)

// VersionEntry is the minimum chunk size of one struct version.
type VersionEntry struct {
	Version uint32
	Size    uint32
}

// VersionTable lists struct versions in ascending order. Sizes never
// decrease as versions grow.
type VersionTable []VersionEntry

// Lookup finds the entry for an exact version.
func (t VersionTable) Lookup(version uint32) (VersionEntry, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Version >= version })
	if i < len(t) && t[i].Version == version {
		return t[i], true
	}
	return VersionEntry{}, false
}

// Latest returns the newest entry.
func (t VersionTable) Latest() VersionEntry {
	if len(t) == 0 {
		return VersionEntry{Size: HeaderSize}
	}
	return t[len(t)-1]
}

// Validate checks ordering and size monotonicity.
func (t VersionTable) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i].Version <= t[i-1].Version {
			return errors.InvalidInput(errors.PhaseValidate,
				fmt.Sprintf("version %d listed after %d", t[i].Version, t[i-1].Version))
		}
		if t[i].Size < t[i-1].Size {
			return errors.InvalidInput(errors.PhaseValidate,
				fmt.Sprintf("version %d shrinks from %d to %d bytes", t[i].Version, t[i-1].Size, t[i].Size))
		}
	}
	return nil
}

// StructField is one field of a struct codec over S.
type StructField[S any] interface {
	fieldName() string
	since() uint32
	embed() BitCount
	align() Alignment
	computeSize(s *S) uint64
	encode(enc *Encoder, ctx Context, s *S) error
	decode(dec *Decoder, ctx Context, s *S) error
}

// FieldDef binds a codec to a field of S.
type FieldDef[S, T any] struct {
	codec   Codec[T]
	ref     func(*S) *T
	name    string
	version uint32
}

// Field declares a field. ref returns the address of the field within s.
func Field[S, T any](name string, c Codec[T], ref func(s *S) *T) *FieldDef[S, T] {
	return &FieldDef[S, T]{codec: c, ref: ref, name: name}
}

// Since marks the struct version that introduced the field.
func (f *FieldDef[S, T]) Since(version uint32) *FieldDef[S, T] {
	f.version = version
	return f
}

func (f *FieldDef[S, T]) fieldName() string { return f.name }
func (f *FieldDef[S, T]) since() uint32 { return f.version }
func (f *FieldDef[S, T]) embed() BitCount { return f.codec.EmbedSize(Context{}) }
func (f *FieldDef[S, T]) align() Alignment { return f.codec.Alignment() }

func (f *FieldDef[S, T]) computeSize(s *S) uint64 {
	return f.codec.ComputeSize(*f.ref(s), Context{})
}

func (f *FieldDef[S, T]) encode(enc *Encoder, ctx Context, s *S) error {
	if err := f.codec.Encode(enc, ctx, *f.ref(s)); err != nil {
		return errors.WithPath(err, f.name)
	}
	return nil
}

func (f *FieldDef[S, T]) decode(dec *Decoder, ctx Context, s *S) error {
	v, err := f.codec.Decode(dec, ctx)
	if err != nil {
		return errors.WithPath(err, f.name)
	}
	*f.ref(s) = v
	return nil
}

// StructCodec encodes S as a versioned struct. Fields are laid out in
// declaration order; bools pack into shared bytes.
type StructCodec[S any] struct {
	versionOf func(*S) uint32
	name      string
	fields    []StructField[S]
	versions  VersionTable
}

// NewStruct returns a codec for S. Fields must be declared in
// non-decreasing Since order so that every older version is a prefix of
// the newer ones; NewStruct panics otherwise.
func NewStruct[S any](name string, fields ...StructField[S]) *StructCodec[S] {
	c := &StructCodec[S]{name: name, fields: fields}

	cur := layout.Cursor{Bytes: HeaderSize}
	version := uint32(0)
	for _, f := range fields {
		if f.since() < version {
			panic(fmt.Sprintf("bindings: %s.%s added in version %d after a version %d field",
				name, f.fieldName(), f.since(), version))
		}
		if f.since() > version {
			c.versions = append(c.versions, VersionEntry{Version: version, Size: uint32(layout.AlignChunk(cur.End()))})
			version = f.since()
		}
		cur.Place(f.embed(), f.align())
	}
	c.versions = append(c.versions, VersionEntry{Version: version, Size: uint32(layout.AlignChunk(cur.End()))})
	return c
}

// WithVersionFunc makes the codec encode each value at the version fn
// picks. Fields newer than that version are left out.
func (c *StructCodec[S]) WithVersionFunc(fn func(*S) uint32) *StructCodec[S] {
	c.versionOf = fn
	return c
}

// Versions returns the version table derived from the fields.
func (c *StructCodec[S]) Versions() VersionTable { return c.versions }

func (c *StructCodec[S]) Name() string { return c.name }
func (c *StructCodec[S]) Kind() Kind { return KindPointer }
func (c *StructCodec[S]) Alignment() Alignment { return Align8 }
func (c *StructCodec[S]) EmbedSize(Context) BitCount { return PointerBits }

func (c *StructCodec[S]) encodeVersion(v *S) (VersionEntry, error) {
	if c.versionOf == nil {
		return c.versions.Latest(), nil
	}
	version := c.versionOf(v)
	entry, ok := c.versions.Lookup(version)
	if !ok {
		return VersionEntry{}, errors.UnsupportedVersion(errors.PhaseEncode, c.name, version)
	}
	return entry, nil
}

func (c *StructCodec[S]) ComputeSize(v S, _ Context) uint64 {
	entry, err := c.encodeVersion(&v)
	if err != nil {
		return 0
	}
	size := uint64(entry.Size)
	for _, f := range c.fields {
		if f.since() <= entry.Version {
			size += f.computeSize(&v)
		}
	}
	return size
}

func (c *StructCodec[S]) Encode(enc *Encoder, ctx Context, v S) error {
	return encodePointee[S](enc, ctx, c, v)
}

func (c *StructCodec[S]) Decode(dec *Decoder, ctx Context) (S, error) {
	return decodePointee[S](dec, ctx, c)
}

func (c *StructCodec[S]) EncodeNew(enc *Encoder, v S) error {
	entry, err := c.encodeVersion(&v)
	if err != nil {
		return err
	}
	ctx, err := enc.Add(entry.Size, entry.Version)
	if err != nil {
		return err
	}
	for _, f := range c.fields {
		if f.since() > entry.Version {
			break
		}
		if err := f.encode(enc, ctx, &v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeNew reads a struct of any version. Fields the sender's version
// does not have keep their zero value; fields a newer sender added are
// skipped.
func (c *StructCodec[S]) DecodeNew(dec *Decoder, offset uint64) (S, error) {
	var s S
	ctx, err := dec.Claim(offset)
	if err != nil {
		return s, err
	}
	h, err := dec.DecodeStructHeader(ctx, c.versions)
	if err != nil {
		return s, withType(err, c.name)
	}
	for _, f := range c.fields {
		if f.since() > h.Metadata {
			break
		}
		if err := f.decode(dec, ctx, &s); err != nil {
			var zero S
			return zero, err
		}
	}
	return s, nil
}
