package bindings

import (
	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

// InterfacePtr is a message pipe bound to a remote interface of a given
// version.
type InterfacePtr struct {
	Pipe    system.MessagePipeHandle
	Version uint32
}

type interfaceCodec[P any] struct {
	name   string
	accept func(version uint32) bool
	wrap   func(system.MessagePipeHandle, uint32) P
	unwrap func(P) (system.MessagePipeHandle, uint32)
}

// NewInterface returns a codec for interface pointers of type P. accept
// decides which remote versions the receiver can talk to; nil accepts all.
func NewInterface[P any](
	name string,
	accept func(version uint32) bool,
	wrap func(system.MessagePipeHandle, uint32) P,
	unwrap func(P) (system.MessagePipeHandle, uint32),
) Codec[P] {
	return interfaceCodec[P]{name: name, accept: accept, wrap: wrap, unwrap: unwrap}
}

// Interface returns a codec for InterfacePtr values that accepts versions
// up to maxVersion.
func Interface(name string, maxVersion uint32) Codec[InterfacePtr] {
	return NewInterface(name, MaxVersion(maxVersion),
		func(p system.MessagePipeHandle, v uint32) InterfacePtr { return InterfacePtr{Pipe: p, Version: v} },
		func(p InterfacePtr) (system.MessagePipeHandle, uint32) { return p.Pipe, p.Version },
	)
}

// MaxVersion accepts every version up to and including n.
func MaxVersion(n uint32) func(uint32) bool {
	return func(v uint32) bool { return v <= n }
}

func (c interfaceCodec[P]) Name() string { return c.name }
func (c interfaceCodec[P]) Kind() Kind { return KindInterface }
func (c interfaceCodec[P]) Alignment() Alignment { return Align4 }
func (c interfaceCodec[P]) EmbedSize(Context) BitCount { return 64 }
func (c interfaceCodec[P]) ComputeSize(P, Context) uint64 { return 0 }

func (c interfaceCodec[P]) Encode(enc *Encoder, ctx Context, v P) error {
	pipe, version := c.unwrap(v)
	if !pipe.IsValid() {
		return errors.UnexpectedInvalidHandle(errors.PhaseEncode, c.name)
	}
	off, _, err := enc.place(ctx, 64, Align4)
	if err != nil {
		return err
	}
	wire.PutInt32(enc.buf, off, enc.AddHandle(pipe.Untyped()))
	wire.PutUint32(enc.buf, off+4, version)
	return nil
}

func (c interfaceCodec[P]) Decode(dec *Decoder, ctx Context) (P, error) {
	var zero P
	off, _, err := dec.place(ctx, 64, Align4)
	if err != nil {
		return zero, err
	}
	index := wire.Int32(dec.data, off)
	version := wire.Uint32(dec.data, off+4)

	if index == -1 {
		return zero, dec.fail(errors.UnexpectedInvalidHandle(errors.PhaseDecode, c.name), off)
	}
	if c.accept != nil && !c.accept(version) {
		return zero, dec.fail(errors.UnsupportedVersion(errors.PhaseDecode, c.name, version), off)
	}
	raw, err := dec.ClaimHandle(index)
	if err != nil {
		return zero, withType(err, c.name)
	}
	return c.wrap(raw.ToMessagePipe(), version), nil
}
