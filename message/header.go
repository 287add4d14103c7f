package message

import (
	stderrors "errors"

	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/errors"
)

// Header flags. Bits other than these are carried through untouched.
const (
	FlagNone            uint32 = 0
	FlagExpectsResponse uint32 = 1 << 0
	FlagIsResponse      uint32 = 1 << 1
	FlagIsSync          uint32 = 1 << 2

	flagMask = FlagExpectsResponse | FlagIsResponse
)

// Header sizes by version.
const (
	HeaderSizeV0 = 16
	HeaderSizeV1 = 24
)

var headerVersions = bindings.VersionTable{
	{Version: 0, Size: HeaderSizeV0},
	{Version: 1, Size: HeaderSizeV1},
}

// Header is the versioned struct in front of every message. Version 0
// carries the name and flags; version 1 adds the request id that pairs a
// response with its request.
type Header struct {
	Version   uint32
	Name      uint32
	Flags     uint32
	RequestID uint64
}

// NewHeader returns a v0 header for a message that expects no reply.
func NewHeader(name uint32) Header {
	return Header{Name: name}
}

// NewRequestHeader returns a v1 header for a request awaiting a response.
func NewRequestHeader(name uint32, requestID uint64) Header {
	return Header{Version: 1, Name: name, Flags: FlagExpectsResponse, RequestID: requestID}
}

// NewResponseHeader returns a v1 header answering request requestID.
func NewResponseHeader(name uint32, requestID uint64) Header {
	return Header{Version: 1, Name: name, Flags: FlagIsResponse, RequestID: requestID}
}

// ExpectsResponse reports whether the sender waits for a reply.
func (h Header) ExpectsResponse() bool { return h.Flags&FlagExpectsResponse != 0 }

// IsResponse reports whether the message answers an earlier request.
func (h Header) IsResponse() bool { return h.Flags&FlagIsResponse != 0 }

// IsSync reports whether the sender blocks its thread on the reply.
func (h Header) IsSync() bool { return h.Flags&FlagIsSync != 0 }

// Size returns the encoded header size.
func (h Header) Size() uint32 {
	if h.Version == 0 {
		return HeaderSizeV0
	}
	return HeaderSizeV1
}

// Validate checks that flags and version agree. A message that is part of
// a request/response exchange needs a request id, so it must be v1.
func (h Header) Validate() error {
	return h.check(errors.PhaseValidate)
}

func (h Header) check(phase errors.Phase) error {
	if h.ExpectsResponse() && h.IsResponse() {
		return errors.New(phase, errors.KindMessageHeaderInvalidFlags).
			Value(h.Flags).
			Detail("a response cannot expect a response").
			Build()
	}
	if h.Version == 0 && h.Flags&flagMask != 0 {
		return errors.New(phase, errors.KindMessageHeaderMissingRequestID).
			Value(h.Flags).
			Detail("flags %#x need a v1 header", h.Flags).
			Build()
	}
	return nil
}

type headerCodec struct{}

// HeaderCodec encodes a Header as a standalone struct chunk.
var HeaderCodec bindings.PointerCodec[Header] = headerCodec{}

func (headerCodec) Name() string { return "MessageHeader" }
func (headerCodec) Kind() bindings.Kind { return bindings.KindPointer }
func (headerCodec) Alignment() bindings.Alignment { return bindings.Align8 }
func (headerCodec) EmbedSize(bindings.Context) bindings.BitCount { return bindings.PointerBits }
func (headerCodec) ComputeSize(h Header, _ bindings.Context) uint64 { return uint64(h.Size()) }

func (c headerCodec) Encode(enc *bindings.Encoder, ctx bindings.Context, h Header) error {
	if err := enc.WritePointer(ctx, enc.Size()); err != nil {
		return err
	}
	return c.EncodeNew(enc, h)
}

func (c headerCodec) Decode(dec *bindings.Decoder, ctx bindings.Context) (Header, error) {
	target, ok, err := dec.DecodePointer(ctx)
	if err != nil {
		return Header{}, err
	}
	if !ok {
		return Header{}, errors.UnexpectedNullPointer(errors.PhaseDecode, c.Name())
	}
	return bindings.DecodeAt[Header](dec, c, target)
}

func (headerCodec) EncodeNew(enc *bindings.Encoder, h Header) error {
	if err := h.check(errors.PhaseEncode); err != nil {
		return err
	}
	ctx, err := enc.Add(h.Size(), h.Version)
	if err != nil {
		return err
	}
	if err := enc.WriteUint32(ctx, h.Name); err != nil {
		return err
	}
	if err := enc.WriteUint32(ctx, h.Flags); err != nil {
		return err
	}
	if h.Version >= 1 {
		return enc.WriteUint64(ctx, h.RequestID)
	}
	return nil
}

func (c headerCodec) DecodeNew(dec *bindings.Decoder, offset uint64) (Header, error) {
	ctx, err := dec.Claim(offset)
	if err != nil {
		return Header{}, err
	}
	dh, err := dec.DecodeStructHeader(ctx, headerVersions)
	if err != nil {
		return Header{}, withType(err, c.Name())
	}

	h := Header{Version: dh.Metadata}
	if h.Name, err = dec.ReadUint32(ctx); err != nil {
		return Header{}, err
	}
	if h.Flags, err = dec.ReadUint32(ctx); err != nil {
		return Header{}, err
	}
	if h.Version >= 1 {
		if h.RequestID, err = dec.ReadUint64(ctx); err != nil {
			return Header{}, err
		}
	}
	if err := h.check(errors.PhaseDecode); err != nil {
		return Header{}, err
	}
	return h, nil
}

func withType(err error, name string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Type == "" {
		e.Type = name
	}
	return err
}
