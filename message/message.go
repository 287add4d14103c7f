package message

import (
	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

// Message is an encoded header plus payload and the handles it carries.
type Message struct {
	Header  Header
	Data    []byte
	Handles []system.UntypedHandle
}

// Build encodes h followed by the payload struct v. On failure the caller
// keeps ownership of every handle in v.
func Build[T any](h Header, c bindings.PointerCodec[T], v T) (*Message, error) {
	size := uint64(h.Size()) + c.ComputeSize(v, bindings.RootContext(c))
	enc := bindings.NewEncoder(make([]byte, size))

	if err := HeaderCodec.EncodeNew(enc, h); err != nil {
		return nil, err
	}
	if err := c.EncodeNew(enc, v); err != nil {
		return nil, errors.WithPath(err, "payload")
	}
	return &Message{
		Header:  h,
		Data:    enc.Bytes(),
		Handles: enc.Finish(),
	}, nil
}

// PeekHeader decodes only the header. It does not take ownership of any
// handle.
func PeekHeader(data []byte) (Header, error) {
	dec := bindings.NewDecoder(data, nil, 0)
	return bindings.DecodeAt(dec, HeaderCodec, 0)
}

// Parse decodes a message whose payload is known up front. It takes
// ownership of handles the way bindings.Deserialize does: all of them are
// closed on failure.
func Parse[T any](data []byte, handles []system.UntypedHandle, c bindings.PointerCodec[T], cfg *bindings.Config) (Header, T, error) {
	var zero T
	dec := bindings.NewDecoderWithConfig(data, handles, cfg)
	h, v, err := parse(dec, c)
	if err != nil {
		_ = dec.Abort()
		return Header{}, zero, err
	}
	_ = dec.Close()
	return h, v, nil
}

func parse[T any](dec *bindings.Decoder, c bindings.PointerCodec[T]) (Header, T, error) {
	var zero T
	h, err := bindings.DecodeAt(dec, HeaderCodec, 0)
	if err != nil {
		return Header{}, zero, err
	}
	// the payload struct starts right after the header chunk
	v, err := bindings.DecodeAt(dec, c, uint64(headerChunkSize(dec)))
	if err != nil {
		return Header{}, zero, errors.WithPath(err, "payload")
	}
	return h, v, nil
}

func headerChunkSize(dec *bindings.Decoder) uint32 {
	return dec.Chunk(bindings.Context{}).Size()
}
