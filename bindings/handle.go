package bindings

import (
	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
	"github.com/wippyai/mojom/system"
)

type handleCodec[H any] struct {
	name    string
	untyped func(H) system.UntypedHandle
	typed   func(system.UntypedHandle) H
}

func identity(h system.UntypedHandle) system.UntypedHandle { return h }

// Handle codecs. Encoding moves the handle into the encoder's handle list;
// decoding claims it from the decoder.
var (
	UntypedHandle    Codec[system.UntypedHandle]      = handleCodec[system.UntypedHandle]{"handle", identity, identity}
	MessagePipe      Codec[system.MessagePipeHandle]  = handleCodec[system.MessagePipeHandle]{"handle<message_pipe>", system.MessagePipeHandle.Untyped, system.UntypedHandle.ToMessagePipe}
	SharedBuffer     Codec[system.SharedBufferHandle] = handleCodec[system.SharedBufferHandle]{"handle<shared_buffer>", system.SharedBufferHandle.Untyped, system.UntypedHandle.ToSharedBuffer}
	DataPipeConsumer Codec[system.ConsumerHandle]     = handleCodec[system.ConsumerHandle]{"handle<data_pipe_consumer>", system.ConsumerHandle.Untyped, system.UntypedHandle.ToConsumer}
	DataPipeProducer Codec[system.ProducerHandle]     = handleCodec[system.ProducerHandle]{"handle<data_pipe_producer>", system.ProducerHandle.Untyped, system.UntypedHandle.ToProducer}
)

func (h handleCodec[H]) Name() string { return h.name }
func (h handleCodec[H]) Kind() Kind { return KindHandle }
func (h handleCodec[H]) Alignment() Alignment { return Align4 }
func (h handleCodec[H]) EmbedSize(Context) BitCount { return 32 }
func (h handleCodec[H]) ComputeSize(H, Context) uint64 { return 0 }

func (h handleCodec[H]) Encode(enc *Encoder, ctx Context, v H) error {
	raw := h.untyped(v)
	if !raw.IsValid() {
		return errors.UnexpectedInvalidHandle(errors.PhaseEncode, h.name)
	}
	off, _, err := enc.place(ctx, 32, Align4)
	if err != nil {
		return err
	}
	wire.PutInt32(enc.buf, off, enc.AddHandle(raw))
	return nil
}

func (h handleCodec[H]) Decode(dec *Decoder, ctx Context) (H, error) {
	var zero H
	index, err := dec.ReadInt32(ctx)
	if err != nil {
		return zero, err
	}
	raw, err := dec.ClaimHandle(index)
	if err != nil {
		return zero, withType(err, h.name)
	}
	return h.typed(raw), nil
}
