package bindings

import "github.com/wippyai/mojom/system"

// RootContext returns the context a value encoded with EncodeNew is sized
// in. A root union is boxed in its own chunk, so it is sized as if nested
// in another union.
func RootContext[T any](c PointerCodec[T]) Context {
	if c.Kind() == KindUnion {
		return Context{}.WithinUnion()
	}
	return Context{}
}

// Serialize encodes v into a buffer sized with ComputeSize.
func Serialize[T any](c PointerCodec[T], v T) ([]byte, []system.UntypedHandle, error) {
	buf := make([]byte, c.ComputeSize(v, RootContext(c)))
	n, handles, err := SerializeTo(c, v, buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], handles, nil
}

// SerializeTo encodes v into buf and returns the number of bytes used. It
// fails with an allocation error when buf is too small. On failure the
// caller keeps ownership of every handle in v.
func SerializeTo[T any](c PointerCodec[T], v T, buf []byte) (uint64, []system.UntypedHandle, error) {
	enc := NewEncoder(buf)
	if err := c.EncodeNew(enc, v); err != nil {
		return 0, nil, err
	}
	return enc.Size(), enc.Finish(), nil
}

// Deserialize decodes the value rooted at offset 0 with default limits.
func Deserialize[T any](c PointerCodec[T], data []byte, handles []system.UntypedHandle) (T, error) {
	return DeserializeWithConfig(c, data, handles, nil)
}

// DeserializeWithConfig decodes the value rooted at offset 0. It takes
// ownership of handles: unclaimed ones are closed on success, and all of
// them are closed on failure, when the zero value is returned.
func DeserializeWithConfig[T any](c PointerCodec[T], data []byte, handles []system.UntypedHandle, cfg *Config) (T, error) {
	dec := NewDecoderWithConfig(data, handles, cfg)
	v, err := DecodeAt(dec, c, 0)
	if err != nil {
		_ = dec.Abort()
		var zero T
		return zero, err
	}
	_ = dec.Close()
	return v, nil
}
