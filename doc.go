// Package mojom provides a Go implementation of the Mojo binary bindings.
//
// Values described by Mojom schemas are encoded into a compact,
// little-endian buffer of 8-byte aligned chunks that reference each other
// through relative pointers. Handles travel next to the bytes and are
// referenced by index. Decoding validates every header, pointer and handle
// index before a field is read.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	mojom/
//	├── bindings/        Codecs, encoder, validating decoder and layout rules
//	├── message/         Message headers, message building and dispatch
//	├── system/          In-process handle table, message pipes, buffers
//	├── errors/          Structured error types for debugging
//	└── cmd/mojodump/    Inspect encoded messages from the command line
//
// # Quick Start
//
// Describe a struct and round-trip a value:
//
//	type Point struct{ X, Y int32 }
//
//	var PointCodec = bindings.NewStruct[Point]("Point",
//	    bindings.Field("x", bindings.Int32, func(p *Point) *int32 { return &p.X }),
//	    bindings.Field("y", bindings.Int32, func(p *Point) *int32 { return &p.Y }),
//	)
//
//	data, handles, err := bindings.Serialize[Point](PointCodec, Point{1, 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := bindings.Deserialize[Point](PointCodec, data, handles)
//
// Send it as a request over a message pipe:
//
//	core := system.NewCore()
//	client, server, _ := core.CreateMessagePipe()
//
//	reg := message.NewRegistry()
//	_ = message.Register[Point](reg, 1, "Move", PointCodec)
//
//	_ = message.Send[Point](client, message.NewRequestHeader(1, 42), PointCodec, Point{1, 2})
//	in, err := message.ReceiveContext(ctx, server, reg)
//
// # Type Support
//
//   - Primitives: bool, int8-int64, uint8-uint64, float, double
//   - Pointers: string, array<T>, array<T, N>, map<K, V>, structs
//   - Unions: inline 16-byte blocks, boxed when nested in another union
//   - Enums: int32 with a validity check
//   - Handles: message pipes, shared buffers, data pipes, interfaces
//   - Nullable variants of every pointer, union and handle type
//
// # Thread Safety
//
// Codecs are immutable and safe for concurrent use. An Encoder or Decoder
// belongs to one goroutine. Registry and Core are safe for concurrent use.
//
// # Handle Ownership
//
// Encoding collects handles without transferring them; a failed encode
// leaves them with the caller. Decoding owns every handle it is given:
// unclaimed handles are closed when decoding finishes and all of them are
// closed when it fails.
package mojom
