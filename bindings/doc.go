// Package bindings implements the Mojom binary encoding.
//
// A value is encoded as a graph of 8-byte aligned chunks. Every chunk
// starts with a data header (size, metadata). Structs, arrays, strings
// and maps live in their own chunk and are referenced by 64-bit relative
// pointers; scalars, enums, handles and unions are stored inline. Handles
// travel out of band in a separate list and are referenced by index.
//
// # Codecs
//
// Every Mojom type is described by a Codec. Built-in codecs cover the
// scalars, strings, arrays, maps and handles; generated code composes
// them into structs, unions and interfaces:
//
//	type Point struct{ X, Y int32 }
//
//	var PointCodec = bindings.NewStruct[Point]("Point",
//		bindings.Field("x", bindings.Int32, func(p *Point) *int32 { return &p.X }),
//		bindings.Field("y", bindings.Int32, func(p *Point) *int32 { return &p.Y }),
//	)
//
//	data, handles, err := bindings.Serialize[Point](PointCodec, Point{1, 2})
//	p, err := bindings.Deserialize[Point](PointCodec, data, handles)
//
// # Versioning
//
// Fields added in a later struct version are marked with Since. A decoder
// accepts older versions, leaving missing fields zero, and newer versions,
// ignoring the fields it does not know.
//
// # Validation
//
// The Decoder treats its input as hostile. Pointers must land inside the
// buffer on an 8-byte boundary, chunks may not overlap, headers must
// match their contents, each handle may be claimed once and pointer
// nesting is bounded by Config.MaxRecursionDepth. Failures are reported
// as *errors.Error values whose Kind names the violated rule.
package bindings
