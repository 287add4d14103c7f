package bindings

import (
	"testing"

	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
)

type point struct {
	X, Y int32
}

var pointCodec PointerCodec[point] = NewStruct[point]("Point",
	Field("x", Int32, func(p *point) *int32 { return &p.X }),
	Field("y", Int32, func(p *point) *int32 { return &p.Y }),
)

type shape interface{ isShape() }

type (
	circle float64
	square int32
	label  string
)

func (circle) isShape() {}
func (square) isShape() {}
func (label) isShape() {}

var shapeCodec = NewUnion[shape]("Shape",
	Case(0, "circle", Float64,
		func(r float64) shape { return circle(r) },
		func(s shape) (float64, bool) {
			c, ok := s.(circle)
			return float64(c), ok
		}),
	Case(1, "square", Int32,
		func(n int32) shape { return square(n) },
		func(s shape) (int32, bool) {
			q, ok := s.(square)
			return int32(q), ok
		}),
	Case(2, "label", Codec[string](String),
		func(v string) shape { return label(v) },
		func(s shape) (string, bool) {
			l, ok := s.(label)
			return string(l), ok
		}),
)

type wrapped interface{ isWrapped() }

type (
	wrappedShape struct{ shape }
	wrappedFlag  bool
)

func (wrappedShape) isWrapped() {}
func (wrappedFlag) isWrapped() {}

// wrappedCodec nests a union inside a union, which boxes the inner one.
var wrappedCodec = NewUnion[wrapped]("Wrapped",
	Case(0, "shape", Codec[shape](shapeCodec),
		func(s shape) wrapped { return wrappedShape{s} },
		func(w wrapped) (shape, bool) {
			v, ok := w.(wrappedShape)
			return v.shape, ok
		}),
	Case(1, "flag", Bool,
		func(b bool) wrapped { return wrappedFlag(b) },
		func(w wrapped) (bool, bool) {
			f, ok := w.(wrappedFlag)
			return bool(f), ok
		}),
)

type color int32

const (
	red   color = 0
	green color = 1
	blue  color = 5
)

var colorCodec = NewEnum[color]("Color", EnumValues(red, green, blue))

type node struct {
	Value int32
	Next  *node
}

func newNodeCodec() PointerCodec[node] {
	var c PointerCodec[node]
	c = NewStruct[node]("Node",
		Field("value", Int32, func(n *node) *int32 { return &n.Value }),
		Field("next", Nullable[node](Lazy(func() PointerCodec[node] { return c })),
			func(n *node) **node { return &n.Next }),
	)
	return c
}

func chain(n int) node {
	head := node{Value: 1}
	cur := &head
	for i := 2; i <= n; i++ {
		cur.Next = &node{Value: int32(i)}
		cur = cur.Next
	}
	return head
}

func mustSerialize[T any](t *testing.T, c PointerCodec[T], v T) []byte {
	t.Helper()
	data, handles, err := Serialize(c, v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(handles) != 0 {
		t.Fatalf("unexpected %d handles", len(handles))
	}
	return data
}

func expectKind(t *testing.T, err error, want errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := errors.KindOf(err); got != want {
		t.Fatalf("error kind = %q, want %q (%v)", got, want, err)
	}
}

func patchU32(data []byte, off uint64, v uint32) { wire.PutUint32(data, off, v) }
func patchU64(data []byte, off uint64, v uint64) { wire.PutUint64(data, off, v) }
