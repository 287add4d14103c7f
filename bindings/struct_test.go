package bindings

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/wippyai/mojom/bindings/internal/wire"
	"github.com/wippyai/mojom/errors"
)

type record struct {
	ID   int32
	Name string
	Tags []string
}

func recordFields() []StructField[record] {
	return []StructField[record]{
		Field("id", Int32, func(r *record) *int32 { return &r.ID }),
		Field("name", Codec[string](String), func(r *record) *string { return &r.Name }).Since(1),
		Field("tags", Codec[[]string](Array(Codec[string](String))), func(r *record) *[]string { return &r.Tags }).Since(2),
	}
}

var (
	recordV0 = NewStruct[record]("Record", recordFields()[:1]...)
	recordV2 = NewStruct[record]("Record", recordFields()...)
)

func TestStruct_VersionTable(t *testing.T) {
	want := VersionTable{{0, 16}, {1, 24}, {2, 32}}
	if got := recordV2.Versions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Versions = %v, want %v", got, want)
	}
	if got := recordV0.Versions(); !reflect.DeepEqual(got, VersionTable{{0, 16}}) {
		t.Errorf("v0 Versions = %v", got)
	}
	if err := recordV2.Versions().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestStruct_Versioning(t *testing.T) {
	full := record{ID: 7, Name: "n", Tags: []string{"a", "b"}}

	t.Run("older sender", func(t *testing.T) {
		data := mustSerialize[record](t, recordV0, full)
		if len(data) != 16 || wire.Uint32(data, 4) != 0 {
			t.Fatalf("v0 bytes = % x", data)
		}
		out, err := Deserialize[record](recordV2, data, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if !reflect.DeepEqual(out, record{ID: 7}) {
			t.Errorf("got %+v, want only ID", out)
		}
	})

	t.Run("newer sender", func(t *testing.T) {
		data := mustSerialize[record](t, recordV2, full)
		if wire.Uint32(data, 0) != 32 || wire.Uint32(data, 4) != 2 {
			t.Fatalf("header = (%d, %d)", wire.Uint32(data, 0), wire.Uint32(data, 4))
		}
		out, err := Deserialize[record](recordV0, data, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if !reflect.DeepEqual(out, record{ID: 7}) {
			t.Errorf("got %+v", out)
		}
	})

	t.Run("same version", func(t *testing.T) {
		out, err := Deserialize[record](recordV2, mustSerialize[record](t, recordV2, full), nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if !reflect.DeepEqual(out, full) {
			t.Errorf("got %+v, want %+v", out, full)
		}
	})

	t.Run("chosen version", func(t *testing.T) {
		v1 := NewStruct[record]("Record", recordFields()...).
			WithVersionFunc(func(*record) uint32 { return 1 })
		data := mustSerialize[record](t, v1, full)
		if wire.Uint32(data, 0) != 24 || wire.Uint32(data, 4) != 1 {
			t.Fatalf("header = (%d, %d)", wire.Uint32(data, 0), wire.Uint32(data, 4))
		}
		out, err := Deserialize[record](recordV2, data, nil)
		if err != nil {
			t.Fatalf("Deserialize: %v", err)
		}
		if !reflect.DeepEqual(out, record{ID: 7, Name: "n"}) {
			t.Errorf("got %+v", out)
		}
	})

	t.Run("unknown chosen version", func(t *testing.T) {
		bad := NewStruct[record]("Record", recordFields()...).
			WithVersionFunc(func(*record) uint32 { return 5 })
		_, _, err := Serialize[record](bad, full)
		expectKind(t, err, errors.KindUnsupportedVersion)
		if e := err.(*errors.Error); e.Type != "Record" || e.Phase != errors.PhaseEncode {
			t.Errorf("err = %+v", e)
		}
	})

	t.Run("version without its fields", func(t *testing.T) {
		data := mustSerialize[record](t, recordV0, full)
		patchU32(data, 4, 1)
		_, err := Deserialize[record](recordV2, data, nil)
		expectKind(t, err, errors.KindUnexpectedStructHeader)
		if e := err.(*errors.Error); e.Type != "Record" {
			t.Errorf("Type = %q, want Record", e.Type)
		}
	})
}

func TestStruct_FieldOrderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a v0 field after a v1 field")
		}
	}()
	fields := recordFields()
	NewStruct[record]("Record", fields[1], fields[0])
}

type packed struct {
	A bool
	B int32
	C bool
	D bool
	E uint8
	F string
}

func TestStruct_Packing(t *testing.T) {
	codec := NewStruct[packed]("Packed",
		Field("a", Bool, func(p *packed) *bool { return &p.A }),
		Field("b", Int32, func(p *packed) *int32 { return &p.B }),
		Field("c", Bool, func(p *packed) *bool { return &p.C }),
		Field("d", Bool, func(p *packed) *bool { return &p.D }),
		Field("e", Uint8, func(p *packed) *uint8 { return &p.E }),
		Field("f", Codec[string](String), func(p *packed) *string { return &p.F }),
	)
	in := packed{A: true, B: 0x01020304, D: true, E: 0xab, F: "s"}

	data := mustSerialize[packed](t, codec, in)
	want := []byte{
		32, 0, 0, 0, 0, 0, 0, 0,
		0x01, 0, 0, 0, 0x04, 0x03, 0x02, 0x01,
		0x02, 0xab, 0, 0, 0, 0, 0, 0,
		8, 0, 0, 0, 0, 0, 0, 0,
		16, 0, 0, 0, 1, 0, 0, 0,
		's', 0, 0, 0, 0, 0, 0, 0,
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("bytes =\n% x\nwant\n% x", data, want)
	}

	out, err := Deserialize[packed](codec, data, nil)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestStruct_ErrorPath(t *testing.T) {
	type outer struct{ Inner packed }
	inner := NewStruct[packed]("Packed",
		Field("f", Codec[string](String), func(p *packed) *string { return &p.F }),
	)
	codec := NewStruct[outer]("Outer",
		Field("inner", Codec[packed](inner), func(o *outer) *packed { return &o.Inner }),
	)

	_, _, err := Serialize[outer](codec, outer{Inner: packed{F: "\xff"}})
	expectKind(t, err, errors.KindInvalidUTF8)
	if e := err.(*errors.Error); len(e.Path) != 2 || e.Path[0] != "inner" || e.Path[1] != "f" {
		t.Errorf("Path = %v, want [inner f]", e.Path)
	}
}

func TestVersionTable(t *testing.T) {
	tests := []struct {
		name  string
		table VersionTable
		valid bool
	}{
		{"empty", nil, true},
		{"ascending", VersionTable{{0, 8}, {1, 16}, {4, 16}}, true},
		{"repeated version", VersionTable{{0, 8}, {0, 16}}, false},
		{"shrinking", VersionTable{{0, 24}, {1, 16}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate = %v, want valid=%v", err, tt.valid)
			}
		})
	}

	table := VersionTable{{0, 8}, {2, 16}}
	if e, ok := table.Lookup(2); !ok || e.Size != 16 {
		t.Errorf("Lookup(2) = %v, %v", e, ok)
	}
	if _, ok := table.Lookup(1); ok {
		t.Error("Lookup(1) should miss")
	}
	if table.Latest().Version != 2 {
		t.Errorf("Latest = %v", table.Latest())
	}
}
