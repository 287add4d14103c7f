package message

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/wippyai/mojom/bindings"
	"github.com/wippyai/mojom/errors"
)

func TestHeader_V1Layout(t *testing.T) {
	h := NewRequestHeader(0, 7)
	data, handles, err := bindings.Serialize(HeaderCodec, h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(handles) != 0 {
		t.Errorf("handles = %d", len(handles))
	}
	want := []byte{
		24, 0, 0, 0, 1, 0, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 0,
		7, 0, 0, 0, 0, 0, 0, 0,
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("bytes = % x, want % x", data, want)
	}

	got, err := PeekHeader(data)
	if err != nil {
		t.Fatalf("PeekHeader: %v", err)
	}
	if got != h {
		t.Errorf("got %+v, want %+v", got, h)
	}
	if !got.ExpectsResponse() || got.IsResponse() {
		t.Errorf("flags = %d", got.Flags)
	}
}

func TestHeader_V0Layout(t *testing.T) {
	data, _, err := bindings.Serialize(HeaderCodec, NewHeader(9))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{16, 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(data, want) {
		t.Fatalf("bytes = % x, want % x", data, want)
	}
}

func TestHeader_Validate(t *testing.T) {
	tests := []struct {
		name string
		h    Header
		kind errors.Kind
	}{
		{"plain v0", NewHeader(1), ""},
		{"request", NewRequestHeader(1, 2), ""},
		{"response", NewResponseHeader(1, 2), ""},
		{"v1 without flags", Header{Version: 1, Name: 1}, ""},
		{"sync request", Header{Version: 1, Flags: FlagExpectsResponse | FlagIsSync}, ""},
		{"unknown bits", Header{Version: 1, Flags: 0x80}, ""},
		{"sync on v0", Header{Flags: FlagIsSync}, ""},
		{"both flags", Header{Version: 1, Flags: FlagExpectsResponse | FlagIsResponse}, errors.KindMessageHeaderInvalidFlags},
		{"v0 request", Header{Flags: FlagExpectsResponse}, errors.KindMessageHeaderMissingRequestID},
		{"v0 response", Header{Flags: FlagIsResponse}, errors.KindMessageHeaderMissingRequestID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.h.Validate()
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if errors.KindOf(err) != tt.kind {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}

			_, _, err = bindings.Serialize(HeaderCodec, tt.h)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseEncode, Kind: tt.kind}) {
				t.Errorf("encode err = %v", err)
			}
		})
	}
}

func TestHeader_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{
			"v0 expecting response",
			[]byte{16, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0},
			errors.KindMessageHeaderMissingRequestID,
		},
		{
			"v1 too short",
			[]byte{16, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0},
			errors.KindUnexpectedStructHeader,
		},
		{
			"response expecting response",
			[]byte{24, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
			errors.KindMessageHeaderInvalidFlags,
		},
		{
			"truncated",
			[]byte{24, 0, 0, 0, 1, 0, 0, 0},
			errors.KindOutOfBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PeekHeader(tt.data)
			if errors.KindOf(err) != tt.kind {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
		})
	}

	_, err := PeekHeader([]byte{16, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0})
	if e, ok := err.(*errors.Error); !ok || e.Phase != errors.PhaseDecode {
		t.Errorf("err = %v, want decode phase", err)
	}
}

func TestHeader_FutureVersion(t *testing.T) {
	data := []byte{
		32, 0, 0, 0, 2, 0, 0, 0,
		5, 0, 0, 0, 2, 0, 0, 0,
		9, 0, 0, 0, 0, 0, 0, 0,
		0xaa, 0xbb, 0, 0, 0, 0, 0, 0,
	}
	h, err := PeekHeader(data)
	if err != nil {
		t.Fatalf("PeekHeader: %v", err)
	}
	if h.Version != 2 || h.Name != 5 || !h.IsResponse() || h.RequestID != 9 {
		t.Errorf("got %+v", h)
	}
}

func TestHeader_ExtraFlagsKept(t *testing.T) {
	// expects-response plus the sync bit
	data := []byte{
		24, 0, 0, 0, 1, 0, 0, 0,
		4, 0, 0, 0, 5, 0, 0, 0,
		11, 0, 0, 0, 0, 0, 0, 0,
	}
	h, err := PeekHeader(data)
	if err != nil {
		t.Fatalf("PeekHeader: %v", err)
	}
	if h.Flags != 5 || !h.ExpectsResponse() || !h.IsSync() || h.IsResponse() {
		t.Errorf("header = %+v", h)
	}

	out, _, err := bindings.Serialize(HeaderCodec, h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("bytes = % x, want % x", out, data)
	}
}

func TestWithType(t *testing.T) {
	inner := errors.New(errors.PhaseDecode, errors.KindUnexpectedStructHeader).Build()
	err := withType(fmt.Errorf("claim: %w", inner), "MessageHeader")
	if inner.Type != "MessageHeader" {
		t.Errorf("Type = %q, want MessageHeader through wrapping", inner.Type)
	}
	if !stderrors.Is(err, inner) {
		t.Error("withType must return the error it was given")
	}

	named := errors.New(errors.PhaseDecode, errors.KindUnexpectedStructHeader).Type("Point").Build()
	_ = withType(named, "MessageHeader")
	if named.Type != "Point" {
		t.Errorf("Type = %q, an existing type must be kept", named.Type)
	}

	if withType(nil, "MessageHeader") != nil {
		t.Error("nil stays nil")
	}
}
