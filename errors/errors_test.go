package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindUnexpectedArrayHeader,
				Path:   []string{"user", "tags", "3"},
				Type:   "array<string>",
				Detail: "count mismatch",
			},
			contains: []string{"[decode]", "unexpected_array_header", "user.tags.3", "array<string>", "count mismatch"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTransport,
				Kind:   KindClosed,
				Detail: "peer gone",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[transport]", "closed", "peer gone", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindIllegalPointer,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindIllegalPointer}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindIllegalPointer}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Kind: KindIllegalPointer}) {
		t.Error("target without phase should match any phase")
	}
	if errors.Is(err, &Error{Kind: KindIllegalMemoryRange}) {
		t.Error("target of another kind should not match")
	}
	if !errors.Is(New(PhaseTransport, KindShouldWait).Build(), ErrShouldWait) {
		t.Error("ErrShouldWait should match a transport should_wait error")
	}
	if errors.Is(err, ErrClosed) {
		t.Error("ErrClosed should not match illegal_pointer")
	}

	wrapped := fmt.Errorf("reading reply: %w", err)
	if !errors.Is(wrapped, &Error{Kind: KindIllegalPointer}) {
		t.Error("errors.Is should see through fmt wrapping")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(IllegalHandle(3)); got != KindIllegalHandle {
		t.Errorf("KindOf = %v, want %v", got, KindIllegalHandle)
	}
	if got := KindOf(fmt.Errorf("x: %w", RecursionLimitExceeded(10))); got != KindRecursionLimitExceeded {
		t.Errorf("KindOf wrapped = %v", got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf plain = %v, want empty", got)
	}
}

func TestWithPath(t *testing.T) {
	err := error(UnexpectedNullPointer(PhaseDecode, "string"))
	err = WithPath(err, "name")
	err = WithPath(err, "person")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if strings.Join(e.Path, ".") != "person.name" {
		t.Errorf("Path = %v, want [person name]", e.Path)
	}

	plain := errors.New("plain")
	if WithPath(plain, "x") != plain {
		t.Error("non-structured errors should pass through")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindOverflow).
		Path("user", "age").
		Type("uint8").
		Value(300).
		Cause(cause).
		Detail("expected %s, got %d", "uint8", 300).
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindOverflow {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "age" {
		t.Errorf("Path = %v, want [user age]", err.Path)
	}
	if err.Type != "uint8" {
		t.Errorf("Type = %v, want 'uint8'", err.Type)
	}
	if err.Value != 300 {
		t.Errorf("Value = %v, want 300", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected uint8, got 300" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		text string
	}{
		{"IllegalPointer", IllegalPointer(12, "misaligned"), KindIllegalPointer, "offset 12"},
		{"IllegalMemoryRange", IllegalMemoryRange(8, 24), KindIllegalMemoryRange, "[8, 24)"},
		{"UnexpectedNullPointer", UnexpectedNullPointer(PhaseEncode, "string"), KindUnexpectedNullPointer, "string"},
		{"UnexpectedInvalidHandle", UnexpectedInvalidHandle(PhaseDecode, "handle"), KindUnexpectedInvalidHandle, "handle"},
		{"UnexpectedNullUnion", UnexpectedNullUnion(PhaseDecode, "Shape"), KindUnexpectedNullUnion, "Shape"},
		{"IllegalHandle", IllegalHandle(2), KindIllegalHandle, "handle 2"},
		{"UnexpectedStructHeader", UnexpectedStructHeader("Point", 8, 0), KindUnexpectedStructHeader, "8 bytes"},
		{"UnexpectedArrayHeader", UnexpectedArrayHeader("array<int32>", "short"), KindUnexpectedArrayHeader, "short"},
		{"DifferentSizedArraysInMap", DifferentSizedArraysInMap("map", 2, 3), KindDifferentSizedArraysInMap, "2 keys, 3 values"},
		{"RecursionLimitExceeded", RecursionLimitExceeded(100), KindRecursionLimitExceeded, "100"},
		{"InvalidUTF8", InvalidUTF8(PhaseDecode, []string{"str"}, []byte{0xff, 0xfe}), KindInvalidUTF8, "fffe"},
		{"AllocationFailed", AllocationFailed(PhaseEncode, 1024, 8), KindAllocation, "1024"},
		{"InvalidDiscriminant", InvalidDiscriminant(PhaseDecode, "Shape", 5), KindInvalidVariant, "tag 5"},
		{"OutOfBounds", OutOfBounds(PhaseDecode, []string{"list"}, 10, 5), KindOutOfBounds, "length 5"},
		{"NilPointer", NilPointer(PhaseEncode, []string{"ptr"}, "*User"), KindNilPointer, "*User"},
		{"Overflow", Overflow(PhaseEncode, []string{"val"}, 300, "uint8"), KindOverflow, "300"},
		{"InvalidEnum", InvalidEnum(PhaseDecode, []string{"status"}, 9, "Status"), KindInvalidEnum, "Status"},
		{"UnsupportedVersion", UnsupportedVersion(PhaseDecode, "Echo", 3), KindUnsupportedVersion, "version 3"},
		{"NotFound", NotFound(PhaseDispatch, "message", 7), KindNotFound, "message 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if msg := tt.err.Error(); !strings.Contains(msg, tt.text) {
				t.Errorf("message %q does not contain %q", msg, tt.text)
			}
		})
	}
}

func TestConstructorsReturnFreshErrors(t *testing.T) {
	a := IllegalHandle(1)
	b := IllegalHandle(1)
	if a == b {
		t.Fatal("constructors must not share instances")
	}
	WithPath(a, "x")
	if len(b.Path) != 0 {
		t.Error("path mutation leaked across errors")
	}
}
