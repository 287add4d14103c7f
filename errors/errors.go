package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode    Phase = "encode"    // Go value to wire
	PhaseDecode    Phase = "decode"    // wire to Go value
	PhaseValidate  Phase = "validate"  // schema and argument checks
	PhaseDispatch  Phase = "dispatch"  // message routing
	PhaseTransport Phase = "transport" // handle and pipe operations
)

// Kind categorizes the error
type Kind string

const (
	KindIllegalPointer                Kind = "illegal_pointer"
	KindIllegalMemoryRange            Kind = "illegal_memory_range"
	KindIllegalHandle                 Kind = "illegal_handle"
	KindUnexpectedNullPointer         Kind = "unexpected_null_pointer"
	KindUnexpectedInvalidHandle       Kind = "unexpected_invalid_handle"
	KindUnexpectedNullUnion           Kind = "unexpected_null_union"
	KindUnexpectedStructHeader        Kind = "unexpected_struct_header"
	KindUnexpectedArrayHeader         Kind = "unexpected_array_header"
	KindDifferentSizedArraysInMap     Kind = "different_sized_arrays_in_map"
	KindMessageHeaderInvalidFlags     Kind = "message_header_invalid_flags"
	KindMessageHeaderMissingRequestID Kind = "message_header_missing_request_id"
	KindRecursionLimitExceeded        Kind = "recursion_limit_exceeded"
	KindOutOfBounds                   Kind = "out_of_bounds"
	KindInvalidUTF8                   Kind = "invalid_utf8"
	KindInvalidVariant                Kind = "invalid_variant"
	KindInvalidEnum                   Kind = "invalid_enum"
	KindInvalidData                   Kind = "invalid_data"
	KindInvalidInput                  Kind = "invalid_input"
	KindAllocation                    Kind = "allocation"
	KindOverflow                      Kind = "overflow"
	KindNilPointer                    Kind = "nil_pointer"
	KindUnsupportedVersion            Kind = "unsupported_version"
	KindNotFound                      Kind = "not_found"
	KindClosed                        Kind = "closed"
	KindShouldWait                    Kind = "should_wait"
)

// Sentinels for errors.Is. They carry no phase, so they match an error of
// the same kind raised in any phase. Other kinds are matched with a
// phase-less target such as &Error{Kind: KindIllegalPointer}.
var (
	ErrShouldWait = &Error{Kind: KindShouldWait}
	ErrClosed     = &Error{Kind: KindClosed}
)

// Error is the structured error type used throughout the bindings
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kinds must match; the
// phase is compared only when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// WithPath prepends elem to the path of err when err is an *Error.
// Other errors are returned unchanged.
func WithPath(err error, elem string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	path := make([]string, 0, len(e.Path)+1)
	path = append(path, elem)
	e.Path = append(path, e.Path...)
	return err
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the Mojom type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// IllegalPointer creates an error for a pointer whose target is misaligned
// or outside the buffer.
func IllegalPointer(offset uint64, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindIllegalPointer,
		Detail: fmt.Sprintf("offset %d: %s", offset, detail),
		Value:  offset,
	}
}

// IllegalMemoryRange creates an error for a chunk that overlaps one that
// was already claimed.
func IllegalMemoryRange(begin, end uint64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindIllegalMemoryRange,
		Detail: fmt.Sprintf("range [%d, %d) overlaps a claimed chunk", begin, end),
		Value:  begin,
	}
}

// UnexpectedNullPointer creates an error for a null pointer in a
// non-nullable slot.
func UnexpectedNullPointer(phase Phase, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnexpectedNullPointer,
		Type:   typ,
		Detail: "null pointer in non-nullable field",
	}
}

// UnexpectedInvalidHandle creates an error for an invalid handle in a
// non-nullable slot.
func UnexpectedInvalidHandle(phase Phase, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnexpectedInvalidHandle,
		Type:   typ,
		Detail: "invalid handle in non-nullable field",
	}
}

// UnexpectedNullUnion creates an error for a null union in a non-nullable
// slot.
func UnexpectedNullUnion(phase Phase, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnexpectedNullUnion,
		Type:   typ,
		Detail: "null union in non-nullable field",
	}
}

// IllegalHandle creates an error for a handle index claimed more than once.
func IllegalHandle(index int32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindIllegalHandle,
		Detail: fmt.Sprintf("handle %d already claimed", index),
		Value:  index,
	}
}

// UnexpectedStructHeader creates a struct header validation error.
func UnexpectedStructHeader(typ string, size, version uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedStructHeader,
		Type:   typ,
		Detail: fmt.Sprintf("version %d with %d bytes", version, size),
	}
}

// UnexpectedArrayHeader creates an array header validation error.
func UnexpectedArrayHeader(typ string, detail string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedArrayHeader,
		Type:   typ,
		Detail: detail,
	}
}

// DifferentSizedArraysInMap creates an error for a map whose key and value
// arrays disagree in length.
func DifferentSizedArraysInMap(typ string, keys, values uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDifferentSizedArraysInMap,
		Type:   typ,
		Detail: fmt.Sprintf("%d keys, %d values", keys, values),
	}
}

// RecursionLimitExceeded creates a nesting depth error.
func RecursionLimitExceeded(limit int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindRecursionLimitExceeded,
		Detail: fmt.Sprintf("nesting deeper than %d", limit),
		Value:  limit,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// AllocationFailed creates an error for an encode buffer that is too small.
func AllocationFailed(phase Phase, size, available uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to claim %d bytes (%d available)", size, available),
	}
}

// InvalidDiscriminant creates an invalid tag error for unions
func InvalidDiscriminant(phase Phase, typ string, tag uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Type:   typ,
		Detail: fmt.Sprintf("unknown tag %d", tag),
		Value:  tag,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, typ string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		Type:   typ,
		Detail: "nil pointer",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Type:   targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Type:   enumType,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// UnsupportedVersion creates an error for an interface or struct version
// that cannot be read or written.
func UnsupportedVersion(phase Phase, typ string, version uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedVersion,
		Type:   typ,
		Detail: fmt.Sprintf("version %d not supported", version),
		Value:  version,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, name any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, name),
		Value:  name,
	}
}
