// Package errors provides structured error types for the Mojom bindings.
//
// Errors are categorized by Phase (where the error occurred) and Kind (the
// validation failure). Kinds mirror the Mojo validation error taxonomy so a
// failure can be reported to the peer by name. The Error type carries the
// field path, the Mojom type name and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnexpectedArrayHeader).
//		Path("items").
//		Type("array<int32>").
//		Detail("count 4 does not fit 24 bytes").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.IllegalPointer(offset, "misaligned")
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// A target without a phase matches any error of its kind. ErrShouldWait
// and ErrClosed are ready-made targets for transport results:
//
//	if errors.Is(err, &mojomerrors.Error{Kind: mojomerrors.KindIllegalPointer}) { ... }
//	if errors.Is(err, mojomerrors.ErrShouldWait) { ... }
package errors
