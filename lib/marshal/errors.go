package marshal

import "golang.org/x/xerrors"

var (
	// ErrMaxDepth is returned when a value graph is nested deeper than Options.MaxDepth,
	// usually because it contains a cycle
	ErrMaxDepth = xerrors.New("marshal: maximum depth exceeded")
	// ErrIndexOutOfRange is returned when a collection index does not fit the target
	ErrIndexOutOfRange = xerrors.New("marshal: index out of range")
	// ErrTypeMismatch is returned when a stored type name does not fit the declared type
	ErrTypeMismatch = xerrors.New("marshal: type mismatch")
	// ErrInvalidTarget is returned by DecodeInto for targets that are not non-nil pointers
	ErrInvalidTarget = xerrors.New("marshal: target must be a non-nil pointer")
)
