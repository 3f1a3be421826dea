// Package apperr defines the error taxonomy shared by all services.
// Services return *Error values; transport code maps them to gRPC codes
// via GRPCStatus. Authorization predicates never return errors; the
// operation that evaluated them raises AccessDenied itself.
package apperr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies an Error. The zero value is reserved for "not an app error".
type Kind int

const (
	// KindMissingIdentity means the caller's claims could not establish an identity.
	KindMissingIdentity Kind = iota + 1
	// KindAccessDenied means a policy predicate evaluated to false for the caller.
	KindAccessDenied
	// KindNotFound means a referenced organisation, membership, invitation, or user does not exist.
	KindNotFound
	// KindConflict means the request collides with existing state (e.g. invitee already a member).
	KindConflict
	// KindInvalidState means the operation is not valid for the entity's current status.
	KindInvalidState
	// KindInvalidArgument means the caller violated a structural business rule.
	KindInvalidArgument
)

// Error is a classified application error with a human-readable reason.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// MissingIdentity returns an Error indicating the caller could not be identified.
func MissingIdentity(msg string) *Error { return &Error{Kind: KindMissingIdentity, Message: msg} }

// AccessDenied returns an Error indicating a policy check failed for the caller.
func AccessDenied(msg string) *Error { return &Error{Kind: KindAccessDenied, Message: msg} }

// NotFound returns an Error for a missing entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns an Error for a collision with existing state.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// InvalidState returns an Error for an operation invalid in the entity's current status.
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }

// InvalidArgument returns an Error for a violated structural business rule.
func InvalidArgument(msg string) *Error { return &Error{Kind: KindInvalidArgument, Message: msg} }

// KindOf returns the Kind of err if it is (or wraps) an *Error, otherwise 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// GRPCStatus translates err into a gRPC status error. MissingIdentity maps to
// Unauthenticated and AccessDenied to PermissionDenied; both surface as
// "forbidden" to callers. Unclassified errors become Internal with a generic
// message so storage details are never exposed.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, "internal error")
	}
	switch e.Kind {
	case KindMissingIdentity:
		return status.Error(codes.Unauthenticated, e.Message)
	case KindAccessDenied:
		return status.Error(codes.PermissionDenied, e.Message)
	case KindNotFound:
		return status.Error(codes.NotFound, e.Message)
	case KindConflict:
		return status.Error(codes.AlreadyExists, e.Message)
	case KindInvalidState:
		return status.Error(codes.FailedPrecondition, e.Message)
	case KindInvalidArgument:
		return status.Error(codes.InvalidArgument, e.Message)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
