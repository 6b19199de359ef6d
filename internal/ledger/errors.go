package ledger

import (
	"errors"
	"fmt"
)

// Kind categorizes ledger errors.
type Kind string

const (
	// KindInvalidParam indicates missing, malformed or oversized input,
	// or use of a destroyed ledger.
	KindInvalidParam Kind = "INVALID_PARAM"

	// KindNotFound indicates an unknown block number.
	KindNotFound Kind = "NOT_FOUND"

	// KindVerification indicates a merkle, linkage, sequence or signature mismatch.
	KindVerification Kind = "VERIFICATION"

	// KindIO indicates a file open, read or write failure, or an unreadable container.
	KindIO Kind = "IO"

	// KindStorage indicates a failure of the backing journal.
	KindStorage Kind = "STORAGE"
)

// Error is the error type returned by every ledger operation.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Op names the failing operation ("append", "import", ...).
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// WrapError creates an Error of the given kind around an underlying cause.
func WrapError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsInvalidParam reports whether err is an invalid-parameter error.
func IsInvalidParam(err error) bool { return KindOf(err) == KindInvalidParam }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsVerification reports whether err is a verification error.
func IsVerification(err error) bool { return KindOf(err) == KindVerification }

// IsIO reports whether err is an I/O error.
func IsIO(err error) bool { return KindOf(err) == KindIO }

// IsStorage reports whether err is a storage error.
func IsStorage(err error) bool { return KindOf(err) == KindStorage }

// Verification failure messages.
const (
	MsgMerkleMismatch  = "merkle mismatch"
	MsgLinkageMismatch = "chain linkage mismatch"
	MsgMissingParent   = "missing parent"
	MsgSequence        = "block does not extend tip"
	MsgUnsigned        = "unsigned block"
	MsgSignature       = "signature mismatch"
)

func destroyedError(op string) *Error {
	return NewError(KindInvalidParam, op, "ledger destroyed")
}
