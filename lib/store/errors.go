package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrCode classifies every failure a store operation can report.
type ErrCode uint8

const (
	CodeUnknown             ErrCode = iota // 0: zero value, never returned
	CodeOpenFailed                         // engine could not initialize at the path
	CodeAlreadyClosed                      // Close called on an already closed store (benign)
	CodeCloseFailed                        // engine teardown reported an error
	CodeStoreClosed                        // operation issued on a closed store
	CodeInvalidColumnFamily                // name outside the fixed column family set
	CodeInvalidOperation                   // malformed batch operation
	CodeGetFailed                          // engine-level read error
	CodePutFailed                          // engine-level write error
	CodeDeleteFailed                       // engine-level delete error
	CodeBatchFailed                        // engine-level batch commit error
)

func (c ErrCode) String() string {
	switch c {
	case CodeOpenFailed:
		return "OpenFailed"
	case CodeAlreadyClosed:
		return "AlreadyClosed"
	case CodeCloseFailed:
		return "CloseFailed"
	case CodeStoreClosed:
		return "StoreClosed"
	case CodeInvalidColumnFamily:
		return "InvalidColumnFamily"
	case CodeInvalidOperation:
		return "InvalidOperation"
	case CodeGetFailed:
		return "GetFailed"
	case CodePutFailed:
		return "PutFailed"
	case CodeDeleteFailed:
		return "DeleteFailed"
	case CodeBatchFailed:
		return "BatchFailed"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the typed failure result for store operations. Every failure a
// store returns is a *Error; callers branch on Code rather than on message
// text. Engine-level causes are wrapped and reachable through Unwrap.
type Error struct {
	Code   ErrCode // classification of the failure
	Family string  // offending name, set for CodeInvalidColumnFamily
	Op     string  // offending operation tag, set for CodeInvalidOperation when known
	Err    error   // wrapped engine error, set for engine-level failures
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Family != "":
		return fmt.Sprintf("store: %s: %q", e.Code, e.Family)
	case e.Op != "":
		return fmt.Sprintf("store: %s: %q", e.Code, e.Op)
	case e.Err != nil:
		return fmt.Sprintf("store: %s: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("store: %s", e.Code)
	}
}

// Unwrap exposes the engine-level cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrCode carried by err, or CodeUnknown if err is nil or
// not a store error.
func CodeOf(err error) ErrCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeUnknown
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

func errInvalidFamily(name string) *Error {
	return &Error{Code: CodeInvalidColumnFamily, Family: name}
}

func errStoreClosed() *Error {
	return &Error{Code: CodeStoreClosed}
}

func errEngine(code ErrCode, err error) *Error {
	return &Error{Code: code, Err: err}
}
