// Package dberrors defines the error taxonomy shared by storage, catalog
// and executor code. Errors carry a Kind so callers can branch on the
// failure category without string matching, while still composing with
// juju/errors' Trace/Annotate/Cause chain.
package dberrors

import (
	"fmt"

	"github.com/juju/errors"
)

// Kind classifies a storage or catalog failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoRoom
	KindRowTooLarge
	KindUnknownColumn
	KindUnknownTable
	KindDuplicateTable
	KindDuplicateColumn
	KindDuplicateIndex
	KindUnsupportedType
	KindUnsupportedPredicate
	KindUnsupportedLiteral
	KindCannotDropSchema
	KindUnderlyingIO
	KindAlreadyExists
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNoRoom:
		return "NoRoom"
	case KindRowTooLarge:
		return "RowTooLarge"
	case KindUnknownColumn:
		return "UnknownColumn"
	case KindUnknownTable:
		return "UnknownTable"
	case KindDuplicateTable:
		return "DuplicateTable"
	case KindDuplicateColumn:
		return "DuplicateColumn"
	case KindDuplicateIndex:
		return "DuplicateIndex"
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindUnsupportedPredicate:
		return "UnsupportedPredicate"
	case KindUnsupportedLiteral:
		return "UnsupportedLiteral"
	case KindCannotDropSchema:
		return "CannotDropSchema"
	case KindUnderlyingIO:
		return "UnderlyingIo"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// kindError is the concrete error type every constructor below returns.
// It embeds a juju/errors-wrapped cause so Trace/Annotate/Cause continue
// to work up the call stack.
type kindError struct {
	kind Kind
	msg  string
	err  error
}

func (e *kindError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kindError) Unwrap() error { return e.err }

// Cause implements juju/errors' causer interface so errors.Cause(err)
// keeps working across this package's boundary.
func (e *kindError) Cause() error {
	if e.err != nil {
		return e.err
	}
	return e
}

func newKind(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapKind(kind Kind, err error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), err: errors.Trace(err)}
}

// KindOf reports the Kind of err, walking the Cause()/Unwrap() chain.
// Returns KindUnknown if err does not originate from this package.
func KindOf(err error) Kind {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			return ke.kind
		}
		cause := errors.Cause(err)
		if cause == err {
			break
		}
		err = cause
	}
	return KindUnknown
}

// Is reports whether err (or any error in its cause chain) has kind k.
func Is(err error, k Kind) bool { return KindOf(err) == k }

// Constructors, one per §7 kind.

func NoRoom(format string, args ...interface{}) error {
	return newKind(KindNoRoom, format, args...)
}

func RowTooLarge(format string, args ...interface{}) error {
	return newKind(KindRowTooLarge, format, args...)
}

func UnknownColumn(format string, args ...interface{}) error {
	return newKind(KindUnknownColumn, format, args...)
}

func UnknownTable(format string, args ...interface{}) error {
	return newKind(KindUnknownTable, format, args...)
}

func DuplicateTable(format string, args ...interface{}) error {
	return newKind(KindDuplicateTable, format, args...)
}

func DuplicateColumn(format string, args ...interface{}) error {
	return newKind(KindDuplicateColumn, format, args...)
}

func DuplicateIndex(format string, args ...interface{}) error {
	return newKind(KindDuplicateIndex, format, args...)
}

func UnsupportedType(format string, args ...interface{}) error {
	return newKind(KindUnsupportedType, format, args...)
}

func UnsupportedPredicate(format string, args ...interface{}) error {
	return newKind(KindUnsupportedPredicate, format, args...)
}

func UnsupportedLiteral(format string, args ...interface{}) error {
	return newKind(KindUnsupportedLiteral, format, args...)
}

func CannotDropSchema(format string, args ...interface{}) error {
	return newKind(KindCannotDropSchema, format, args...)
}

func AlreadyExists(format string, args ...interface{}) error {
	return newKind(KindAlreadyExists, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newKind(KindNotFound, format, args...)
}

// UnderlyingIO wraps an error raised by the record-store layer.
func UnderlyingIO(err error, format string, args ...interface{}) error {
	return wrapKind(KindUnderlyingIO, err, format, args...)
}
