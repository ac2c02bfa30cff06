// errors.go: structured error handling for embedis storage engine operations
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes
// for all engine operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package embedis

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for embedis engine operations, grouped per the engine's
// error taxonomy (kinds).
const (
	// WrongType: operation applied to a key of incompatible type.
	ErrCodeWrongType errors.ErrorCode = "ENGINE_WRONG_TYPE"

	// NotFound: explicit lookup that distinguishes absent from null.
	ErrCodeNotFound errors.ErrorCode = "ENGINE_NOT_FOUND"

	// ParseError: response/value conversion failed, or a numeric op saw
	// non-numeric content.
	ErrCodeParseError errors.ErrorCode = "ENGINE_PARSE_ERROR"

	// InvalidArgument: malformed range, bad glob, ZRANGEBYSCORE min>max,
	// negative TTL, out-of-range bit offset, etc.
	ErrCodeInvalidArgument errors.ErrorCode = "ENGINE_INVALID_ARGUMENT"

	// OutOfMemory: noeviction budget exceeded.
	ErrCodeOutOfMemory errors.ErrorCode = "ENGINE_OUT_OF_MEMORY"

	// NotSupported: operation explicitly excluded from this engine.
	ErrCodeNotSupported errors.ErrorCode = "ENGINE_NOT_SUPPORTED"
)

const (
	msgWrongType       = "operation applied to key of incompatible type"
	msgNotFound        = "key not found"
	msgParseError      = "failed to parse value"
	msgInvalidArgument = "invalid argument"
	msgOutOfMemory     = "maxmemory exceeded under noeviction policy"
	msgNotSupported    = "operation not supported by this engine"
)

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewErrWrongType creates an error for a type-mismatched operation.
// WrongType leaves engine state unchanged; never retryable.
func NewErrWrongType(key, want, got string) error {
	return errors.NewWithContext(ErrCodeWrongType, msgWrongType, map[string]interface{}{
		"key":      key,
		"expected": want,
		"actual":   got,
	})
}

// NewErrNotFound creates an error for an explicit lookup that found nothing.
func NewErrNotFound(key string) error {
	return errors.NewWithField(ErrCodeNotFound, msgNotFound, "key", key)
}

// NewErrParseError creates an error for a failed value conversion or a
// non-numeric INCRBY/DECRBY target.
func NewErrParseError(reason string) error {
	return errors.NewWithField(ErrCodeParseError, msgParseError, "reason", reason)
}

// NewErrInvalidArgument creates an error for a malformed argument.
func NewErrInvalidArgument(reason string) error {
	return errors.NewWithField(ErrCodeInvalidArgument, msgInvalidArgument, "reason", reason)
}

// NewErrOutOfMemory creates an error for a write rejected under noeviction.
// Leaves engine state unchanged; retryable once some memory is freed.
func NewErrOutOfMemory(budget, projected int64) error {
	return errors.NewWithContext(ErrCodeOutOfMemory, msgOutOfMemory, map[string]interface{}{
		"budget":    budget,
		"projected": projected,
	}).AsRetryable()
}

// NewErrNotSupported creates an error for an operation this engine excludes
// (blocking list pops, MULTI/transactions, scripting, pub/sub, ...).
func NewErrNotSupported(operation string) error {
	return errors.NewWithField(ErrCodeNotSupported, msgNotSupported, "operation", operation)
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsWrongType reports whether err is a WrongType error.
func IsWrongType(err error) bool { return errors.HasCode(err, ErrCodeWrongType) }

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return errors.HasCode(err, ErrCodeNotFound) }

// IsParseError reports whether err is a ParseError.
func IsParseError(err error) bool { return errors.HasCode(err, ErrCodeParseError) }

// IsInvalidArgument reports whether err is an InvalidArgument error.
func IsInvalidArgument(err error) bool { return errors.HasCode(err, ErrCodeInvalidArgument) }

// IsOutOfMemory reports whether err is an OutOfMemory error.
func IsOutOfMemory(err error) bool { return errors.HasCode(err, ErrCodeOutOfMemory) }

// IsNotSupported reports whether err is a NotSupported error.
func IsNotSupported(err error) bool { return errors.HasCode(err, ErrCodeNotSupported) }

// IsRetryable reports whether the error can plausibly succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from err, or "" if err carries none.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts structured context from err, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var engineErr *errors.Error
	if goerrors.As(err, &engineErr) {
		return engineErr.Context
	}
	return nil
}
