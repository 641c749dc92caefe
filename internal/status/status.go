/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package status

import (
	"errors"
	"fmt"
)

// Reason is the stable discriminator string callers branch on.
// These values are part of the tool protocol and must not change.
type Reason string

const (
	InvalidRequest      Reason = "invalid_request"
	ValidationError     Reason = "validation_error"
	NotFound            Reason = "not_found"
	AmbiguousIdentifier Reason = "ambiguous_identifier"
	TargetMismatch      Reason = "target_mismatch"
	StaleState          Reason = "stale_state"
	InternalError       Reason = "internal_error"
	NoActiveDesigner    Reason = "no_active_designer"
	NoActiveConfig      Reason = "no_active_config"
)

// Error is a typed failure produced at the point of detection and carried
// unchanged to the tool façade, which serializes Reason verbatim.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return string(e.Reason) + ": " + e.Message
}

// New creates a typed error with the given reason and message.
func New(reason Reason, message string) *Error {
	return &Error{Reason: reason, Message: message}
}

// Errorf creates a typed error with a formatted message.
func Errorf(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason from an error chain. Unknown errors map to
// internal_error so nothing leaks past the façade untyped.
func ReasonOf(err error) Reason {
	var se *Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return InternalError
}

// MessageOf extracts the human-readable message from an error chain,
// falling back to err.Error() for untyped errors.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
