// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package feedback

import (
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Sentinels
// -----------------------------------------------------------------------------

var (
	// ErrValidation matches any *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrTransport matches any *TransportError via errors.Is.
	ErrTransport = errors.New("transport failure")

	// ErrGeneration matches any *GenerationError via errors.Is.
	ErrGeneration = errors.New("insight generation failed")
)

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// FieldError describes one invalid submission field.
type FieldError struct {
	// Field is the JSON name of the field (e.g., "question").
	Field string `json:"field"`

	// Rule is the violated rule: "required", "maxrunes" or "category".
	Rule string `json:"rule"`

	// Limit is the rule parameter, if any (e.g., "2000").
	Limit string `json:"limit,omitempty"`
}

// Message returns a user-facing sentence for the field error.
func (f FieldError) Message() string {
	switch f.Rule {
	case "required":
		return fmt.Sprintf("%s is required", f.Field)
	case "maxrunes":
		return fmt.Sprintf("%s must be at most %s characters", f.Field, f.Limit)
	case "category":
		return fmt.Sprintf("%s must be one of the known categories", f.Field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", f.Field, f.Rule)
	}
}

// ValidationError is returned before any network call when a submission
// violates a field constraint.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message()
	}
	return "invalid submission: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// TransportError
// -----------------------------------------------------------------------------

// TransportError is a network or HTTP failure on any service call.
type TransportError struct {
	// Op names the client operation ("list", "create", "summary", "insights").
	Op string

	// Method and URL identify the request.
	Method string
	URL    string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Timeout is true when the call hit its deadline.
	Timeout bool

	// Body holds the start of a non-success response body, for diagnostics.
	Body string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s", e.Op, e.Method, e.URL)
	switch {
	case e.Timeout:
		b.WriteString(": timed out")
	case e.StatusCode != 0:
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransport) true.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// -----------------------------------------------------------------------------
// GenerationError
// -----------------------------------------------------------------------------

// GenerationError means the insight service answered but reported that it
// could not produce a narrative.
type GenerationError struct {
	Scope   Scope
	Message string
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("insight generation failed for scope %q", e.Scope)
	}
	return fmt.Sprintf("insight generation failed for scope %q: %s", e.Scope, e.Message)
}

// Is makes errors.Is(err, ErrGeneration) true.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsTransport reports whether err is or wraps a *TransportError.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }

// IsGeneration reports whether err is or wraps a *GenerationError.
func IsGeneration(err error) bool { return errors.Is(err, ErrGeneration) }
