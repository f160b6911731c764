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
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// submissionValidate is the validator instance for submissions.
// Initialized in init() with custom validators.
var submissionValidate *validator.Validate

func init() {
	submissionValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so FieldError.Field matches the wire format.
	submissionValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = submissionValidate.RegisterValidation("nonblank", validateNonBlank)
	_ = submissionValidate.RegisterValidation("maxrunes", validateMaxRunes)
	_ = submissionValidate.RegisterValidation("category", validateCategory)
}

// validateNonBlank rejects empty and whitespace-only strings.
func validateNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateMaxRunes enforces a character (not byte) limit.
//
// # Description
//
// Limits are stated in characters, so multi-byte text is counted by rune.
// The parameter is the limit, e.g. `maxrunes=2000`.
//
// # Inputs
//
//   - fl: Validator field level containing the string to validate
//
// # Outputs
//
//   - bool: true if the rune count is within the limit
func validateMaxRunes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(fl.Field().String()) <= limit
}

// validateCategory requires membership in the taxonomy.
func validateCategory(fl validator.FieldLevel) bool {
	return taxonomy.IsValid(fl.Field().String())
}

// Validate checks every field of the submission.
//
// # Description
//
// All violations are collected, not just the first, so a form can mark every
// offending field at once.
//
// # Outputs
//
//   - error: nil, or a *ValidationError listing each invalid field.
//
// # Examples
//
//	if err := sub.Validate(); err != nil {
//	    var verr *feedback.ValidationError
//	    errors.As(err, &verr)
//	}
func (s Submission) Validate() error {
	err := submissionValidate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: "submission", Rule: err.Error()}}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if rule == "nonblank" {
			rule = "required"
		}
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Rule:  rule,
			Limit: fe.Param(),
		})
	}
	return &ValidationError{Fields: fields}
}
