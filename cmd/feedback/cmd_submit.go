// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/taxonomy"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func runSubmit(cmd *cobra.Command, args []string) error {
	sub := feedback.Submission{
		Question:    submitQuestion,
		Response:    submitResponse,
		Improvement: submitImprovement,
		Category:    taxonomy.Category(submitCategory),
	}

	// Missing fields are asked for only when someone can answer; otherwise
	// validation below reports them.
	if incomplete(sub) && ux.IsInteractive() {
		if err := promptSubmission(&sub); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return errors.New("submission cancelled")
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	p := ux.NewPrinter(cmd.OutOrStdout())
	var record feedback.Record
	err = p.WithSpinner("Submitting feedback", func() error {
		record, err = c.Records.Create(cmd.Context(), sub)
		return err
	})
	if err != nil {
		printSubmitError(ux.NewPrinter(cmd.ErrOrStderr()), err)
		return err
	}

	if p.Styled() {
		p.Success(fmt.Sprintf("Feedback recorded as %s", record.ID))
	} else {
		p.Println(record.ID)
	}
	return nil
}

// incomplete reports whether any field still needs input.
func incomplete(sub feedback.Submission) bool {
	return strings.TrimSpace(sub.Question) == "" ||
		strings.TrimSpace(sub.Response) == "" ||
		strings.TrimSpace(sub.Improvement) == "" ||
		sub.Category == ""
}

// promptSubmission asks for every field, prefilled with what the flags
// gave. The category defaults to the first taxonomy entry and character
// limits are enforced while typing.
func promptSubmission(sub *feedback.Submission) error {
	category := string(sub.Category)
	if !taxonomy.IsValid(category) {
		category = string(taxonomy.Default())
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Issue category").
				Options(huh.NewOptions(taxonomy.Strings()...)...).
				Value(&category),
			huh.NewText().
				Title("Question").
				Description(fmt.Sprintf("What was asked (up to %d characters)", feedback.MaxQuestionChars)).
				CharLimit(feedback.MaxQuestionChars).
				Validate(required("question")).
				Value(&sub.Question),
			huh.NewText().
				Title("Response").
				Description(fmt.Sprintf("The answer that was given (up to %d characters)", feedback.MaxResponseChars)).
				CharLimit(feedback.MaxResponseChars).
				Validate(required("response")).
				Value(&sub.Response),
			huh.NewText().
				Title("Improvement").
				Description(fmt.Sprintf("How the answer should change (up to %d characters)", feedback.MaxImprovementChars)).
				CharLimit(feedback.MaxImprovementChars).
				Validate(required("improvement")).
				Value(&sub.Improvement),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return err
	}
	sub.Category = taxonomy.Category(category)
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// printSubmitError lists each invalid field, or the error itself.
func printSubmitError(p *ux.Printer, err error) {
	var verr *feedback.ValidationError
	if !errors.As(err, &verr) {
		p.Error(err.Error())
		return
	}
	p.Error("Feedback was not submitted:")
	for _, f := range verr.Fields {
		p.Printf("  %s %s\n", ux.IconBullet, f.Message())
	}
}
