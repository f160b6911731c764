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
	"context"
	"fmt"
	"io"

	"github.com/AleutianAI/AleutianFeedback/pkg/feedback"
	"github.com/AleutianAI/AleutianFeedback/pkg/reveal"
	"github.com/AleutianAI/AleutianFeedback/pkg/ux"
	"github.com/spf13/cobra"
)

func runInsights(cmd *cobra.Command, args []string) error {
	scope, err := resolveScope()
	if err != nil {
		return err
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	p := ux.NewPrinter(cmd.OutOrStdout())
	var result feedback.InsightResult
	err = p.WithSpinner(fmt.Sprintf("Generating insight for %s", scope.Label()), func() error {
		records, err := c.Records.List(cmd.Context(), cfg.Dashboard.ListLimit)
		if err != nil {
			return err
		}
		result, err = c.Insights.Generate(cmd.Context(), scope, records)
		return err
	})
	if err != nil {
		if feedback.IsGeneration(err) {
			ux.NewPrinter(cmd.ErrOrStderr()).Warning("The insight service could not produce a summary.")
		}
		return err
	}

	p.Title(fmt.Sprintf("Insight, %s", scope.Label()))
	if !p.Styled() {
		p.Println(result.Summary)
		return nil
	}
	typewrite(cmd.Context(), p.Writer(), result.Summary)
	return nil
}

// typewrite reveals text on w one character at a time, finishing early
// with the full text if ctx is cancelled.
func typewrite(ctx context.Context, w io.Writer, text string) {
	r := reveal.New(cfg.Dashboard.RevealInterval, reveal.WriterSink(w))
	r.Reveal(text)
	select {
	case <-r.Done():
	case <-ctx.Done():
		r.Stop()
		_, _ = io.WriteString(w, text[len(r.Current()):])
	}
	_, _ = io.WriteString(w, "\n")
}
