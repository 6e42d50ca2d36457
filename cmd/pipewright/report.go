// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pipewright/pipewright-core/checks"
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	summaryStyle = lipgloss.NewStyle().Faint(true)
)

// glyph returns the colorized status marker for a finding.
func glyph(status checks.Status) string {
	switch status {
	case checks.StatusPass:
		return passStyle.Render("✓")
	case checks.StatusWarn:
		return warnStyle.Render("⚠")
	case checks.StatusFail:
		return failStyle.Render("✗")
	default:
		return "?"
	}
}

// renderReport writes a human-readable validation report.
func renderReport(w io.Writer, report *checks.Report) {
	fmt.Fprintln(w, headerStyle.Render(
		fmt.Sprintf("%s (%s)", report.ConfigPath, report.PlatformName)))

	for _, f := range report.Findings {
		fmt.Fprintf(w, "  %s %s\n", glyph(f.Status), f.Message)
	}

	fmt.Fprintln(w, summaryStyle.Render(
		fmt.Sprintf("%d passed, %d warnings, %d failed",
			report.Passed(), report.Warnings(), report.Failures())))
}
