// Package cliui provides reusable terminal UI helpers (trace styling,
// markdown rendering) for chainstream CLI commands.
package cliui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	// Trace styles color the live event stream as it arrives: reasoning in
	// muted gray, tool activity in cyan, evidence in green, errors in red.
	ThoughtStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	ActionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	ObservationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	ErrorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	LabelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true)
)

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
