// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yaowubarbara/ragtalk/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan)

	// LabelStyle is used for left-column labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(20)

	// MutedStyle is used for hints, statistics and passage excerpts
	MutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// ErrorStyle is used for error messages and failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// WarningStyle is used for warnings and cancelled replies
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// personaStyle colors a persona name with its accent.
func personaStyle(personaID string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.PaletteFor(personaID).Primary)
}
