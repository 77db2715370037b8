// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme. They match the ui.theme config values.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Persona the accent colors come from
	Palette PersonaPalette

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	GreetingBubble  lipgloss.Style
	Pending         lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// CITATION AND STATISTICS STYLES
	// ==========================================================================

	CitationHeader lipgloss.Style
	CitationMarker lipgloss.Style
	CitationSource lipgloss.Style
	CitationText   lipgloss.Style
	Stats          lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	ErrorText    lipgloss.Style
	WarningText  lipgloss.Style
	StatusBar    lipgloss.Style
	StatusState  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// INPUT STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Spinner        lipgloss.Style
}

// NewTheme creates a theme for the given mode and persona. Mode "auto"
// asks the terminal for its background.
func NewTheme(mode, personaID string) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       resolveDark(mode),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		Palette:      PaletteFor(personaID),
	}
	lipgloss.SetHasDarkBackground(t.IsDark)

	t.initStyles()
	return t
}

func resolveDark(mode string) bool {
	switch mode {
	case ModeDark:
		return true
	case ModeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// SetPersona switches the accent colors to another persona.
func (t *Theme) SetPersona(personaID string) {
	t.Palette = PaletteFor(personaID)
	t.initStyles()
}

// SetMode switches between dark, light and detected backgrounds.
func (t *Theme) SetMode(mode string) {
	t.IsDark = resolveDark(mode)
	lipgloss.SetHasDarkBackground(t.IsDark)
	t.initStyles()
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return ModeDark
	}
	return ModeLight
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	primary := t.Palette.Primary
	secondary := t.Palette.Secondary

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(primary).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(primary)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(secondary).
		Italic(true)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(UserBubbleBorder)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(primary)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(primary).
		Padding(0, 1).
		MarginRight(4)

	t.GreetingBubble = t.AssistantBubble.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(secondary).
		Italic(true)

	t.Pending = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Citations
	t.CitationHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.CitationMarker = lipgloss.NewStyle().
		Foreground(secondary).
		Bold(true)

	t.CitationSource = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.CitationText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Stats = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status
	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WarningText = lipgloss.NewStyle().
		Foreground(Amber)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusState = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(secondary)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// BubbleWidth is the width message bubbles wrap at.
func (t *Theme) BubbleWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-2, 20)
	case LayoutMedium:
		return t.Width - 8
	default:
		return min(t.Width-12, 100)
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
