// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// PersonaPalette is the accent pair a persona is drawn with.
type PersonaPalette struct {
	ID        string
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Tagline   string
}

// DefaultPersonaID names the fallback palette.
const DefaultPersonaID = "default"

var defaultPalette = PersonaPalette{
	ID:        DefaultPersonaID,
	Primary:   Indigo,
	Secondary: lipgloss.AdaptiveColor{Light: "#6366F1", Dark: "#A5B4FC"},
	Tagline:   "Wisdom & Knowledge",
}

// The dark variants are lifted so they stay readable on dark backgrounds.
var personaPalettes = map[string]PersonaPalette{
	"charlie-munger": {
		Primary:   lipgloss.AdaptiveColor{Light: "#1E3A5F", Dark: "#7FA7D9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#A67C1E", Dark: "#D4A84B"},
		Tagline:   "Mental Models & Rational Thinking",
	},
	"benjamin-franklin": {
		Primary:   lipgloss.AdaptiveColor{Light: "#2D6A4F", Dark: "#74C69D"},
		Secondary: lipgloss.AdaptiveColor{Light: "#40916C", Dark: "#95D5B2"},
		Tagline:   "Innovation & Self-Improvement",
	},
	"marcus-aurelius": {
		Primary:   lipgloss.AdaptiveColor{Light: "#6B21A8", Dark: "#C084FC"},
		Secondary: lipgloss.AdaptiveColor{Light: "#7E22CE", Dark: "#A855F7"},
		Tagline:   "Stoic Philosophy & Leadership",
	},
	"warren-buffett": {
		Primary:   lipgloss.AdaptiveColor{Light: "#166534", Dark: "#4ADE80"},
		Secondary: lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#CA8A04"},
		Tagline:   "Value Investing & Business Wisdom",
	},
	"confucius": {
		Primary:   lipgloss.AdaptiveColor{Light: "#991B1B", Dark: "#F87171"},
		Secondary: lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#CA8A04"},
		Tagline:   "Ethics & Harmonious Living",
	},
	"naval-ravikant": {
		Primary:   lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		Secondary: lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"},
		Tagline:   "Wealth & Happiness Principles",
	},
}

// PaletteFor returns the palette for a persona id, or the default palette
// for unknown ids.
func PaletteFor(personaID string) PersonaPalette {
	p, ok := personaPalettes[personaID]
	if !ok {
		return defaultPalette
	}
	p.ID = personaID
	return p
}

// ThemedPersonas lists the persona ids that have their own palette.
func ThemedPersonas() []string {
	ids := make([]string, 0, len(personaPalettes))
	for id := range personaPalettes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
