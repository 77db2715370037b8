// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestNewTheme_ExplicitModes(t *testing.T) {
	dark := NewTheme(ModeDark, "confucius")
	if !dark.IsDark {
		t.Error("dark mode should set IsDark")
	}
	light := NewTheme(ModeLight, "confucius")
	if light.IsDark {
		t.Error("light mode should clear IsDark")
	}
}

func TestTheme_SetMode(t *testing.T) {
	theme := NewTheme(ModeLight, "")
	theme.SetMode(ModeDark)
	if !theme.IsDark {
		t.Error("SetMode(dark) should set IsDark")
	}
}

func TestGlamourStyle(t *testing.T) {
	theme := NewTheme(ModeDark, "")

	theme.ColorProfile = termenv.TrueColor
	if got := theme.GlamourStyle(); got != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", got)
	}

	theme.IsDark = false
	if got := theme.GlamourStyle(); got != "light" {
		t.Errorf("GlamourStyle() = %q, want light", got)
	}

	theme.ColorProfile = termenv.Ascii
	if got := theme.GlamourStyle(); got != "notty" {
		t.Errorf("GlamourStyle() = %q, want notty", got)
	}
}

func TestPaletteFor(t *testing.T) {
	tests := []struct {
		id      string
		wantID  string
		tagline string
	}{
		{"charlie-munger", "charlie-munger", "Mental Models & Rational Thinking"},
		{"naval-ravikant", "naval-ravikant", "Wealth & Happiness Principles"},
		{"socrates", DefaultPersonaID, "Wisdom & Knowledge"},
		{"", DefaultPersonaID, "Wisdom & Knowledge"},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			p := PaletteFor(tc.id)
			if p.ID != tc.wantID {
				t.Errorf("ID = %q, want %q", p.ID, tc.wantID)
			}
			if p.Tagline != tc.tagline {
				t.Errorf("Tagline = %q, want %q", p.Tagline, tc.tagline)
			}
		})
	}
}

func TestThemedPersonas_Sorted(t *testing.T) {
	ids := ThemedPersonas()
	if len(ids) != 6 {
		t.Fatalf("got %d themed personas, want 6", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("ids not sorted: %v", ids)
		}
	}
}

func TestTheme_SetPersona(t *testing.T) {
	theme := NewTheme(ModeDark, "confucius")
	theme.SetPersona("warren-buffett")
	if theme.Palette.ID != "warren-buffett" {
		t.Errorf("Palette.ID = %q", theme.Palette.ID)
	}
	if theme.AssistantLabel.GetForeground() != theme.Palette.Primary {
		t.Error("assistant label should use the persona primary color")
	}
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme(ModeDark, "")
	for _, tc := range tests {
		theme.SetSize(tc.width, 40)
		if got := theme.GetLayoutMode(); got != tc.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tc.width, got, tc.want)
		}
	}
}

func TestBubbleWidth(t *testing.T) {
	theme := NewTheme(ModeDark, "")

	theme.SetSize(30, 20)
	if got := theme.BubbleWidth(); got != 28 {
		t.Errorf("narrow BubbleWidth() = %d, want 28", got)
	}
	theme.SetSize(10, 20)
	if got := theme.BubbleWidth(); got != 20 {
		t.Errorf("tiny BubbleWidth() = %d, want 20", got)
	}
	theme.SetSize(80, 20)
	if got := theme.BubbleWidth(); got != 72 {
		t.Errorf("medium BubbleWidth() = %d, want 72", got)
	}
	theme.SetSize(300, 20)
	if got := theme.BubbleWidth(); got != 100 {
		t.Errorf("wide BubbleWidth() = %d, want 100", got)
	}
}

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
		marker string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.render("saved")
			if !strings.Contains(out, tc.marker) || !strings.Contains(out, "saved") {
				t.Errorf("%s render = %q", tc.name, out)
			}
		})
	}
}

func TestSpinnerConfig(t *testing.T) {
	s := LineSpinner.Spinner()
	if len(s.Frames) != 4 {
		t.Errorf("frames = %d", len(s.Frames))
	}
	if s.FPS != LineSpinner.Duration() {
		t.Errorf("FPS = %v", s.FPS)
	}
	if (SpinnerConfig{}).Duration() <= 0 {
		t.Error("zero FPS should still yield a positive duration")
	}
}
