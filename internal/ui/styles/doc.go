// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ragtalk TUI.

All colors use Lip Gloss AdaptiveColor, so they follow the dark or light
background the Theme settles on.

# Persona palettes

Every persona the chat service knows about is drawn with its own accent
pair. Unknown ids fall back to the default indigo palette:

	theme := styles.NewTheme(cfg.UI.Theme, "marcus-aurelius")
	header := theme.HeaderTitle.Render("Marcus Aurelius")

# Markdown

Assistant turns are rendered with glamour. GlamourStyle picks the standard
style that matches the theme:

	r, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.GlamourStyle()))
*/
package styles
