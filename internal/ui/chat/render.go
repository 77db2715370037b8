// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/ui/styles"
	"github.com/yaowubarbara/ragtalk/internal/util"
)

// citationPreviewWidth bounds the passage excerpt under a footnote.
const citationPreviewWidth = 72

// markdown renders reply text with glamour. Finished turns are cached by
// turn ID; a turn that is still streaming is re-rendered on every call.
type markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]renderedTurn
}

type renderedTurn struct {
	content string
	out     string
}

func newMarkdown() *markdown {
	return &markdown{cache: make(map[string]renderedTurn)}
}

// configure rebuilds the renderer when the style or wrap width changed.
func (md *markdown) configure(style string, width int) {
	if md.renderer != nil && style == md.style && width == md.width {
		return
	}
	md.style = style
	md.width = width
	md.cache = make(map[string]renderedTurn)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		md.renderer = nil
		return
	}
	md.renderer = r
}

// render returns the rendered form of content, falling back to wrapped
// plain text when glamour is unavailable or fails.
func (md *markdown) render(turn model.Turn) string {
	if cached, ok := md.cache[turn.ID]; ok && cached.content == turn.Content {
		return cached.out
	}
	if md.renderer == nil {
		return wrapPlain(turn.Content, md.width)
	}
	out, err := md.renderer.Render(turn.Content)
	if err != nil {
		return wrapPlain(turn.Content, md.width)
	}
	out = strings.Trim(out, "\n")
	if !turn.Streaming {
		md.cache[turn.ID] = renderedTurn{content: turn.Content, out: out}
	}
	return out
}

// forget drops cached output for turns no longer in the transcript.
func (md *markdown) forget(turns []model.Turn) {
	if len(md.cache) == 0 {
		return
	}
	live := make(map[string]struct{}, len(turns))
	for _, t := range turns {
		live[t.ID] = struct{}{}
	}
	for id := range md.cache {
		if _, ok := live[id]; !ok {
			delete(md.cache, id)
		}
	}
}

func wrapPlain(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// renderCitations lists the sources the reply refers to. Replies that
// cite nothing show no footnotes.
func renderCitations(theme *styles.Theme, turn model.Turn) string {
	refs := turn.ReferencedCitations()
	if len(refs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.CitationHeader.Render("Sources"))
	for _, c := range refs {
		b.WriteString("\n")
		b.WriteString(theme.CitationMarker.Render(c.Marker()))
		b.WriteString(" ")
		b.WriteString(theme.CitationSource.Render(citationLabel(c)))
		if c.Text != "" {
			b.WriteString("\n    ")
			b.WriteString(theme.CitationText.Render(util.Preview(c.Text, citationPreviewWidth)))
		}
	}
	return b.String()
}

func citationLabel(c model.Citation) string {
	if c.DocType == "" {
		return c.Source
	}
	return fmt.Sprintf("%s (%s)", c.Source, c.DocType)
}
