// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/ui/styles"
	"github.com/yaowubarbara/ragtalk/internal/util"
)

// excerptWidth bounds the passage preview under each source.
const excerptWidth = 76

// writeCitations prints numbered sources, one per line, with a short
// excerpt of the passage.
func writeCitations(w io.Writer, cs []model.Citation) {
	if len(cs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Sources"))
	for _, c := range cs {
		label := c.Source
		if c.DocType != "" {
			label += " (" + c.DocType + ")"
		}
		fmt.Fprintf(w, "  %s %s\n", c.Marker(), label)
		if c.Text != "" {
			fmt.Fprintf(w, "      %s\n", MutedStyle.Render(util.Preview(c.Text, excerptWidth)))
		}
	}
}

// writeStats prints the one-line statistics summary of a reply.
func writeStats(w io.Writer, stats *model.Statistics) {
	if stats == nil {
		return
	}
	fmt.Fprintln(w, MutedStyle.Render(stats.Format()))
}

// renderMarkdown renders content for the terminal. It returns content
// unchanged when the renderer cannot be built or fails.
func renderMarkdown(content, theme string, width int) string {
	style := styles.NewTheme(theme, "").GlamourStyle()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}
