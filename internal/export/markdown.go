// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/yaowubarbara/ragtalk/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations as a Markdown document.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export renders conv as Markdown with YAML frontmatter.
func (e *MarkdownExporter) Export(conv *Conversation) ([]byte, error) {
	if conv == nil || len(conv.Turns) == 0 {
		return nil, ErrEmpty
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "persona: %s\n", escapeYAML(conv.PersonaID))
	fmt.Fprintf(&sb, "messages: %d\n", len(conv.Turns))
	fmt.Fprintf(&sb, "exported: %s\n", conv.ExportedAt.Format(time.RFC3339))
	sb.WriteString("generator: ragtalk\n")
	sb.WriteString("---\n\n")

	fmt.Fprintf(&sb, "# Conversation with %s\n\n", escapeMarkdown(conv.PersonaID))

	for i, turn := range conv.Turns {
		label := turn.Role.DisplayName()
		if turn.Role == model.RoleAssistant {
			label = conv.PersonaID
		}
		if e.options.IncludeTimestamps && !turn.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, turn.Timestamp.Format("15:04:05"))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		content := strings.TrimSpace(turn.Content)
		if content == "" {
			content = "*(no reply)*"
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")

		if cited := turn.ReferencedCitations(); len(cited) > 0 {
			sb.WriteString(formatCitations(cited))
			sb.WriteString("\n")
		}

		if e.options.IncludeStats && turn.Stats != nil {
			if stats := formatStats(turn.Stats); stats != "" {
				sb.WriteString(stats)
				sb.WriteString("\n\n")
			}
		}

		if i < len(conv.Turns)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatCitations renders cited passages as a footnote block.
func formatCitations(cs []model.Citation) string {
	var sb strings.Builder
	sb.WriteString("**Sources**\n\n")
	for _, c := range cs {
		label := c.Source
		if c.DocType != "" {
			label += " (" + c.DocType + ")"
		}
		fmt.Fprintf(&sb, "%d. %s", c.ID, escapeMarkdown(label))
		if text := strings.TrimSpace(c.Text); text != "" {
			fmt.Fprintf(&sb, "\n   > %s", strings.ReplaceAll(text, "\n", " "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatStats renders streaming statistics for one reply.
func formatStats(s *model.Statistics) string {
	var parts []string
	if s.Tokens > 0 {
		parts = append(parts, fmt.Sprintf("Tokens: %d", s.Tokens))
	}
	if s.TotalDuration > 0 {
		parts = append(parts, "Duration: "+formatDuration(s.TotalDuration))
	}
	if s.TTFT > 0 {
		parts = append(parts, "TTFT: "+formatDuration(s.TTFT))
	}
	if s.TokensPerSecond > 0 {
		parts = append(parts, fmt.Sprintf("Speed: %.1f tok/s", s.TokensPerSecond))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("<sub>Stats: %s</sub>", strings.Join(parts, " | "))
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that break headings and list items.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return r.Replace(s)
}

// escapeYAML quotes a frontmatter value when it carries special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
