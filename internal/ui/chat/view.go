// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaowubarbara/ragtalk/internal/conversation"
	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/util"
)

func (m Model) render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatus(),
		m.renderInput(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	name := m.machine.PersonaID()
	subtitle := m.theme.Palette.Tagline
	if m.persona != nil {
		if m.persona.Name != "" {
			name = m.persona.Name
		}
		if m.persona.Title != "" {
			subtitle = m.persona.Title
		}
	}

	half := max(m.width/2, 8)
	line := m.theme.HeaderTitle.Render(util.TruncateWidth(name, half))
	if subtitle != "" {
		line += "  " + m.theme.HeaderSubtitle.Render(util.TruncateWidth(subtitle, half))
	}
	return m.theme.Header.Width(max(m.width, 1)).MaxWidth(max(m.width, 1)).Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript() string {
	turns := m.machine.Transcript()
	m.md.forget(turns)
	m.md.configure(m.theme.GlamourStyle(), m.contentWidth())

	var blocks []string
	if greeting := m.greeting(); greeting != "" {
		blocks = append(blocks, greeting)
	}
	for _, turn := range turns {
		blocks = append(blocks, m.renderTurn(turn))
	}
	if errMsg := m.machine.Err(); errMsg != "" {
		blocks = append(blocks, m.theme.ErrorText.Render("[X] "+errMsg))
	}
	return strings.Join(blocks, "\n\n")
}

// greeting is shown ahead of the transcript. It is not part of the
// conversation history sent to the service.
func (m Model) greeting() string {
	if m.persona == nil || m.persona.Greeting == "" {
		return ""
	}
	label := m.theme.AssistantLabel.Render(m.persona.Name)
	body := m.theme.GreetingBubble.Width(m.theme.BubbleWidth()).Render(m.persona.Greeting)
	return label + "\n" + body
}

func (m Model) renderTurn(turn model.Turn) string {
	stamp := m.theme.Timestamp.Render(turn.Timestamp.Format("15:04"))

	if turn.Role == model.RoleUser {
		label := m.theme.UserLabel.Render(turn.Role.DisplayName()) + " " + stamp
		body := m.theme.UserBubble.Width(m.theme.BubbleWidth()).Render(turn.Content)
		return label + "\n" + body
	}

	name := m.machine.PersonaID()
	if m.persona != nil && m.persona.Name != "" {
		name = m.persona.Name
	}
	label := m.theme.AssistantLabel.Render(name) + " " + stamp

	var body string
	switch {
	case turn.IsPending():
		body = m.theme.Pending.Render(m.spinner.View() + " thinking")
	case turn.Content == "":
		body = m.theme.Pending.Render("(no reply)")
	case m.renderMarkdown:
		body = m.md.render(turn)
	default:
		body = wrapPlain(turn.Content, m.contentWidth())
	}
	if turn.Streaming && !turn.IsPending() {
		body += m.spinner.View()
	}

	parts := []string{body}
	if footnotes := renderCitations(m.theme, turn); footnotes != "" && !turn.Streaming {
		parts = append(parts, footnotes)
	}
	if m.showStats && turn.Stats != nil {
		parts = append(parts, m.theme.Stats.Render(turn.Stats.Format()))
	}

	bubble := m.theme.AssistantBubble.Width(m.theme.BubbleWidth()).Render(strings.Join(parts, "\n\n"))
	return label + "\n" + bubble
}

// contentWidth is the text width inside an assistant bubble.
func (m Model) contentWidth() int {
	return max(m.theme.BubbleWidth()-m.theme.AssistantBubble.GetHorizontalFrameSize(), 10)
}

// =============================================================================
// STATUS AND INPUT
// =============================================================================

func (m Model) renderStatus() string {
	var left string
	switch state := m.machine.State(); state {
	case conversation.StateIdle:
		left = m.theme.StatusState.Render(state.String())
	default:
		left = m.theme.StatusState.Render(m.spinner.View() + " " + state.String())
	}
	if m.status != "" {
		left += "  " + m.theme.WarningText.Render(util.TruncateWidth(m.status, max(m.width/2, 8)))
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	line := left
	if gap > 0 {
		line += strings.Repeat(" ", gap) + right
	}
	return m.theme.StatusBar.Width(max(m.width, 1)).MaxWidth(max(m.width, 1)).Render(line)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Render(m.input.View())
}
