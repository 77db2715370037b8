// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/config"
	"github.com/yaowubarbara/ragtalk/internal/conversation"
	"github.com/yaowubarbara/ragtalk/internal/export"
	"github.com/yaowubarbara/ragtalk/internal/ui/styles"
)

// personaTimeout bounds the greeting lookup at startup.
const personaTimeout = 10 * time.Second

// inputHeight is the number of visible lines in the input area.
const inputHeight = 3

// PersonaSource looks up persona profiles.
type PersonaSource interface {
	GetPersona(ctx context.Context, id string) (api.Persona, error)
}

// Options are the view's dependencies.
type Options struct {
	// PersonaID selects who the user talks to.
	PersonaID string

	// Streamer runs the chat requests. Required.
	Streamer conversation.Streamer

	// Personas provides the greeting and display name. Optional.
	Personas PersonaSource

	// Config supplies the ui section. Defaults apply when nil.
	Config *config.Config

	// ExportDir receives Ctrl+S transcript exports. Default: current directory.
	ExportDir string

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	machine  *conversation.Machine
	refresh  *Refresher
	personas PersonaSource
	persona  *api.Persona
	logger   *zap.Logger

	exportDir string

	theme *styles.Theme
	md    *markdown
	keys  KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	renderMarkdown bool
	showStats      bool
	spinning       bool

	status string
	width  int
	height int
	ready  bool
}

// New creates the chat view and its conversation machine.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	refresh := NewRefresher(RefreshInterval)
	machine := conversation.New(conversation.Options{
		PersonaID: opts.PersonaID,
		Streamer:  opts.Streamer,
		OnChange:  refresh.Notify,
		Logger:    logger,
	})

	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 8192
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Spinner()

	theme := styles.NewTheme(cfg.UI.Theme, opts.PersonaID)
	sp.Style = theme.Spinner

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		ctx:            ctx,
		cancel:         cancel,
		machine:        machine,
		refresh:        refresh,
		personas:       opts.Personas,
		logger:         logger.Named("chat"),
		exportDir:      exportDir,
		theme:          theme,
		md:             newMarkdown(),
		keys:           DefaultKeyMap(),
		viewport:       viewport.New(80, 20),
		input:          ta,
		spinner:        sp,
		renderMarkdown: cfg.UI.RenderMarkdown,
		showStats:      cfg.UI.ShowStats,
	}
}

// Machine exposes the conversation for callers that outlive the program.
func (m Model) Machine() *conversation.Machine {
	return m.machine
}

// Shutdown cancels any running reply and stops pending refresh commands.
func (m Model) Shutdown() {
	m.machine.Cancel()
	m.cancel()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the refresh loop and the persona lookup.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.refresh.Wait(m.ctx)}
	if m.personas != nil {
		cmds = append(cmds, m.fetchPersona())
	}
	return tea.Batch(cmds...)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case changedMsg:
		m.syncViewport()
		cmds := []tea.Cmd{m.refresh.Wait(m.ctx)}
		if m.machine.Busy() && !m.spinning {
			m.spinning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.machine.Busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncViewport()
		return m, cmd

	case personaMsg:
		if msg.Err != nil {
			m.logger.Warn("persona lookup failed", zap.String("persona", m.machine.PersonaID()), zap.Error(msg.Err))
			m.status = "persona profile unavailable: " + msg.Err.Error()
		} else {
			p := msg.Persona
			m.persona = &p
		}
		m.syncViewport()
		return m, nil

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, nil

	case exportedMsg:
		switch {
		case errors.Is(msg.Err, export.ErrEmpty):
			m.status = "nothing to export yet"
		case msg.Err != nil:
			m.logger.Warn("export failed", zap.Error(msg.Err))
			m.status = "export failed: " + msg.Err.Error()
		default:
			m.status = "saved " + msg.Path
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.render()
}

// =============================================================================
// INPUT HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Interrupt):
		if m.machine.Busy() {
			m.machine.Cancel()
			m.status = "reply stopped"
			return m, nil
		}
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.machine.Busy() {
			m.machine.Cancel()
			m.status = "reply stopped"
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.machine.Clear()
		m.md.forget(nil)
		m.status = "conversation cleared"
		return m, nil

	case key.Matches(msg, m.keys.ToggleStats):
		m.showStats = !m.showStats
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, m.exportTranscript()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.machine.Busy() {
		m.status = "wait for the reply or press Ctrl+C"
		return m, nil
	}
	if !m.machine.Send(m.ctx, text) {
		return m, nil
	}
	m.input.Reset()
	m.status = ""
	m.viewport.GotoBottom()
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// exportTranscript writes the finished turns as Markdown off the update loop.
func (m Model) exportTranscript() tea.Cmd {
	conv := export.NewConversation(m.machine.PersonaID(), m.machine.Transcript())
	opts := export.DefaultOptions()
	opts.OutputDir = m.exportDir
	return func() tea.Msg {
		path, err := export.ToFile(conv, export.NewMarkdownExporter(opts), opts)
		return exportedMsg{Path: path, Err: err}
	}
}

func (m Model) fetchPersona() tea.Cmd {
	personas := m.personas
	id := m.machine.PersonaID()
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, personaTimeout)
		defer cancel()
		p, err := personas.GetPersona(ctx, id)
		return personaMsg{Persona: p, Err: err}
	}
}

func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		m.logger.Warn("config reload rejected", zap.Error(msg.Err))
		m.status = "config not reloaded: " + msg.Err.Error()
		return
	}
	cfg := msg.Config
	m.theme.SetMode(cfg.UI.Theme)
	m.spinner.Style = m.theme.Spinner
	m.renderMarkdown = cfg.UI.RenderMarkdown
	m.showStats = cfg.UI.ShowStats
	m.status = "config reloaded"
	m.logger.Info("config reloaded",
		zap.String("theme", cfg.UI.Theme),
		zap.Bool("render_markdown", cfg.UI.RenderMarkdown),
		zap.Bool("show_stats", cfg.UI.ShowStats))
	m.syncViewport()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.input.SetWidth(max(width-4, 10))

	chrome := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderInput()) + 1
	vpHeight := max(height-chrome, 3)

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.syncViewport()
}

// syncViewport redraws the transcript, following the bottom if the user
// had not scrolled away from it.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	follow := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if follow {
		m.viewport.GotoBottom()
	}
}
