// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/config"
	"github.com/yaowubarbara/ragtalk/internal/conversation"
	"github.com/yaowubarbara/ragtalk/internal/export"
	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/session"
	"github.com/yaowubarbara/ragtalk/internal/util"
)

const (
	historyFileName = "chat_history"
	replPrompt      = "you> "
	historyPreview  = 72
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [persona]",
		Short: "Line-based chat with input history",
		Long: `Start a line-based conversation. Replies stream as plain text.

Commands during chat:
  /clear     start over
  /sources   list the sources of the last reply
  /history   show the conversation so far
  /export    save the conversation (/export json for JSON)
  /help      show this help
  /quit      leave (also Ctrl+D)

Ctrl+C stops a reply that is still streaming.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			return a.runChat(cmd.Context(), a.personaOr(arg), cmd.OutOrStdout())
		},
	}
}

func (a *app) runChat(ctx context.Context, personaID string, out io.Writer) error {
	editor := newLineEditor()
	defer editor.Close()

	r := newREPL(personaID, a.client, editor, out, a.cfg, a.logger.Logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	forwarded := forwardInterrupts(sigCh, r.machine.Cancel)
	defer func() {
		signal.Stop(sigCh)
		close(sigCh)
		<-forwarded
	}()

	return r.run(ctx)
}

// forwardInterrupts calls cancel for every signal on sigCh. The returned
// channel is closed once sigCh is closed and drained.
func forwardInterrupts(sigCh <-chan os.Signal, cancel func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range sigCh {
			cancel()
		}
	}()
	return done
}

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineReader is the input side of the REPL.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// lineEditor provides input history and line editing, persisted in the
// config directory.
type lineEditor struct {
	line        *liner.State
	historyFile string
}

func newLineEditor() *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	e := &lineEditor{
		line:        line,
		historyFile: filepath.Join(configDir, historyFileName),
	}
	if f, err := os.Open(e.historyFile); err == nil {
		_, _ = e.line.ReadHistory(f)
		f.Close()
	}
	return e
}

// Prompt reads a line and records it in the history.
func (e *lineEditor) Prompt(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		e.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history (0600) and restores the terminal.
func (e *lineEditor) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = e.line.WriteHistory(f)
			f.Close()
		}
	}
	e.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	machine   *conversation.Machine
	in        lineReader
	out       io.Writer
	personaID string
	showStats bool
	exportDir string
	logger    *zap.Logger
}

func newREPL(personaID string, streamer conversation.Streamer, in lineReader, out io.Writer, cfg *config.Config, logger *zap.Logger) *repl {
	return &repl{
		machine: conversation.New(conversation.Options{
			PersonaID: personaID,
			Streamer:  echoStreamer{inner: streamer, out: out},
			Logger:    logger,
		}),
		in:        in,
		out:       out,
		personaID: personaID,
		showStats: cfg.UI.ShowStats,
		exportDir: ".",
		logger:    logger,
	}
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "Talking to %s. Type /help for commands.\n\n", personaStyle(r.personaID).Render(r.personaID))

	for {
		input, err := r.in.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := r.command(input); quit {
				return nil
			}
			continue
		}
		if err := r.exchange(ctx, input); err != nil {
			return err
		}
	}
}

// exchange sends one message and blocks until the reply is complete.
func (r *repl) exchange(ctx context.Context, text string) error {
	fmt.Fprintf(r.out, "\n%s\n", personaStyle(r.personaID).Render(r.personaID))
	if !r.machine.Send(ctx, text) {
		return nil
	}
	sess := r.machine.ActiveSession()
	if err := r.machine.Wait(ctx); err != nil {
		r.machine.Cancel()
		return err
	}
	fmt.Fprintln(r.out)

	last, _ := lastReply(r.machine.Transcript())
	switch msg := r.machine.Err(); {
	case msg != "":
		fmt.Fprintf(r.out, "%s %s\n", ErrorStyle.Render("[ERROR]"), msg)
	case sess != nil && sess.Cancelled():
		fmt.Fprintln(r.out, WarningStyle.Render("[stopped]"))
	case last.Content == "":
		fmt.Fprintln(r.out, WarningStyle.Render("[no reply]"))
	}
	writeCitations(r.out, last.ReferencedCitations())
	if r.showStats {
		writeStats(r.out, last.Stats)
	}
	fmt.Fprintln(r.out)
	return nil
}

// command runs a slash command and reports whether to quit.
func (r *repl) command(input string) bool {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/quit", "/exit", "/q":
		return true

	case "/clear", "/c":
		r.machine.Clear()
		fmt.Fprintln(r.out, SuccessStyle.Render("Conversation cleared."))

	case "/sources":
		last, ok := lastReply(r.machine.Transcript())
		if !ok || !last.HasSources() {
			fmt.Fprintln(r.out, MutedStyle.Render("No sources yet."))
			return false
		}
		writeCitations(r.out, last.Sources)

	case "/history":
		turns := r.machine.Transcript()
		if len(turns) == 0 {
			fmt.Fprintln(r.out, MutedStyle.Render("No messages yet."))
			return false
		}
		for _, t := range turns {
			who := t.Role.DisplayName()
			if t.Role == model.RoleAssistant {
				who = r.personaID
			}
			fmt.Fprintf(r.out, "%s %s\n", LabelStyle.Render(who), util.Preview(t.Content, historyPreview))
		}

	case "/export":
		r.export(strings.Fields(input)[1:])

	case "/help", "/h":
		fmt.Fprintln(r.out, strings.Join([]string{
			"/clear     start over",
			"/sources   list the sources of the last reply",
			"/history   show the conversation so far",
			"/export    save the conversation as markdown (/export json)",
			"/help      show this help",
			"/quit      leave",
		}, "\n"))

	default:
		fmt.Fprintf(r.out, "%s unknown command %s (try /help)\n", WarningStyle.Render("[!]"), name)
	}
	return false
}

// export writes the transcript to exportDir in the format named by args.
func (r *repl) export(args []string) {
	var format string
	if len(args) > 0 {
		format = args[0]
	}
	exporter, err := export.ForFormat(format, nil)
	if err != nil {
		fmt.Fprintf(r.out, "%s %v\n", WarningStyle.Render("[!]"), err)
		return
	}

	conv := export.NewConversation(r.personaID, r.machine.Transcript())
	path, err := export.ToFile(conv, exporter, &export.Options{
		OutputDir:         r.exportDir,
		IncludeStats:      true,
		IncludeTimestamps: true,
	})
	switch {
	case errors.Is(err, export.ErrEmpty):
		fmt.Fprintln(r.out, MutedStyle.Render("No messages yet."))
	case err != nil:
		r.logger.Warn("export failed", zap.Error(err))
		fmt.Fprintf(r.out, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
	default:
		fmt.Fprintf(r.out, "%s saved %s\n", SuccessStyle.Render("[OK]"), path)
	}
}

func lastReply(turns []model.Turn) (model.Turn, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == model.RoleAssistant {
			return turns[i], true
		}
	}
	return model.Turn{}, false
}

// echoStreamer prints tokens as they arrive while passing them on.
type echoStreamer struct {
	inner conversation.Streamer
	out   io.Writer
}

func (e echoStreamer) StreamChat(ctx context.Context, req api.ChatRequest, h api.Handlers, sess *session.Session) {
	onToken := h.OnToken
	h.OnToken = func(text string) {
		fmt.Fprint(e.out, text)
		if onToken != nil {
			onToken(text)
		}
	}
	e.inner.StreamChat(ctx, req, h, sess)
}
