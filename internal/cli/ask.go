// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/model"
	"github.com/yaowubarbara/ragtalk/internal/session"
)

func newAskCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask <persona> <question>",
		Short: "Ask one question and print the reply",
		Long: `Ask a single question. The reply streams to stdout followed by the sources
it cites. On a terminal the reply is rendered as Markdown once complete.`,
		Example: `  ragtalk ask charlie-munger "How do I avoid stupidity?"
  ragtalk ask marcus-aurelius what is worth worrying about`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args[1:], " "))
			if question == "" {
				return &usageError{msg: "question must not be empty"}
			}
			if err := a.setup(cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			markdown := !plain && a.cfg.UI.RenderMarkdown && IsStdoutTTY()
			return a.ask(ctx, cmd.OutOrStdout(), args[0], question, markdown)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "never render Markdown")
	return cmd
}

// ask streams one reply to out. With markdown set the reply is buffered
// and rendered when complete; otherwise tokens are written as they arrive.
func (a *app) ask(ctx context.Context, out io.Writer, personaID, question string, markdown bool) error {
	var (
		reply   strings.Builder
		sources []model.Citation
		failure string
	)

	sess := session.New()
	a.client.StreamChat(ctx, api.ChatRequest{
		PersonaID: personaID,
		Message:   question,
	}, api.Handlers{
		OnToken: func(text string) {
			reply.WriteString(text)
			if !markdown {
				fmt.Fprint(out, text)
			}
		},
		OnSources: func(cs []model.Citation) {
			sources = cs
		},
		OnError: func(msg string) {
			failure = msg
		},
	}, sess)

	if markdown && reply.Len() > 0 {
		fmt.Fprint(out, renderMarkdown(reply.String(), a.cfg.UI.Theme, wrapWidth()))
	} else if reply.Len() > 0 {
		fmt.Fprintln(out)
	}

	if failure != "" {
		fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("[ERROR]"), failure)
		return &StreamError{Message: failure}
	}
	if sess.Cancelled() || ctx.Err() != nil {
		fmt.Fprintln(out, WarningStyle.Render("[stopped]"))
		return nil
	}

	turn := model.Turn{Role: model.RoleAssistant, Content: reply.String(), Sources: sources}
	writeCitations(out, turn.ReferencedCitations())
	if a.cfg.UI.ShowStats {
		writeStats(out, sess.Stats())
	}
	return nil
}
