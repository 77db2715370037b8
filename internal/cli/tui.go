// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/yaowubarbara/ragtalk/internal/config"
	"github.com/yaowubarbara/ragtalk/internal/ui/chat"
)

// shutdownGrace is how long a cancelled reply may take to wind down
// after the program exits.
const shutdownGrace = 2 * time.Second

// runTUI runs the full-screen chat until the user quits.
func (a *app) runTUI(ctx context.Context, personaID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := chat.New(chat.Options{
		PersonaID: personaID,
		Streamer:  a.client,
		Personas:  a.client,
		Config:    a.cfg,
		Logger:    a.logger.Logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	a.watchConfig(ctx, p)

	a.logger.Info("tui start", zap.String("persona", personaID))
	final, err := p.Run()

	if fm, ok := final.(chat.Model); ok {
		fm.Shutdown()
		waitCtx, waitCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer waitCancel()
		if werr := fm.Machine().Wait(waitCtx); werr != nil {
			a.logger.Warn("reply still running at exit", zap.Error(werr))
		}
	}
	a.logger.Info("tui exit")
	return err
}

// watchConfig forwards config file changes to the running program. The
// log level follows the file too.
func (a *app) watchConfig(ctx context.Context, p *tea.Program) {
	if a.cfgPath == "" {
		return
	}
	if _, err := os.Stat(a.cfgPath); err != nil {
		return
	}

	err := config.Watch(ctx, a.cfgPath, func(cfg *config.Config, err error) {
		if err == nil {
			config.SetGlobal(cfg)
			if lerr := a.logger.SetLevel(cfg.Log.Level); lerr != nil {
				a.logger.Warn("log level not changed", zap.Error(lerr))
			}
		}
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		a.logger.Warn("config watch unavailable", zap.String("path", a.cfgPath), zap.Error(err))
	}
}
