// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/config"
)

// changedMsg tells the view the conversation moved on.
type changedMsg struct{}

// personaMsg delivers the persona profile, or why it could not be fetched.
type personaMsg struct {
	Persona api.Persona
	Err     error
}

// ConfigReloadedMsg carries a configuration re-read after the file changed.
// Err is set when the new file is unusable; the view keeps its settings.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// exportedMsg reports where a Ctrl+S export was written.
type exportedMsg struct {
	Path string
	Err  error
}
