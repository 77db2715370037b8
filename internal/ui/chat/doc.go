// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for ragtalk.

The view is a thin Bubble Tea shell around a conversation.Machine. The
machine owns the transcript and the stream; the view only reads snapshots
of it and forwards user intent (send, cancel, clear).

# Key Components

## Model (model.go)

The Model struct wires the machine, the persona greeting, the input area
and the viewport, and handles keyboard input:

	Enter      send the message
	Alt+Enter  newline
	Ctrl+C     cancel the running reply, or quit when idle
	Esc        cancel the running reply
	Ctrl+L     clear the conversation
	Ctrl+T     toggle per-reply statistics
	Ctrl+S     export the transcript as Markdown
	PgUp/PgDn  scroll

## Refresh (refresh.go)

The machine reports changes from the stream goroutine. A Refresher folds
bursts of changes into at most one redraw per frame interval; the final
state of a reply is always drawn.

## Rendering (render.go, view.go)

Assistant replies are rendered as Markdown with glamour and cached per
turn. Cited sources are listed as footnotes under the reply that
references them.
*/
package chat
