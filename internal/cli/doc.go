// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the ragtalk command line.

# Commands

	ragtalk [--persona ID]          full-screen chat (default)
	ragtalk chat [persona]          line-based chat with history
	ragtalk ask <persona> <text>    one question, reply on stdout
	ragtalk personas [--json]       list the personas the service offers
	ragtalk config show|path|init|keys|get|set
	ragtalk version

# Global flags

	--config PATH    config file (default ~/.ragtalk/config.toml)
	--api-url URL    chat service root, overrides api.base_url
	-v, --verbose    debug logging

Logs never go to the terminal; see log.file in the config.

# Exit codes

Errors are mapped to exit codes by ExitCode: 3 for configuration
problems, 5 when the service cannot be reached, 7 for an unknown persona,
8 for timeouts and 1 otherwise.
*/
package cli
