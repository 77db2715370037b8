// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/config"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "config")
	Action  string // Action being performed (e.g., "set")
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ConfigError marks a failure caused by the configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StreamError is a chat reply that ended with an error frame or a
// transport failure. Message is the text already shown to the user.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// usageError wraps argument problems cobra itself does not catch.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *ConfigError
	var validation config.ValidateErrors
	var usage *usageError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &validation):
		return ExitConfigError
	case errors.As(err, &usage):
		return ExitUsageError
	case api.IsNotFound(err):
		return ExitNotFoundError
	case api.IsTimeout(err):
		return ExitTimeoutError
	case api.IsUnreachable(err):
		return ExitNetworkError
	}

	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		switch streamErr.Message {
		case api.ErrTimeout.Message:
			return ExitTimeoutError
		case api.ErrUnreachable.Message:
			return ExitNetworkError
		}
	}
	return ExitGeneralError
}

// DisplayError writes err to w in the CLI error format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
