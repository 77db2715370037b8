// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragtalk.
//
// Supports TOML and JSON files, a .env file, environment overrides, struct-tag
// validation, and live reload.
//
// # Key Types
//
//   - Config: main configuration structure
//   - APIConfig: chat service URL, request timeout, persona cache TTL
//   - ChatConfig: default persona
//   - UIConfig: theme, markdown rendering, statistics footer
//   - LogConfig: log level and rotating file settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RAGTALK_*), including those set by ./.env
//   - ~/.ragtalk/config.toml
//   - ~/.ragtalk/config.json
//   - Built-in defaults
//
// RAGTALK_CONFIG_DIR relocates ~/.ragtalk.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil && cfg == nil {
//	    return err
//	}
//	timeout := cfg.API.RequestTimeout()
//
//	_ = config.Watch(ctx, path, func(cfg *config.Config, err error) { ... })
package config
