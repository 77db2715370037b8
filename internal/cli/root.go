// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yaowubarbara/ragtalk/internal/api"
	"github.com/yaowubarbara/ragtalk/internal/config"
	"github.com/yaowubarbara/ragtalk/internal/logging"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app holds what the commands share once flags are parsed.
type app struct {
	// flags
	configPath string
	apiURL     string
	persona    string
	verbose    bool

	cfg     *config.Config
	cfgPath string
	logger  *logging.Logger
	client  *api.Client
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ragtalk",
		Short: "Talk with historical personas, grounded in their own writing",
		Long: `ragtalk is a terminal client for a persona chat service. Replies stream in
as they are generated and cite the passages they draw on.

Run without a command to open the full-screen chat.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.runTUI(cmd.Context(), a.personaOr(""))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.ragtalk/config.toml)")
	flags.StringVar(&a.apiURL, "api-url", "", "chat service root URL")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.Flags().StringVarP(&a.persona, "persona", "p", "", "persona to talk to")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newPersonasCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	a := &app{}
	defer a.close()

	err := newRootCmd(a).ExecuteContext(context.Background())
	if err == nil {
		return ExitSuccess
	}
	// Stream errors were already printed next to the reply.
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		DisplayError(os.Stderr, err)
	}
	return ExitCode(err)
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the configuration and builds the logger and the client.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	cfg, path, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
		if err := cfg.Validate(); err != nil {
			return &ConfigError{Err: err}
		}
	}
	config.SetGlobal(cfg)

	opts, err := logging.FromConfig(cfg)
	if err != nil {
		return &ConfigError{Err: err}
	}
	if a.verbose {
		opts.Level = "debug"
	}
	logger, err := logging.New(opts)
	if err != nil {
		return &ConfigError{Err: err}
	}

	a.cfg = cfg
	a.cfgPath = path
	a.logger = logger
	a.client = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:         cfg.API.BaseURL,
		RequestTimeout:  cfg.API.RequestTimeout(),
		PersonaCacheTTL: cfg.API.PersonaCacheTTL(),
		Logger:          logger.Logger,
	})

	logger.Debug("startup",
		zap.String("command", cmd.CommandPath()),
		zap.String("config", path),
		zap.String("api", cfg.API.BaseURL))
	return nil
}

// loadConfig reads --config when given, the default locations otherwise.
// A broken default file is reported and replaced by defaults.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if a.configPath != "" {
		if err := config.LoadDotEnv(); err != nil {
			return nil, "", &ConfigError{Err: err}
		}
		cfg, err := config.LoadFromPath(a.configPath)
		if err != nil {
			return nil, "", &ConfigError{Path: a.configPath, Err: err}
		}
		return cfg, a.configPath, nil
	}

	cfg, err := config.Load()
	if cfg == nil {
		return nil, "", &ConfigError{Err: err}
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v (using defaults)\n", WarningStyle.Render("[!]"), err)
	}
	path, pathErr := config.ConfigPathTOML()
	if pathErr != nil {
		path = ""
	}
	return cfg, path, nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// personaOr picks the persona: explicit argument, then --persona, then
// chat.default_persona.
func (a *app) personaOr(arg string) string {
	switch {
	case arg != "":
		return arg
	case a.persona != "":
		return a.persona
	default:
		return a.cfg.Chat.DefaultPersona
	}
}
