// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured logger ragtalk components share.
//
// The terminal belongs to the UI, so logs go to a rotating JSON file
// (lumberjack) and, only when asked, to a console writer such as stderr.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//	client := api.NewClientWithConfig(&api.ClientConfig{Logger: logger.Logger})
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yaowubarbara/ragtalk/internal/config"
)

// Options configures New.
type Options struct {
	// Path of the log file. Empty disables file output.
	Path string

	// Level is debug, info, warn or error.
	Level string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Console, if set, also receives human-readable logs.
	Console io.Writer
}

// FromConfig derives Options from the log section of cfg.
func FromConfig(cfg *config.Config) (Options, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Path:       path,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: 30,
	}, nil
}

// Logger is a zap logger whose level can change at runtime.
type Logger struct {
	*zap.Logger

	level   zap.AtomicLevel
	rotator *lumberjack.Logger
}

// New builds a Logger. With neither Path nor Console set it discards
// everything.
func New(opts Options) (*Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	level := zap.NewAtomicLevelAt(lvl)

	var cores []zapcore.Core
	var rotator *lumberjack.Logger

	if opts.Path != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.MessageKey = "message"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotator),
			level,
		))
	}

	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(zapcore.AddSync(opts.Console)),
			level,
		))
	}

	if len(cores) == 0 {
		return &Logger{Logger: zap.NewNop(), level: level}, nil
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &Logger{Logger: l.Named("ragtalk"), level: level, rotator: rotator}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// SetLevel changes the minimum level of every output.
func (l *Logger) SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
