// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long the file must be quiet before a reload.
const WatchDebounce = 150 * time.Millisecond

// Watch reloads path whenever it changes and passes the result to onChange
// (a nil config with the error when the new file is invalid). It returns
// once the watch is established; watching stops when ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// save by rename are picked up.
func Watch(ctx context.Context, path string, onChange func(*Config, error)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	go watchLoop(ctx, watcher, absPath, onChange)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func(*Config, error)) {
	defer watcher.Close()

	// Stopped until the first relevant event.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(WatchDebounce)

		case <-timer.C:
			cfg, err := LoadFromPath(path)
			onChange(cfg, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			onChange(nil, fmt.Errorf("config watch: %w", err))
		}
	}
}
