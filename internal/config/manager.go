// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce coalesces bursts of filesystem events (editors often emit
// several writes per save) into a single reload, per spec §4.8.
const defaultDebounce = 250 * time.Millisecond

// Manager owns the live Snapshot and, optionally, a filesystem watch that
// triggers reloads when configuration files change. Reads of Current are
// lock-free; reloads validate a candidate before publishing it.
type Manager struct {
	snapshot atomic.Pointer[Snapshot]
	loader   func() (Snapshot, error)
	debounce time.Duration
	logger   *zap.Logger

	reloadCount   atomic.Int64
	lastReloadsAt atomic.Int64 // unix nanos
	lastErr       atomic.Pointer[string]

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// New builds a Manager whose initial Snapshot is produced by loader.
// loader is also invoked on every reload (manual or filesystem-triggered).
func New(loader func() (Snapshot, error), logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	initial, err := loader()
	if err != nil {
		return nil, fmt.Errorf("config: initial load: %w", err)
	}
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("config: initial snapshot invalid: %w", err)
	}
	m := &Manager{loader: loader, debounce: defaultDebounce, logger: logger}
	m.snapshot.Store(&initial)
	return m, nil
}

// Current returns the currently published Snapshot.
func (m *Manager) Current() Snapshot {
	return *m.snapshot.Load()
}

// ReloadCount reports how many successful reloads have been published
// since startup.
func (m *Manager) ReloadCount() int64 { return m.reloadCount.Load() }

// LastReloadAt reports the time of the most recent successful reload, or
// the zero Time if none has happened yet.
func (m *Manager) LastReloadAt() time.Time {
	n := m.lastReloadsAt.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// LastReloadError reports the error from the most recent failed reload
// attempt, if the most recent attempt failed.
func (m *Manager) LastReloadError() string {
	p := m.lastErr.Load()
	if p == nil {
		return ""
	}
	return *p
}

// Reload runs loader, validates the result, and publishes it atomically on
// success. On failure the previously published Snapshot is retained and
// the error is returned.
func (m *Manager) Reload() error {
	next, err := m.loader()
	if err != nil {
		m.recordFailure(err)
		return err
	}
	if err := next.Validate(); err != nil {
		m.recordFailure(err)
		return err
	}
	m.snapshot.Store(&next)
	m.reloadCount.Add(1)
	m.lastReloadsAt.Store(time.Now().UnixNano())
	m.lastErr.Store(nil)
	m.logger.Info("config reloaded", zap.Int64("reload_count", m.reloadCount.Load()))
	return nil
}

func (m *Manager) recordFailure(err error) {
	msg := err.Error()
	m.lastErr.Store(&msg)
	m.logger.Warn("config reload rejected, keeping prior snapshot", zap.Error(err))
}

// WatchFiles starts an fsnotify watch on paths, debouncing bursts of
// events into a single Reload call. Stop must be called to release the
// watcher. Calling WatchFiles twice on the same Manager is a no-op.
func (m *Manager) WatchFiles(paths ...string) error {
	var started bool
	var startErr error
	m.once.Do(func() {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			startErr = err
			return
		}
		for _, p := range paths {
			if _, statErr := os.Stat(p); statErr != nil {
				continue // missing files are skipped and not watched; creating one later triggers no reload
			}
			if err := w.Add(p); err != nil {
				startErr = err
				return
			}
		}
		m.watcher = w
		m.stopCh = make(chan struct{})
		m.doneCh = make(chan struct{})
		started = true
		go m.watchLoop()
	})
	if startErr != nil {
		return startErr
	}
	if !started && m.watcher == nil {
		return fmt.Errorf("config: WatchFiles already failed on a prior call")
	}
	return nil
}

func (m *Manager) watchLoop() {
	defer close(m.doneCh)
	var pending *time.Timer
	for {
		select {
		case <-m.stopCh:
			_ = m.watcher.Close()
			if pending != nil {
				pending.Stop()
			}
			return
		case _, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if pending == nil {
				pending = time.AfterFunc(m.debounce, func() {
					if err := m.Reload(); err != nil {
						m.logger.Warn("debounced config reload failed", zap.Error(err))
					}
				})
			} else {
				pending.Reset(m.debounce)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Stop releases the filesystem watch, if one was started. Safe to call
// even if WatchFiles was never called.
func (m *Manager) Stop() {
	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	<-m.doneCh
}
