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

// Package dictionary holds the curated compound-word set used by the
// tokenizer facade to re-merge spans that engines split apart. It is
// hot-reloadable: a reload builds a brand new immutable set and publishes it
// with a single atomic pointer swap, so concurrent readers never observe a
// torn set.
package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// firstThai, lastThai bound the Thai Unicode block (U+0E00-U+0E7F).
const (
	firstThai rune = 0x0E00
	lastThai  rune = 0x0E7F
)

// Store holds the current compound dictionary and exposes O(1) membership
// lookups that are safe under concurrent readers at all times. Reloads swap
// the underlying set atomically; readers never see a partial set.
type Store struct {
	set    atomic.Pointer[dictSet]
	logger *zap.Logger
}

// dictSet is the immutable snapshot published by a (re)load. version is a
// content hash used to detect whether a reload actually changed anything.
type dictSet struct {
	words   map[string]struct{}
	version string
}

// New returns an empty, ready-to-use Store. Callers typically follow with a
// ReloadFrom call; an empty store is a valid (if unhelpful) starting state,
// matching the "missing file -> start empty" failure policy of spec §4.1.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{logger: logger}
	s.set.Store(&dictSet{words: map[string]struct{}{}, version: "empty"})
	return s
}

// Contains reports whether word is a recognized compound surface form.
func (s *Store) Contains(word string) bool {
	_, ok := s.set.Load().words[word]
	return ok
}

// Len reports the number of recognized compound words.
func (s *Store) Len() int {
	return len(s.set.Load().words)
}

// Version returns the content hash of the currently published set.
func (s *Store) Version() string {
	return s.set.Load().version
}

// Words returns a snapshot slice of every recognized surface form. The
// returned slice is owned by the caller; it does not alias Store internals.
func (s *Store) Words() []string {
	cur := s.set.Load()
	out := make([]string, 0, len(cur.words))
	for w := range cur.words {
		out = append(out, w)
	}
	return out
}

// rawDictionaryFile is the on-disk shape: a mapping from category name to a
// list of surface forms. Categories are a loading convenience only; the
// published Store is a flat set.
type rawDictionaryFile map[string][]string

// ReloadFrom parses the JSON dictionary file at path and, on success,
// publishes it atomically. On any failure the previously published set is
// retained unchanged and the error is returned for the caller (typically the
// Config Manager) to surface to Metrics & Health.
//
// A missing file gets no special handling here: the os error is returned
// unwrapped, so callers that want "file missing at startup -> empty
// dictionary, health degraded" should check os.IsNotExist on it themselves,
// per spec §4.1 and §8.
func (s *Store) ReloadFrom(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	next, err := parse(raw)
	if err != nil {
		return fmt.Errorf("dictionary: parse %s: %w", path, err)
	}
	s.set.Store(next)
	s.logger.Info("dictionary reloaded",
		zap.String("path", path),
		zap.Int("words", len(next.words)),
		zap.String("version", next.version))
	return nil
}

// parse flattens a rawDictionaryFile into an immutable dictSet, trimming
// whitespace and rejecting zero-length or non-Thai-bearing entries.
func parse(raw []byte) (*dictSet, error) {
	var file rawDictionaryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	words := make(map[string]struct{})
	for _, entries := range file {
		for _, entry := range entries {
			w := strings.TrimSpace(entry)
			if w == "" {
				continue
			}
			if !hasThaiCodepoint(w) {
				continue
			}
			words[w] = struct{}{}
		}
	}
	return &dictSet{words: words, version: contentHash(words)}, nil
}

// hasThaiCodepoint reports whether s contains at least one rune in the Thai
// Unicode block, per spec's definition of a Thai-bearing entry.
func hasThaiCodepoint(s string) bool {
	for _, r := range s {
		if r >= firstThai && r <= lastThai {
			return true
		}
	}
	return false
}

// contentHash is a cheap, order-independent fingerprint of a word set, used
// only to version published snapshots (not for security purposes).
func contentHash(words map[string]struct{}) string {
	// FNV-1a over a sorted-free XOR accumulation: order-independence lets us
	// avoid sorting the set on every reload, which would cost O(n log n) on
	// a path that runs only on file-watch events, not the request hot path.
	var acc uint64 = 1469598103934665603 // FNV offset basis
	for w := range words {
		h := fnvHash(w)
		acc ^= h
	}
	return fmt.Sprintf("%016x", acc)
}

func fnvHash(s string) uint64 {
	const prime uint64 = 1099511628211
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
