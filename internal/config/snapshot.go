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

// Package config implements the Config Manager (C8): an immutable,
// hot-reloadable ConfigSnapshot published behind an atomic pointer.
package config

import (
	"fmt"
	"time"

	"searchproxy/internal/rank"
)

// Snapshot is an immutable view of service configuration. A request reads
// exactly one Snapshot end to end; reloads never mutate one in place, they
// publish a new one.
type Snapshot struct {
	PrimaryEngine         string
	FallbackEngines       []string
	TokenizerTimeout      time.Duration
	MaxConcurrentSearches int
	MaxQueryVariants      int
	SearchTimeout         time.Duration
	RetryAttempts         int
	Boosts                rank.BoostTable
	MinScoreThreshold     float64
	CacheEnabled          bool
	CacheTTL              time.Duration
	EnableHotReload       bool
	APIKeyRequired        bool
	IndexEngineHost       string
	IndexEngineAPIKey     string
	DictionaryPath        string
}

// Default returns the built-in defaults, matching the literal defaults
// named throughout spec §4 and §6.
func Default() Snapshot {
	return Snapshot{
		PrimaryEngine:         "newmm",
		FallbackEngines:       nil,
		TokenizerTimeout:      500 * time.Millisecond,
		MaxConcurrentSearches: 5,
		MaxQueryVariants:      5,
		SearchTimeout:         2 * time.Second,
		RetryAttempts:         2,
		Boosts:                rank.DefaultBoostTable(),
		MinScoreThreshold:     0.0,
		CacheEnabled:          true,
		CacheTTL:              5 * time.Minute,
		EnableHotReload:       true,
		APIKeyRequired:        false,
	}
}

// Validate enforces the structural invariants every published Snapshot
// must hold, per spec §8's hot-reload contract: a candidate that fails
// validation is rejected and the previous Snapshot stays published.
func (s Snapshot) Validate() error {
	if s.PrimaryEngine == "" {
		return fmt.Errorf("config: PRIMARY_ENGINE must be set")
	}
	if s.Boosts.Exact <= 0 || s.Boosts.Tokenized <= 0 || s.Boosts.Compound <= 0 || s.Boosts.ThaiOrEnglish <= 0 ||
		s.Boosts.ThaiMatch <= 0 || s.Boosts.CompoundMatch <= 0 {
		return fmt.Errorf("config: boost factors must be > 0")
	}
	if s.TokenizerTimeout <= 0 {
		return fmt.Errorf("config: TOKENIZER_TIMEOUT_MS must be > 0")
	}
	if s.SearchTimeout <= 0 {
		return fmt.Errorf("config: SEARCH_TIMEOUT_MS must be > 0")
	}
	if s.MaxConcurrentSearches < 1 {
		return fmt.Errorf("config: MAX_CONCURRENT_SEARCHES must be >= 1")
	}
	if s.MaxQueryVariants < 1 {
		return fmt.Errorf("config: MAX_QUERY_VARIANTS must be >= 1")
	}
	if s.RetryAttempts < 0 {
		return fmt.Errorf("config: RETRY_ATTEMPTS must be >= 0")
	}
	if s.MinScoreThreshold < 0 || s.MinScoreThreshold > 1 {
		return fmt.Errorf("config: MIN_SCORE_THRESHOLD must be in [0,1]")
	}
	return nil
}
