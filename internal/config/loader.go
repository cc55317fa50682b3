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

	"gopkg.in/yaml.v3"
)

// rankingFile is the on-disk shape of the optional YAML ranking config
// file, layered between Default() and environment-variable overrides.
type rankingFile struct {
	BoostExact         *float64 `yaml:"boost_exact"`
	BoostTokenized     *float64 `yaml:"boost_tokenized"`
	BoostCompound      *float64 `yaml:"boost_compound"`
	BoostThai          *float64 `yaml:"boost_thai"`
	BoostThaiMatch     *float64 `yaml:"boost_thai_match"`
	BoostCompoundMatch *float64 `yaml:"boost_compound_match"`
	MinScoreThreshold  *float64 `yaml:"min_score_threshold"`
}

// Sources bundles every input a Loader combines into a Snapshot.
type Sources struct {
	// RankingConfigPath is an optional YAML file with boost/threshold
	// overrides. A missing file is not an error: defaults apply.
	RankingConfigPath string
	Env               map[string]string
}

// Loader builds the func() (Snapshot, error) a Manager repeatedly invokes:
// Default() -> optional YAML ranking file -> environment overlay, in that
// order of increasing precedence.
func Loader(src Sources) func() (Snapshot, error) {
	return func() (Snapshot, error) {
		snap := Default()

		if src.RankingConfigPath != "" {
			raw, err := os.ReadFile(src.RankingConfigPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return Snapshot{}, fmt.Errorf("config: reading ranking config: %w", err)
				}
			} else {
				var rf rankingFile
				if err := yaml.Unmarshal(raw, &rf); err != nil {
					return Snapshot{}, fmt.Errorf("config: parsing ranking config: %w", err)
				}
				applyRankingFile(&snap, rf)
			}
		}

		return FromEnv(snap, src.Env), nil
	}
}

func applyRankingFile(s *Snapshot, rf rankingFile) {
	if rf.BoostExact != nil {
		s.Boosts.Exact = *rf.BoostExact
	}
	if rf.BoostTokenized != nil {
		s.Boosts.Tokenized = *rf.BoostTokenized
	}
	if rf.BoostCompound != nil {
		s.Boosts.Compound = *rf.BoostCompound
	}
	if rf.BoostThai != nil {
		s.Boosts.ThaiOrEnglish = *rf.BoostThai
	}
	if rf.BoostThaiMatch != nil {
		s.Boosts.ThaiMatch = *rf.BoostThaiMatch
	}
	if rf.BoostCompoundMatch != nil {
		s.Boosts.CompoundMatch = *rf.BoostCompoundMatch
	}
	if rf.MinScoreThreshold != nil {
		s.MinScoreThreshold = *rf.MinScoreThreshold
	}
}
