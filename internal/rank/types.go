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

// Package rank implements the Result Ranker (C7): per-variant
// normalization, cross-variant deduplication, type/language boosting, and
// deterministic final ordering.
package rank

import "searchproxy/internal/query"

// RankedHit is a deduplicated, re-scored search result.
type RankedHit struct {
	DocumentID   string                        `json:"document_id"`
	Score        float64                       `json:"score"` // in [0.0, 1.0]
	BestVariant  query.VariantType             `json:"best_variant"`
	Contributors map[query.VariantType]float64 `json:"contributors"`
	Payload      map[string]any                `json:"payload,omitempty"`
	Highlights   []string                      `json:"highlights,omitempty"`
}

// BoostTable holds the type-boost multipliers of spec §4.7 Step 2, sourced
// from ConfigSnapshot, plus the Step 3 language boosts. ThaiOrEnglish covers
// both THAI_ONLY and ENGLISH_ONLY, which the spec assigns the same boost
// value. Fallback and Phrase are not independently configurable and use the
// spec's literal defaults.
//
// ThaiMatch and CompoundMatch are Step 3's "language boost", a distinct
// mechanism from the Step 2 type-boost table above even though Compound and
// CompoundMatch share a default value: Step 2's Compound applies once per
// COMPOUND_SPLIT-variant hit by variant type alone, while Step 3's
// CompoundMatch and ThaiMatch compose multiplicatively on top of it based on
// whether the query itself was Thai and whether the winning variant is
// Thai-bearing or compound-derived.
type BoostTable struct {
	Exact         float64
	Tokenized     float64
	Compound      float64
	ThaiOrEnglish float64
	ThaiMatch     float64
	CompoundMatch float64
}

// DefaultBoostTable returns the literal defaults from spec §4.7's tables.
func DefaultBoostTable() BoostTable {
	return BoostTable{
		Exact: 2.0, Tokenized: 1.5, Compound: 1.3, ThaiOrEnglish: 1.0,
		ThaiMatch: 1.4, CompoundMatch: 1.3,
	}
}

const (
	fallbackBoost = 0.6
	phraseBoost   = 1.0
)

// For returns the multiplier for a variant type.
func (b BoostTable) For(t query.VariantType) float64 {
	switch t {
	case query.VariantOriginal:
		return b.Exact
	case query.VariantTokenized:
		return b.Tokenized
	case query.VariantCompoundSplit:
		return b.Compound
	case query.VariantThaiOnly, query.VariantEnglishOnly:
		return b.ThaiOrEnglish
	case query.VariantFallback:
		return fallbackBoost
	case query.VariantPhrase:
		return phraseBoost
	default:
		return 1.0
	}
}
