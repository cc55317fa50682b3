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

package tokenize

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"searchproxy/internal/dictionary"
)

// compoundMaxSpan bounds how many adjacent tokens the compound-preservation
// pass will try to merge into one, keeping the scan linear in practice.
const compoundMaxSpan = 6

// Facade is C3: it drives the primary-engine-with-fallback-ladder call, then
// re-merges any dictionary-recognized compounds the chosen engine split
// apart. Safe for concurrent use; holds no mutable state of its own beyond
// the Tokenizers it was built with.
type Facade struct {
	primary   Tokenizer
	fallbacks []Tokenizer
	dict      *dictionary.Store
	logger    *zap.Logger
}

// NewFacade wires primary and, in order, fallbacks behind the dictionary
// dict. A nil dict disables the compound-preservation pass (tokens pass
// through unmerged), which is a valid configuration for tests that only
// exercise the fallback ladder.
func NewFacade(primary Tokenizer, fallbacks []Tokenizer, dict *dictionary.Store, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{primary: primary, fallbacks: fallbacks, dict: dict, logger: logger}
}

// Tokenize runs the fallback ladder under timeout, then applies
// dictionary-aware compound preservation to whichever result answered.
func (f *Facade) Tokenize(ctx context.Context, text string, timeout time.Duration) TokenizationResult {
	result := f.runLadder(ctx, text, timeout)
	if f.dict != nil && len(result.Tokens) > 1 {
		result.Tokens = mergeCompounds(result.Tokens, f.dict)
	}
	return result
}

// runLadder tries primary, then each fallback in order, stopping at the
// first success. If every engine fails, it synthesizes a single-token
// FALLBACK result rather than propagating an error, per spec §4.3: the
// facade's contract to its callers is "always answers".
func (f *Facade) runLadder(ctx context.Context, text string, timeout time.Duration) TokenizationResult {
	candidates := make([]Tokenizer, 0, 1+len(f.fallbacks))
	if f.primary != nil {
		candidates = append(candidates, f.primary)
	}
	candidates = append(candidates, f.fallbacks...)

	for _, eng := range candidates {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		res, err := eng.Tokenize(callCtx, text)
		cancel()
		if err == nil && res.Success {
			return res
		}
		f.logger.Warn("tokenizer engine failed, trying next",
			zap.String("engine", eng.ID()),
			zap.Error(err))
	}

	return TokenizationResult{
		OriginalText: text,
		Tokens:       []Token{{Text: text, Confidence: absentConfidence}},
		Engine:       EngineFallback,
		Success:      true,
		ErrorReason:  "all configured engines failed",
	}
}

// mergeCompounds greedily merges the longest contiguous run of tokens whose
// concatenation is a recognized dictionary entry, scanning left to right.
// Ties (multiple spans starting at the same index matching the dictionary)
// are broken by preferring the longest span already, so "earliest-starting,
// fewest components" falls out of the left-to-right greedy scan itself.
func mergeCompounds(tokens []Token, dict *dictionary.Store) []Token {
	out := make([]Token, 0, len(tokens))
	i := 0
	for i < len(tokens) {
		best := 1
		for span := 2; span <= compoundMaxSpan && i+span <= len(tokens); span++ {
			var b strings.Builder
			for k := 0; k < span; k++ {
				b.WriteString(tokens[i+k].Text)
			}
			if dict.Contains(b.String()) {
				best = span
			}
		}
		if best == 1 {
			out = append(out, tokens[i])
			i++
			continue
		}
		merged := strings.Builder{}
		conf := 1.0
		for k := 0; k < best; k++ {
			merged.WriteString(tokens[i+k].Text)
			if tokens[i+k].Confidence < conf {
				conf = tokens[i+k].Confidence
			}
		}
		if conf > 0.95 {
			conf = 0.95
		}
		out = append(out, Token{Text: merged.String(), Confidence: conf})
		i += best
	}
	return out
}
