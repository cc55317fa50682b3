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

package query

import (
	"context"
	"sort"
	"strings"
	"time"

	"searchproxy/internal/dictionary"
	"searchproxy/internal/tokenize"
)

// defaultMaxVariants is used when callers pass maxVariants <= 0.
const defaultMaxVariants = 5

// Processor is C4: it turns a raw query string into a ProcessedQuery by
// running the tokenizer facade and then applying the variant-generation
// rule table of spec §4.4.
type Processor struct {
	facade *tokenize.Facade
	dict   *dictionary.Store
}

// New builds a Processor. dict may be nil only in tests that do not need
// compound detection.
func New(facade *tokenize.Facade, dict *dictionary.Store) *Processor {
	return &Processor{facade: facade, dict: dict}
}

// Process runs language detection, tokenization, and variant generation for
// query, returning at most maxVariants variants in descending weight order.
func (p *Processor) Process(ctx context.Context, q string, timeout time.Duration, maxVariants int) ProcessedQuery {
	if maxVariants <= 0 {
		maxVariants = defaultMaxVariants
	}
	lang := detectLanguage(q)

	out := ProcessedQuery{Original: q, Language: lang}
	out.Variants = append(out.Variants, QueryVariant{Text: q, Type: VariantOriginal, Weight: 1.0})

	if lang.ThaiFraction == 0 {
		// Pure non-Thai: ORIGINAL only.
		return out
	}

	tokRes := p.facade.Tokenize(ctx, q, timeout)
	out.Tokenization = tokRes

	if tokRes.Engine == tokenize.EngineFallback {
		out.Variants = append(out.Variants, QueryVariant{
			Text: q, Type: VariantFallback, Weight: 0.5, Engine: tokenize.EngineFallback,
		})
		return p.truncate(out, maxVariants)
	}

	if lang.MixedContent {
		out.Variants = append(out.Variants, p.mixedVariants(tokRes)...)
		return p.truncate(out, maxVariants)
	}

	// Pure Thai.
	if len(tokRes.Tokens) < 2 {
		return out
	}
	out.Variants = append(out.Variants, QueryVariant{
		Text:   strings.Join(tokRes.TokenStrings(), " "),
		Type:   VariantTokenized,
		Weight: 0.9,
		Engine: tokRes.Engine,
	})
	if compound, ok := p.firstCompound(tokRes); ok {
		out.Variants = append(out.Variants, QueryVariant{
			Text: compound, Type: VariantCompoundSplit, Weight: 0.7, Engine: tokRes.Engine,
		})
	}
	return p.truncate(out, maxVariants)
}

// mixedVariants builds TOKENIZED, THAI_ONLY and ENGLISH_ONLY variants for a
// mixed Thai-English query, per spec §4.4.
func (p *Processor) mixedVariants(tokRes tokenize.TokenizationResult) []QueryVariant {
	var variants []QueryVariant
	if len(tokRes.Tokens) > 0 {
		variants = append(variants, QueryVariant{
			Text:   strings.Join(tokRes.TokenStrings(), " "),
			Type:   VariantTokenized,
			Weight: 0.85,
			Engine: tokRes.Engine,
		})
	}
	var thaiParts, englishParts []string
	for _, t := range tokRes.Tokens {
		if IsThaiBearing(t.Text) {
			thaiParts = append(thaiParts, t.Text)
		} else {
			englishParts = append(englishParts, t.Text)
		}
	}
	if len(thaiParts) > 0 {
		variants = append(variants, QueryVariant{
			Text: strings.Join(thaiParts, " "), Type: VariantThaiOnly, Weight: 0.7, Engine: tokRes.Engine,
		})
	}
	if len(englishParts) > 0 {
		variants = append(variants, QueryVariant{
			Text: strings.Join(englishParts, " "), Type: VariantEnglishOnly, Weight: 0.7, Engine: tokRes.Engine,
		})
	}
	return variants
}

// firstCompound returns the earliest token in tokRes that is itself a
// recognized dictionary compound (such tokens come from newmm's dictionary
// longest match or from the facade merging spans found in the Dictionary
// Store).
func (p *Processor) firstCompound(tokRes tokenize.TokenizationResult) (string, bool) {
	if p.dict == nil {
		return "", false
	}
	for _, t := range tokRes.Tokens {
		if p.dict.Contains(t.Text) {
			return t.Text, true
		}
	}
	return "", false
}

// truncate enforces the invariant that variants are sorted by descending
// weight and capped at maxVariants, dropping the lowest-weight entries.
func (p *Processor) truncate(pq ProcessedQuery, maxVariants int) ProcessedQuery {
	sort.SliceStable(pq.Variants, func(i, j int) bool {
		return pq.Variants[i].Weight > pq.Variants[j].Weight
	})
	if len(pq.Variants) > maxVariants {
		pq.Variants = pq.Variants[:maxVariants]
	}
	return pq
}
