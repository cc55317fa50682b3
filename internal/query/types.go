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

// Package query implements the Query Processor (C4): language detection
// and the weighted query-variant generation rule table.
package query

import "searchproxy/internal/tokenize"

// VariantType tags a QueryVariant with how it was derived from the
// original input.
type VariantType string

const (
	VariantOriginal      VariantType = "ORIGINAL"
	VariantTokenized      VariantType = "TOKENIZED"
	VariantCompoundSplit  VariantType = "COMPOUND_SPLIT"
	VariantThaiOnly       VariantType = "THAI_ONLY"
	VariantEnglishOnly    VariantType = "ENGLISH_ONLY"
	VariantPhrase         VariantType = "PHRASE"
	VariantFallback       VariantType = "FALLBACK"
)

// QueryVariant is one query string to send to the index engine.
type QueryVariant struct {
	Text   string
	Type   VariantType
	Weight float64 // in (0.0, 1.0]
	// Engine is the tokenizer engine id that produced this variant's
	// text, if any; empty when the variant is not engine-derived
	// (ORIGINAL, PHRASE).
	Engine string
	Phrase bool
}

// LanguageMix describes the Thai/English composition of a query.
type LanguageMix struct {
	ThaiFraction float64
	HasEnglish   bool
	MixedContent bool
}

// ProcessedQuery is the Query Processor's output. At least one variant (the
// original) is always present, and variants appear in descending weight
// order.
type ProcessedQuery struct {
	Original     string
	Language     LanguageMix
	Tokenization tokenize.TokenizationResult
	Variants     []QueryVariant
}
