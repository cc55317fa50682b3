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

// Package api implements the public-facing HTTP server: request decoding,
// API-key authentication, routing, and the admin/inspection endpoints
// layered on top of the Search Proxy Service.
package api

import "searchproxy/internal/indexengine"

// searchRequestBody is the external JSON shape of a single search call.
type searchRequestBody struct {
	Query                   string                    `json:"query"`
	Index                   string                    `json:"index"`
	Options                 indexengine.SearchOptions `json:"options,omitempty"`
	Limit                   int                       `json:"limit,omitempty"`
	Offset                  int                       `json:"offset,omitempty"`
	IncludeTokenizationInfo bool                      `json:"include_tokenization_info,omitempty"`
}

// batchSearchRequestBody is the external JSON shape of a batch call: spec
// §6 documents one shared index and options applied to every query in the
// batch, not a per-request override list.
type batchSearchRequestBody struct {
	Queries        []string                  `json:"queries"`
	Index          string                    `json:"index_name"`
	Options        indexengine.SearchOptions `json:"options,omitempty"`
	MaxConcurrency int                       `json:"max_concurrency,omitempty"`
}

// tokenizeRequestBody is the external JSON shape of the standalone
// tokenization-inspection endpoint. Engine is accepted but not yet wired to
// an engine override; the service always tokenizes with the ConfigSnapshot's
// configured primary/fallback ladder.
type tokenizeRequestBody struct {
	Text   string `json:"text"`
	Engine string `json:"engine,omitempty"`
}

// tokenizeResponseBody is the external JSON shape spec §6 documents for
// POST /api/v1/tokenize.
type tokenizeResponseBody struct {
	OriginalText      string    `json:"original_text"`
	Tokens            []string  `json:"tokens"`
	WordBoundaries    []int     `json:"word_boundaries"`
	ConfidenceScores  []float64 `json:"confidence_scores,omitempty"`
	ProcessingTimeMs  float64   `json:"processing_time_ms"`
}

// errorBody is the standard error-response shape every failing endpoint
// returns.
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// versionBody answers GET /api/v1/version.
type versionBody struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}
