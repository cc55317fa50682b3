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

// Package proxy implements the Search Proxy Service (C10): the
// single-request orchestration flow (cache -> query processor -> search
// executor -> result ranker -> response) and the bounded-concurrency
// batch driver built on top of it.
package proxy

import (
	"searchproxy/internal/indexengine"
	"searchproxy/internal/rank"
)

// SearchRequest is the internal representation of a single search call,
// already decoded from its external JSON shape.
type SearchRequest struct {
	Query                   string
	Index                   string
	Options                 indexengine.SearchOptions
	Limit                   int
	Offset                  int
	IncludeTokenizationInfo bool
}

// TokenizationInfo summarizes the primary tokenization pass for the
// optional query_info.tokenization_info response field.
type TokenizationInfo struct {
	PrimaryEngine          string   `json:"primary_engine"`
	Tokens                 []string `json:"tokens"`
	CompoundWordsDetected  []string `json:"compound_words_detected"`
}

// QueryInfo is the query_info block of SearchResponse.
type QueryInfo struct {
	OriginalQuery      string             `json:"original_query"`
	ProcessedQuery     string             `json:"processed_query"`
	ThaiContentDetected bool              `json:"thai_content_detected"`
	MixedContent       bool               `json:"mixed_content"`
	QueryVariantsUsed  int                `json:"query_variants_used"`
	FallbackUsed       bool               `json:"fallback_used"`
	TokenizationInfo   *TokenizationInfo  `json:"tokenization_info,omitempty"`
}

// Pagination is the pagination block of SearchResponse.
type Pagination struct {
	Offset          int  `json:"offset"`
	Limit           int  `json:"limit"`
	TotalHits       int  `json:"total_hits"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// SearchResponse is the external contract for one search call.
type SearchResponse struct {
	Hits             []rank.RankedHit `json:"hits"`
	TotalHits        int              `json:"total_hits"`
	ProcessingTimeMs float64          `json:"processing_time_ms"`
	QueryInfo        QueryInfo        `json:"query_info"`
	Pagination       Pagination       `json:"pagination"`
	Error            string           `json:"error,omitempty"`
}
