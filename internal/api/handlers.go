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

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"searchproxy/internal/proxy"
	"searchproxy/internal/tokenize"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "search requires POST")
		return
	}
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if body.Query == "" || body.Index == "" {
		s.writeError(w, http.StatusBadRequest, "bad_request", "query and index are required")
		return
	}
	resp := s.svc.Search(r.Context(), toServiceRequest(body))
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleBatchSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "batch-search requires POST")
		return
	}
	var body batchSearchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if len(body.Queries) == 0 || body.Index == "" {
		s.writeError(w, http.StatusBadRequest, "bad_request", "queries and index_name are required")
		return
	}
	reqs := make([]proxy.SearchRequest, len(body.Queries))
	for i, q := range body.Queries {
		reqs[i] = toServiceRequest(searchRequestBody{Query: q, Index: body.Index, Options: body.Options})
	}
	results := s.svc.BatchSearch(r.Context(), reqs, body.MaxConcurrency)
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "tokenize requires POST")
		return
	}
	var body tokenizeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if body.Text == "" {
		s.writeError(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	start := time.Now()
	res, err := s.svc.TokenizeText(r.Context(), body.Text)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "tokenize_failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, toTokenizeResponse(res, time.Since(start)))
}

func (s *Server) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.svc.ConfigManager().Current())
	case http.MethodPut:
		s.writeError(w, http.StatusNotImplemented, "not_implemented",
			"runtime config mutation is not supported; edit the ranking config file or environment and trigger a hot reload")
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "admin config requires GET or PUT")
	}
}

// handleAdminConfigByType answers GET /api/v1/admin/config/:type, scoping
// the response to one named sub-section of the Snapshot (currently "ranking"
// and "search"); any other method gets 405.
func (s *Server) handleAdminConfigByType(w http.ResponseWriter, r *http.Request) {
	section := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/config/")
	if section == "" {
		s.handleAdminConfig(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "admin config/:type requires GET")
		return
	}
	snap := s.svc.ConfigManager().Current()
	switch section {
	case "ranking":
		s.writeJSON(w, http.StatusOK, map[string]any{"boosts": snap.Boosts, "min_score_threshold": snap.MinScoreThreshold})
	case "search":
		s.writeJSON(w, http.StatusOK, map[string]any{
			"primary_engine":           snap.PrimaryEngine,
			"fallback_engines":         snap.FallbackEngines,
			"max_concurrent_searches":  snap.MaxConcurrentSearches,
			"max_query_variants":       snap.MaxQueryVariants,
			"search_timeout_ms":        snap.SearchTimeout.Milliseconds(),
			"tokenizer_timeout_ms":     snap.TokenizerTimeout.Milliseconds(),
			"retry_attempts":           snap.RetryAttempts,
		})
	default:
		s.writeError(w, http.StatusNotFound, "not_found", "unknown config section: "+section)
	}
}

func (s *Server) handleAdminConfigValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "config/validate requires POST")
		return
	}
	snap := s.svc.ConfigManager().Current()
	if err := snap.Validate(); err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"valid": false, "reason": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) handleAdminHotReloadTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "hot-reload/trigger requires POST")
		return
	}
	cfg := s.svc.ConfigManager()
	if err := cfg.Reload(); err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"reloaded": false, "reason": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"reloaded": true, "reload_count": cfg.ReloadCount()})
}

func (s *Server) handleAdminHotReloadStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "hot-reload/status requires GET")
		return
	}
	cfg := s.svc.ConfigManager()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"reload_count":   cfg.ReloadCount(),
		"last_reload_at": cfg.LastReloadAt(),
		"last_error":     cfg.LastReloadError(),
	})
}

// defaultPageSize is used when a caller omits limit entirely. JSON cannot
// distinguish an omitted field from an explicit 0, so an explicit
// limit=0 request (which Service.Search treats as "return no hits but
// still populate total_hits") is only reachable by calling the Service
// directly, not through this HTTP layer.
const defaultPageSize = 10

// toTokenizeResponse builds the spec §6 wire shape for POST
// /api/v1/tokenize out of the Facade's TokenizationResult. word_boundaries
// are UTF-8 byte offsets into original_text (DESIGN.md resolves the open
// question of byte vs. codepoint offsets in favor of bytes): boundary i is
// the start offset of token i, and the final entry is the end offset of the
// last token, so the array always has len(tokens)+1 entries regardless of
// any separator the tokenizer dropped between tokens (e.g. whitespace).
func toTokenizeResponse(res tokenize.TokenizationResult, elapsed time.Duration) tokenizeResponseBody {
	tokens := make([]string, len(res.Tokens))
	confidences := make([]float64, len(res.Tokens))
	for i, t := range res.Tokens {
		tokens[i] = t.Text
		confidences[i] = t.Confidence
	}

	bounds := make([]int, len(tokens)+1)
	pos := 0
	for i, tok := range tokens {
		if idx := strings.Index(res.OriginalText[pos:], tok); idx >= 0 {
			pos += idx
		}
		bounds[i] = pos
		pos += len(tok)
	}
	bounds[len(tokens)] = pos

	return tokenizeResponseBody{
		OriginalText:     res.OriginalText,
		Tokens:           tokens,
		WordBoundaries:   bounds,
		ConfidenceScores: confidences,
		ProcessingTimeMs: float64(elapsed) / float64(time.Millisecond),
	}
}

func toServiceRequest(b searchRequestBody) proxy.SearchRequest {
	limit := b.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	return proxy.SearchRequest{
		Query:                   b.Query,
		Index:                   b.Index,
		Options:                 b.Options,
		Limit:                   limit,
		Offset:                  b.Offset,
		IncludeTokenizationInfo: b.IncludeTokenizationInfo,
	}
}
