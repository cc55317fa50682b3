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

package proxy

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"searchproxy/internal/config"
	"searchproxy/internal/dictionary"
	"searchproxy/internal/executor"
	"searchproxy/internal/indexengine"
	"searchproxy/internal/metrics"
	"searchproxy/internal/query"
	"searchproxy/internal/rank"
	"searchproxy/internal/tokenize"
)

// Service is C10: it wires the Config Manager, Dictionary Store, Tokenizer
// Registry, Index Engine Client, Search Executor, and Result Ranker into
// the single-request and batch flows of spec §4.10.
type Service struct {
	cfg      *config.Manager
	dict     *dictionary.Store
	registry *tokenize.Registry
	cache    Cache
	metrics  *metrics.Metrics
	logger   *zap.Logger
	inflight singleflight.Group

	clientMu   sync.Mutex
	clientHost string
	clientKey  string
	client     *indexengine.Client
}

// New builds a Service. m and logger may be nil in tests.
func New(cfg *config.Manager, dict *dictionary.Store, registry *tokenize.Registry, cache Cache, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{cfg: cfg, dict: dict, registry: registry, cache: cache, metrics: m, logger: logger}
}

// Search runs the single-request flow of spec §4.10, steps 1-8.
func (s *Service) Search(ctx context.Context, req SearchRequest) SearchResponse {
	start := time.Now()
	snap := s.cfg.Current()
	key := fingerprint(req)

	if s.metrics != nil {
		defer s.metrics.BeginSearch()()
	}

	if snap.CacheEnabled {
		if cached, ok := s.cache.Get(ctx, key); ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			return cached
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
	}

	// singleflight collapses concurrent identical requests into one
	// execution, preventing a cache-miss dogpile on a hot query.
	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		resp := s.execute(ctx, req, snap)
		if snap.CacheEnabled && resp.Error == "" {
			s.cache.Put(ctx, key, resp, snap.CacheTTL)
		}
		return resp, nil
	})
	resp := v.(SearchResponse)
	if err != nil {
		resp.Error = err.Error()
	}
	resp.ProcessingTimeMs = float64(time.Since(start)) / float64(time.Millisecond)

	if s.metrics != nil {
		outcome := "success"
		if resp.Error != "" {
			outcome = "failure"
		}
		s.metrics.ObserveSearch(outcome, time.Since(start), resp.QueryInfo.FallbackUsed)
	}
	return resp
}

func (s *Service) execute(ctx context.Context, req SearchRequest, snap config.Snapshot) SearchResponse {
	facade, err := s.buildFacade(snap)
	if err != nil {
		return SearchResponse{Error: err.Error()}
	}
	processor := query.New(facade, s.dict)
	pq := processor.Process(ctx, req.Query, snap.TokenizerTimeout, snap.MaxQueryVariants)

	client := s.getClient(snap)
	ex := executor.New(client, snap.MaxConcurrentSearches, s.logger)
	execResult := ex.Execute(ctx, req.Index, pq, req.Options, snap.SearchTimeout)

	weights := make(map[query.VariantType]float64, len(pq.Variants))
	thaiBearing := make(map[query.VariantType]bool, len(pq.Variants))
	for _, v := range pq.Variants {
		weights[v.Type] = v.Weight
		thaiBearing[v.Type] = query.IsThaiBearing(v.Text)
	}

	limit := req.Limit
	hits, total := rank.Rank(execResult.EngineResults, rank.Options{
		Boosts:              snap.Boosts,
		VariantWeights:      weights,
		MinScoreThreshold:   snap.MinScoreThreshold,
		Limit:               limit,
		Offset:              req.Offset,
		QueryThaiDetected:   pq.Language.ThaiFraction > 0,
		ThaiBearingVariants: thaiBearing,
	})

	qi := QueryInfo{
		OriginalQuery:       pq.Original,
		ThaiContentDetected: pq.Language.ThaiFraction > 0,
		MixedContent:        pq.Language.MixedContent,
		QueryVariantsUsed:   len(pq.Variants),
		FallbackUsed:        execResult.FallbackUsed,
	}
	if len(pq.Variants) > 0 {
		qi.ProcessedQuery = pq.Variants[0].Text
	}
	if req.IncludeTokenizationInfo {
		compounds := make([]string, 0)
		for _, t := range pq.Tokenization.Tokens {
			if s.dict != nil && s.dict.Contains(t.Text) {
				compounds = append(compounds, t.Text)
			}
		}
		qi.TokenizationInfo = &TokenizationInfo{
			PrimaryEngine:         pq.Tokenization.Engine,
			Tokens:                pq.Tokenization.TokenStrings(),
			CompoundWordsDetected: compounds,
		}
	}

	return SearchResponse{
		Hits:      hits,
		TotalHits: total,
		QueryInfo: qi,
		Pagination: Pagination{
			Offset:          req.Offset,
			Limit:           limit,
			TotalHits:       total,
			HasNextPage:     req.Offset+len(hits) < total,
			HasPreviousPage: req.Offset > 0,
		},
	}
}

// ConfigManager exposes the Config Manager for the admin HTTP routes
// (current snapshot, hot-reload trigger and status).
func (s *Service) ConfigManager() *config.Manager { return s.cfg }

// DictionaryStore exposes the Dictionary Store for health checks and
// dictionary-inspection admin routes.
func (s *Service) DictionaryStore() *dictionary.Store { return s.dict }

// Tokenize runs only the Query Processor stage (language detection,
// tokenization, variant generation) without touching the index engine.
// Search does not call it: execute builds the `include_tokenization_info`
// block itself from the ProcessedQuery it already holds.
func (s *Service) Tokenize(ctx context.Context, q string) (query.ProcessedQuery, error) {
	snap := s.cfg.Current()
	facade, err := s.buildFacade(snap)
	if err != nil {
		return query.ProcessedQuery{}, err
	}
	processor := query.New(facade, s.dict)
	return processor.Process(ctx, q, snap.TokenizerTimeout, snap.MaxQueryVariants), nil
}

// TokenizeText runs the tokenizer facade directly, with no variant
// generation or language-mix gating, backing POST /api/v1/tokenize (spec
// §6): callers of that endpoint want the Facade's own segmentation, not the
// Query Processor's downstream variant rules, so a pure-English or
// single-token-Thai input still reports its real token list here even
// though Process would treat it as ORIGINAL-only.
func (s *Service) TokenizeText(ctx context.Context, text string) (tokenize.TokenizationResult, error) {
	snap := s.cfg.Current()
	facade, err := s.buildFacade(snap)
	if err != nil {
		return tokenize.TokenizationResult{}, err
	}
	return facade.Tokenize(ctx, text, snap.TokenizerTimeout), nil
}

func (s *Service) buildFacade(snap config.Snapshot) (*tokenize.Facade, error) {
	opts := tokenize.EngineOptions{Dictionary: s.dict}
	primary, err := s.registry.Build(snap.PrimaryEngine, opts)
	if err != nil {
		return nil, err
	}
	fallbacks := make([]tokenize.Tokenizer, 0, len(snap.FallbackEngines))
	for _, id := range snap.FallbackEngines {
		eng, err := s.registry.Build(id, opts)
		if err != nil {
			continue
		}
		fallbacks = append(fallbacks, eng)
	}
	return tokenize.NewFacade(primary, fallbacks, s.dict, s.logger), nil
}

func (s *Service) getClient(snap config.Snapshot) *indexengine.Client {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	if s.client != nil && s.clientHost == snap.IndexEngineHost && s.clientKey == snap.IndexEngineAPIKey {
		return s.client
	}
	s.client = indexengine.New(snap.IndexEngineHost, snap.IndexEngineAPIKey,
		indexengine.WithMaxRetries(snap.RetryAttempts), indexengine.WithLogger(s.logger))
	s.clientHost = snap.IndexEngineHost
	s.clientKey = snap.IndexEngineAPIKey
	return s.client
}
