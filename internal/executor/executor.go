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

// Package executor implements the Search Executor (C6): bounded-parallel
// fan-out of one index-engine search per query variant.
package executor

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"searchproxy/internal/indexengine"
	"searchproxy/internal/query"
)

// Executor issues one search per ProcessedQuery variant, bounded by
// maxConcurrency in-flight calls at a time, and never returns fewer results
// than variants attempted: every variant's outcome (success or failure) is
// reported.
type Executor struct {
	client         indexengine.Searcher
	maxConcurrency int64
	logger         *zap.Logger
}

// New builds an Executor. maxConcurrency <= 0 defaults to 1.
func New(client indexengine.Searcher, maxConcurrency int, logger *zap.Logger) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{client: client, maxConcurrency: int64(maxConcurrency), logger: logger}
}

// Result bundles the executor's output with the degrade-don't-fail
// fallback flag the ranker and API layer both need to see.
type Result struct {
	EngineResults []indexengine.EngineSearchResult
	FallbackUsed  bool
}

// Execute searches index with every variant in pq, in pq's weight-descending
// order, preserving that order in the returned slice regardless of
// completion order. If every variant attempt fails, it performs one
// additional bare (no-retry) attempt against the ORIGINAL query text and
// reports FallbackUsed.
func (e *Executor) Execute(ctx context.Context, index string, pq query.ProcessedQuery, opts indexengine.SearchOptions, timeout time.Duration) Result {
	n := len(pq.Variants)
	results := make([]indexengine.EngineSearchResult, n)

	sem := semaphore.NewWeighted(e.maxConcurrency)
	done := make(chan int, n)
	for i, v := range pq.Variants {
		i, v := i, v
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = indexengine.EngineSearchResult{VariantText: v.Text, VariantType: string(v.Type), Err: err}
			done <- i
			continue
		}
		go func() {
			defer sem.Release(1)
			res, err := e.client.Search(ctx, index, v.Text, opts, timeout)
			res.VariantType = string(v.Type)
			if err != nil {
				e.logger.Warn("variant search failed", zap.String("variant", string(v.Type)), zap.Error(err))
			}
			results[i] = res
			done <- i
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	anySucceeded := false
	for _, r := range results {
		if r.Err == nil {
			anySucceeded = true
			break
		}
	}
	if anySucceeded || n == 0 {
		return Result{EngineResults: results, FallbackUsed: false}
	}

	fallback, _ := e.client.SearchBare(ctx, index, pq.Original, opts, timeout)
	fallback.VariantType = "ORIGINAL"
	return Result{EngineResults: append(results, fallback), FallbackUsed: true}
}
