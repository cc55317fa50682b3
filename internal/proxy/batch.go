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
	"fmt"

	"golang.org/x/sync/semaphore"
)

// defaultBatchConcurrency bounds how many requests in one BatchSearch call
// run at once. It is distinct from a single Search's own internal variant
// fan-out (executor.Executor's semaphore) — this one bounds requests, that
// one bounds variants within a request.
const defaultBatchConcurrency = 10

// BatchSearch runs every request in reqs through Search, bounded to at most
// maxConcurrency requests in flight at once (0 or negative uses the
// default). Results preserve input order; a panic or error in one slot
// never affects another slot's result.
func (s *Service) BatchSearch(ctx context.Context, reqs []SearchRequest, maxConcurrency int) []SearchResponse {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultBatchConcurrency
	}
	n := len(reqs)
	results := make([]SearchResponse, n)
	if n == 0 {
		return results
	}

	sem := semaphore.NewWeighted(int64(maxConcurrency))
	done := make(chan int, n)
	for i, req := range reqs {
		i, req := i, req
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = SearchResponse{Error: err.Error()}
			done <- i
			continue
		}
		go func() {
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					results[i] = SearchResponse{Error: fmt.Sprintf("panic: %v", r)}
				}
				done <- i
			}()
			results[i] = s.Search(ctx, req)
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	return results
}
