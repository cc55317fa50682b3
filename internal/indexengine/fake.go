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

package indexengine

import (
	"context"
	"sync"
	"time"
)

// Searcher is the capability the executor depends on; Client implements it
// against a real backend, FakeClient against canned responses in tests.
type Searcher interface {
	Search(ctx context.Context, index, variantText string, opts SearchOptions, timeout time.Duration) (EngineSearchResult, error)
	SearchBare(ctx context.Context, index, variantText string, opts SearchOptions, timeout time.Duration) (EngineSearchResult, error)
}

// FakeClient is a deterministic test double: canned responses or errors
// keyed by variant text, with call recording for assertions.
type FakeClient struct {
	mu        sync.Mutex
	Responses map[string]EngineSearchResult
	Errors    map[string]error
	Calls     []string
}

// NewFakeClient returns an empty FakeClient ready for its maps to be
// populated by the caller.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Responses: make(map[string]EngineSearchResult),
		Errors:    make(map[string]error),
	}
}

func (f *FakeClient) Search(ctx context.Context, index, variantText string, opts SearchOptions, timeout time.Duration) (EngineSearchResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, variantText)
	f.mu.Unlock()

	if err, ok := f.Errors[variantText]; ok {
		return EngineSearchResult{VariantText: variantText, Err: err}, err
	}
	if res, ok := f.Responses[variantText]; ok {
		res.VariantText = variantText
		return res, nil
	}
	return EngineSearchResult{VariantText: variantText}, nil
}

// SearchBare behaves identically to Search for the FakeClient: there is no
// retry loop to bypass since the fake never retries in the first place.
func (f *FakeClient) SearchBare(ctx context.Context, index, variantText string, opts SearchOptions, timeout time.Duration) (EngineSearchResult, error) {
	return f.Search(ctx, index, variantText, opts, timeout)
}
