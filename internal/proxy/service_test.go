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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"searchproxy/internal/config"
	"searchproxy/internal/dictionary"
	"searchproxy/internal/indexengine"
	"searchproxy/internal/tokenize"
)

// fakeEngineServer answers every search with one hit whose score depends on
// the query text length, just enough variance to exercise ranking.
func fakeEngineServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{
				{"document_id": "doc-1", "score": float64(len(body.Query) + 1)},
			},
			"total_hits": 1,
		})
	}))
}

func newTestService(t *testing.T, engineURL string) *Service {
	t.Helper()
	snap := config.Default()
	snap.IndexEngineHost = engineURL
	cfg, err := config.New(func() (config.Snapshot, error) { return snap, nil }, zap.NewNop())
	require.NoError(t, err)

	dict := dictionary.New(zap.NewNop())
	registry := tokenize.NewRegistry()
	return New(cfg, dict, registry, nil, nil, zap.NewNop())
}

func TestServiceSearchReturnsRankedHits(t *testing.T) {
	srv := fakeEngineServer(t)
	defer srv.Close()

	s := newTestService(t, srv.URL)
	resp := s.Search(context.Background(), SearchRequest{Query: "hello world", Index: "docs", Limit: 10})

	require.Empty(t, resp.Error)
	require.NotEmpty(t, resp.Hits)
	require.Equal(t, "doc-1", resp.Hits[0].DocumentID)
	require.False(t, resp.QueryInfo.ThaiContentDetected)
}

func TestServiceSearchCachesSecondCall(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits":       []map[string]any{{"document_id": "doc-1", "score": 1.0}},
			"total_hits": 1,
		})
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	req := SearchRequest{Query: "hello", Index: "docs", Limit: 10}

	first := s.Search(context.Background(), req)
	second := s.Search(context.Background(), req)

	require.Equal(t, first.Hits, second.Hits)
	require.Equal(t, 1, calls, "second identical request should be served from cache")
}

func TestServiceSearchThaiQueryPopulatesTokenizationInfo(t *testing.T) {
	srv := fakeEngineServer(t)
	defer srv.Close()

	s := newTestService(t, srv.URL)
	resp := s.Search(context.Background(), SearchRequest{
		Query: "ข้าวผัดกุ้ง", Index: "docs", Limit: 10, IncludeTokenizationInfo: true,
	})

	require.Empty(t, resp.Error)
	require.True(t, resp.QueryInfo.ThaiContentDetected)
	require.NotNil(t, resp.QueryInfo.TokenizationInfo)
	require.NotEmpty(t, resp.QueryInfo.TokenizationInfo.Tokens)
}

func TestServiceGetClientRebuildsOnHostChange(t *testing.T) {
	snap := config.Default()
	snap.IndexEngineHost = "http://host-a"
	cfg, err := config.New(func() (config.Snapshot, error) { return snap, nil }, zap.NewNop())
	require.NoError(t, err)

	s := New(cfg, dictionary.New(zap.NewNop()), tokenize.NewRegistry(), nil, nil, zap.NewNop())
	clientA := s.getClient(snap)
	clientAgain := s.getClient(snap)
	require.Same(t, clientA, clientAgain, "unchanged host/key should reuse the cached client")

	snap.IndexEngineHost = "http://host-b"
	clientB := s.getClient(snap)
	require.NotSame(t, clientA, clientB, "changed host should rebuild the client")
}

var _ indexengine.Searcher = (*indexengine.Client)(nil)
