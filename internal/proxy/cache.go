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
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores SearchResponses by fingerprint with a TTL. Put-if-absent
// dogpile prevention across concurrent identical requests is the
// Service's responsibility (via golang.org/x/sync/singleflight), not the
// Cache's — a Cache only needs to answer Get/Put.
type Cache interface {
	Get(ctx context.Context, key string) (SearchResponse, bool)
	Put(ctx context.Context, key string, resp SearchResponse, ttl time.Duration)
}

// memoryEntry pairs a cached response with its absolute expiry.
type memoryEntry struct {
	resp      SearchResponse
	expiresAt time.Time
}

// MemoryCache is the default in-process Cache: a sync.Map keyed by
// fingerprint, checked for expiry on Get.
type MemoryCache struct {
	entries sync.Map // string -> memoryEntry
}

// NewMemoryCache returns a ready-to-use MemoryCache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Get(ctx context.Context, key string) (SearchResponse, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return SearchResponse{}, false
	}
	e := v.(memoryEntry)
	if time.Now().After(e.expiresAt) {
		c.entries.Delete(key)
		return SearchResponse{}, false
	}
	return e.resp, true
}

func (c *MemoryCache) Put(ctx context.Context, key string, resp SearchResponse, ttl time.Duration) {
	c.entries.Store(key, memoryEntry{resp: resp, expiresAt: time.Now().Add(ttl)})
}

// RedisCache backs the result cache with github.com/redis/go-redis/v9,
// for deployments that want the cache to survive a process restart or be
// shared across replicas.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache builds a RedisCache against addr.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (SearchResponse, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return SearchResponse{}, false
	}
	var resp SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return SearchResponse{}, false
	}
	return resp, true
}

func (c *RedisCache) Put(ctx context.Context, key string, resp SearchResponse, ttl time.Duration) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, ttl)
}
