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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client talks to one index engine host over HTTP, with a bounded
// keep-alive pool and exponential-backoff-with-jitter retries on transient
// failures. Safe for concurrent use; one Client is shared by every variant
// search a request issues.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger

	maxRetries int
	retryBase  time.Duration
	retryCap   time.Duration
}

// Option configures a Client constructed by New.
type Option func(*Client)

// WithMaxIdleConnsPerHost overrides the default bounded keep-alive pool
// size (10), per spec §4.5.
func WithMaxIdleConnsPerHost(n int) Option {
	return func(c *Client) {
		c.httpClient.Transport.(*http.Transport).MaxIdleConnsPerHost = n
	}
}

// WithMaxRetries overrides the default retry attempt count.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithLogger attaches a logger; a nil logger defaults to a no-op one.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client against baseURL, authenticating with apiKey as a
// bearer token (an empty apiKey disables the Authorization header).
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{MaxIdleConnsPerHost: 10},
		},
		logger:     zap.NewNop(),
		maxRetries: 3,
		retryBase:  100 * time.Millisecond,
		retryCap:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequestBody struct {
	Index   string        `json:"index"`
	Query   string        `json:"query"`
	Options SearchOptions `json:"options,omitempty"`
}

type searchResponseBody struct {
	Hits      []RawHit `json:"hits"`
	TotalHits int      `json:"total_hits"`
}

// Search issues one search call for variantText against index, retrying on
// network errors, timeouts, and 5xx responses. 4xx responses are never
// retried: they indicate a malformed request, not a transient fault.
func (c *Client) Search(ctx context.Context, index, variantText string, opts SearchOptions, timeout time.Duration) (EngineSearchResult, error) {
	start := time.Now()
	result := EngineSearchResult{VariantText: variantText}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	attempts := c.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := backoff(c.retryBase, c.retryCap, attempt)
			select {
			case <-time.After(wait):
			case <-callCtx.Done():
				result.Err = callCtx.Err()
				result.Latency = time.Since(start)
				return result, result.Err
			}
		}

		body, err := c.doSearch(callCtx, index, variantText, opts)
		if err == nil {
			result.Hits = body.Hits
			result.TotalHits = body.TotalHits
			result.Latency = time.Since(start)
			return result, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
		c.logger.Warn("index engine search attempt failed, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
	}

	result.Err = lastErr
	result.Latency = time.Since(start)
	return result, lastErr
}

// SearchBare issues a single search attempt with no retries, used by the
// executor's last-resort fallback call when every variant has failed.
func (c *Client) SearchBare(ctx context.Context, index, variantText string, opts SearchOptions, timeout time.Duration) (EngineSearchResult, error) {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := EngineSearchResult{VariantText: variantText}
	body, err := c.doSearch(callCtx, index, variantText, opts)
	result.Latency = time.Since(start)
	if err != nil {
		result.Err = err
		return result, err
	}
	result.Hits = body.Hits
	result.TotalHits = body.TotalHits
	return result, nil
}

func (c *Client) doSearch(ctx context.Context, index, variantText string, opts SearchOptions) (searchResponseBody, error) {
	reqBody, err := json.Marshal(searchRequestBody{Index: index, Query: variantText, Options: opts})
	if err != nil {
		return searchResponseBody{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(reqBody))
	if err != nil {
		return searchResponseBody{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return searchResponseBody{}, &httpError{retryable: true, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return searchResponseBody{}, &httpError{retryable: true, err: fmt.Errorf("index engine returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return searchResponseBody{}, &httpError{retryable: false, err: fmt.Errorf("index engine returned status %d", resp.StatusCode)}
	}

	var parsed searchResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return searchResponseBody{}, &httpError{retryable: false, err: err}
	}
	return parsed, nil
}

// httpError distinguishes retryable from terminal failures without leaking
// the distinction into the caller's error type.
type httpError struct {
	retryable bool
	err       error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	he, ok := err.(*httpError)
	if !ok {
		return true // errors not wrapped as httpError (request encoding/construction): treat as transient
	}
	return he.retryable
}

// backoff computes base*2^(attempt-1) for retry number attempt (1 for the
// first retry), jittered by up to 50% extra and capped at cap.
func backoff(base, cap time.Duration, attempt int) time.Duration {
	d := base << uint(attempt-1)
	if d > cap || d <= 0 {
		d = cap
	}
	jitter := time.Duration(rand.Float64() * 0.5 * float64(d))
	total := d + jitter
	if total > cap {
		total = cap
	}
	return total
}
