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

package tokenize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpEngine talks to an out-of-process segmentation backend over HTTP, the
// same shape github.com/tassa-yoniso-manasi-karoto/go-pythainlp uses for its
// attacut/deepcut providers (a long-lived container, one POST per call).
// When no BaseURL is configured it falls back to a deterministic in-process
// stub so the facade's fallback ladder is exercisable in tests and in
// deployments that never stood up the optional containers.
type httpEngine struct {
	id      string
	baseURL string
	apiKey  string
	client  *http.Client
}

func newHTTPEngine(id string, opts EngineOptions) Tokenizer {
	return &httpEngine{
		id:      id,
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		client: &http.Client{
			Transport: &http.Transport{MaxIdleConnsPerHost: 10},
		},
	}
}

func (e *httpEngine) ID() string { return e.id }

type segmentRequest struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

type segmentResponse struct {
	Tokens      []string  `json:"tokens"`
	Confidences []float64 `json:"confidences,omitempty"`
}

func (e *httpEngine) Tokenize(ctx context.Context, text string) (TokenizationResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return TokenizationResult{}, &Error{Kind: ErrTimeout, Engine: e.id, Reason: err.Error()}
	}
	if len([]rune(text)) > maxInputRunes {
		return TokenizationResult{}, &Error{Kind: ErrInputTooLarge, Engine: e.id, Reason: "input exceeds maximum rune count"}
	}
	if text == "" {
		return TokenizationResult{OriginalText: text, Engine: e.id, Duration: time.Since(start), Success: true}, nil
	}
	if e.baseURL == "" {
		return e.stub(text, start), nil
	}

	body, err := json.Marshal(segmentRequest{Text: text, Engine: e.id})
	if err != nil {
		return TokenizationResult{}, &Error{Kind: ErrEngineInternal, Engine: e.id, Reason: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/tokenize", bytes.NewReader(body))
	if err != nil {
		return TokenizationResult{}, &Error{Kind: ErrEngineInternal, Engine: e.id, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return TokenizationResult{}, &Error{Kind: ErrTimeout, Engine: e.id, Reason: err.Error()}
		}
		return TokenizationResult{}, &Error{Kind: ErrEngineInternal, Engine: e.id, Reason: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return TokenizationResult{}, &Error{
			Kind:   ErrEngineInternal,
			Engine: e.id,
			Reason: fmt.Sprintf("backend returned status %d", resp.StatusCode),
		}
	}

	var parsed segmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return TokenizationResult{}, &Error{Kind: ErrEngineInternal, Engine: e.id, Reason: err.Error()}
	}
	tokens := make([]Token, len(parsed.Tokens))
	for i, t := range parsed.Tokens {
		conf := absentConfidence
		if i < len(parsed.Confidences) {
			conf = parsed.Confidences[i]
		}
		tokens[i] = Token{Text: t, Confidence: conf}
	}
	return TokenizationResult{
		OriginalText: text,
		Tokens:       tokens,
		Engine:       e.id,
		Duration:     time.Since(start),
		Success:      true,
	}, nil
}

// stub answers deterministically without any network dependency, using the
// same character-class segmentation primitive as newmm. It does no
// dictionary lookup, so each Thai run stays one token where newmm would
// split it on dictionary words; the two engines agree only on input with
// no dictionary words in it, and the stub reports confidence 0.9 per token.
// That is enough to exercise fallback-ladder and ranking logic that treats
// engines distinctly.
func (e *httpEngine) stub(text string, start time.Time) TokenizationResult {
	runes := []rune(text)
	tokens := make([]Token, 0, len(runes)/2+1)
	i := 0
	for i < len(runes) {
		class := runeClass(runes[i])
		j := i + 1
		for j < len(runes) && runeClass(runes[j]) == class {
			j++
		}
		if class != classSpace {
			tokens = append(tokens, Token{Text: string(runes[i:j]), Confidence: 0.9})
		}
		i = j
	}
	return TokenizationResult{
		OriginalText: text,
		Tokens:       tokens,
		Engine:       e.id,
		Duration:     time.Since(start),
		Success:      true,
	}
}
