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

package config

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// recognizedKeys lists the environment variables named in spec §6. FromEnv
// additionally reads BOOST_THAI_MATCH and BOOST_COMPOUND_MATCH, which are not
// in this list.
var recognizedKeys = []string{
	"PRIMARY_ENGINE", "FALLBACK_ENGINES", "TOKENIZER_TIMEOUT_MS",
	"MAX_CONCURRENT_SEARCHES", "MAX_QUERY_VARIANTS", "SEARCH_TIMEOUT_MS",
	"RETRY_ATTEMPTS", "BOOST_EXACT", "BOOST_TOKENIZED", "BOOST_COMPOUND",
	"BOOST_THAI", "MIN_SCORE_THRESHOLD", "CACHE_ENABLED", "CACHE_TTL_SECONDS",
	"ENABLE_HOT_RELOAD", "API_KEY_REQUIRED", "INDEX_ENGINE_HOST",
	"INDEX_ENGINE_API_KEY", "DICTIONARY_PATH",
}

// FromEnv overlays recognized keys present in env onto base, coercing
// string values with github.com/spf13/cast. Keys absent from env leave
// base's field untouched.
func FromEnv(base Snapshot, env map[string]string) Snapshot {
	out := base
	get := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok && v != ""
	}

	if v, ok := get("PRIMARY_ENGINE"); ok {
		out.PrimaryEngine = v
	}
	if v, ok := get("FALLBACK_ENGINES"); ok {
		out.FallbackEngines = splitNonEmpty(v, ",")
	}
	if v, ok := get("TOKENIZER_TIMEOUT_MS"); ok {
		out.TokenizerTimeout = time.Duration(cast.ToInt64(v)) * time.Millisecond
	}
	if v, ok := get("MAX_CONCURRENT_SEARCHES"); ok {
		out.MaxConcurrentSearches = cast.ToInt(v)
	}
	if v, ok := get("MAX_QUERY_VARIANTS"); ok {
		out.MaxQueryVariants = cast.ToInt(v)
	}
	if v, ok := get("SEARCH_TIMEOUT_MS"); ok {
		out.SearchTimeout = time.Duration(cast.ToInt64(v)) * time.Millisecond
	}
	if v, ok := get("RETRY_ATTEMPTS"); ok {
		out.RetryAttempts = cast.ToInt(v)
	}
	if v, ok := get("BOOST_EXACT"); ok {
		out.Boosts.Exact = cast.ToFloat64(v)
	}
	if v, ok := get("BOOST_TOKENIZED"); ok {
		out.Boosts.Tokenized = cast.ToFloat64(v)
	}
	if v, ok := get("BOOST_COMPOUND"); ok {
		out.Boosts.Compound = cast.ToFloat64(v)
	}
	if v, ok := get("BOOST_THAI"); ok {
		out.Boosts.ThaiOrEnglish = cast.ToFloat64(v)
	}
	if v, ok := get("BOOST_THAI_MATCH"); ok {
		out.Boosts.ThaiMatch = cast.ToFloat64(v)
	}
	if v, ok := get("BOOST_COMPOUND_MATCH"); ok {
		out.Boosts.CompoundMatch = cast.ToFloat64(v)
	}
	if v, ok := get("MIN_SCORE_THRESHOLD"); ok {
		out.MinScoreThreshold = cast.ToFloat64(v)
	}
	if v, ok := get("CACHE_ENABLED"); ok {
		out.CacheEnabled = cast.ToBool(v)
	}
	if v, ok := get("CACHE_TTL_SECONDS"); ok {
		out.CacheTTL = time.Duration(cast.ToInt64(v)) * time.Second
	}
	if v, ok := get("ENABLE_HOT_RELOAD"); ok {
		out.EnableHotReload = cast.ToBool(v)
	}
	if v, ok := get("API_KEY_REQUIRED"); ok {
		out.APIKeyRequired = cast.ToBool(v)
	}
	if v, ok := get("INDEX_ENGINE_HOST"); ok {
		out.IndexEngineHost = v
	}
	if v, ok := get("INDEX_ENGINE_API_KEY"); ok {
		out.IndexEngineAPIKey = v
	}
	if v, ok := get("DICTIONARY_PATH"); ok {
		out.DictionaryPath = v
	}
	return out
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
