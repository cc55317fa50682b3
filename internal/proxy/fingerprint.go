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
	"fmt"
	"hash/fnv"
	"sort"
)

// fingerprint computes hash(query ∥ index ∥ relevant-options), per spec
// §7's cache-key definition. Option values are sorted by key first so
// map-iteration order never perturbs the hash.
func fingerprint(req SearchRequest) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(req.Query))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(req.Index))
	_, _ = h.Write([]byte{0})
	fmt.Fprintf(h, "limit=%d;offset=%d;", req.Limit, req.Offset)
	fmt.Fprintf(h, "tokinfo=%t;", req.IncludeTokenizationInfo)

	keys := make([]string, 0, len(req.Options))
	for k := range req.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, req.Options[k])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
