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

package rank

import (
	"sort"

	"github.com/samber/lo"

	"searchproxy/internal/indexengine"
	"searchproxy/internal/query"
)

// Options configures a single Rank call.
type Options struct {
	Boosts            BoostTable
	VariantWeights    map[query.VariantType]float64
	MinScoreThreshold float64
	Limit             int
	Offset            int

	// QueryThaiDetected and ThaiBearingVariants carry spec §4.7 Step 3's
	// language-boost inputs from the ProcessedQuery: QueryThaiDetected is
	// true when the query itself was detected as containing Thai text
	// (ProcessedQuery.Language.ThaiFraction > 0), and ThaiBearingVariants
	// reports, per variant type present in this Rank call, whether that
	// variant's own text is Thai-bearing. Both default to zero-value
	// (false / nil), under which Step 3's Thai-match boost never applies.
	QueryThaiDetected   bool
	ThaiBearingVariants map[query.VariantType]bool
}

// Rank implements spec §4.6 end to end: per-variant normalization,
// cross-variant deduplication and accumulation, type/language boosting,
// final clamp-to-1.0 normalization, deterministic ordering, threshold
// filtering, and limit/offset pagination. Returns the page of hits plus the
// total count of unique documents surviving the threshold filter (before
// pagination).
func Rank(results []indexengine.EngineSearchResult, opts Options) ([]RankedHit, int) {
	type accum struct {
		docID        string
		best         float64
		bestVariant  query.VariantType
		bestWeight   float64
		contributors map[query.VariantType]float64
		payload      map[string]any
		highlights   []string
	}
	byDoc := make(map[string]*accum)

	for _, res := range results {
		if res.Err != nil || len(res.Hits) == 0 {
			continue
		}
		vType := query.VariantType(res.VariantType)
		weight := opts.VariantWeights[vType]
		boost := opts.Boosts.For(vType)
		langBoost := 1.0
		if opts.QueryThaiDetected && opts.ThaiBearingVariants[vType] {
			langBoost *= positiveOr1(opts.Boosts.ThaiMatch)
		}
		if vType == query.VariantCompoundSplit {
			langBoost *= positiveOr1(opts.Boosts.CompoundMatch)
		}
		normalized := minMaxNormalize(res.Hits)

		for i, hit := range res.Hits {
			contribution := weight * normalized[i] * boost * langBoost
			a, ok := byDoc[hit.DocumentID]
			if !ok {
				a = &accum{docID: hit.DocumentID, contributors: make(map[query.VariantType]float64)}
				byDoc[hit.DocumentID] = a
			}
			if contribution > a.contributors[vType] {
				a.contributors[vType] = contribution
			}
			if contribution > a.best {
				a.best = contribution
				a.bestVariant = vType
				a.bestWeight = weight
				a.payload = hit.Payload
				a.highlights = hit.Highlights
			}
		}
	}

	maxBest := 0.0
	for _, a := range byDoc {
		if a.best > maxBest {
			maxBest = a.best
		}
	}

	hits := lo.MapToSlice(byDoc, func(_ string, a *accum) RankedHit {
		score := 0.0
		if maxBest > 0 {
			score = a.best / maxBest
		}
		return RankedHit{
			DocumentID:   a.docID,
			Score:        score,
			BestVariant:  a.bestVariant,
			Contributors: a.contributors,
			Payload:      a.payload,
			Highlights:   a.highlights,
		}
	})

	weightOf := func(h RankedHit) float64 { return opts.VariantWeights[h.BestVariant] }
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		ci, cj := len(hits[i].Contributors), len(hits[j].Contributors)
		if ci != cj {
			return ci > cj
		}
		wi, wj := weightOf(hits[i]), weightOf(hits[j])
		if wi != wj {
			return wi > wj
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	filtered := lo.Filter(hits, func(h RankedHit, _ int) bool {
		return h.Score >= opts.MinScoreThreshold
	})
	total := len(filtered)

	return paginate(filtered, opts.Offset, opts.Limit), total
}

// positiveOr1 treats an unset (zero-value) boost as "disabled" rather than
// as a literal zero multiplier, so callers who don't populate the Step 3
// language-boost fields (most existing tests) get Step 3 as a no-op.
func positiveOr1(v float64) float64 {
	if v <= 0 {
		return 1.0
	}
	return v
}

// minMaxNormalize rescales raw engine scores into [0,1]. If every score is
// equal, every hit gets 1.0.
func minMaxNormalize(hits []indexengine.RawHit) []float64 {
	out := make([]float64, len(hits))
	if len(hits) == 0 {
		return out
	}
	min, max := hits[0].Score, hits[0].Score
	for _, h := range hits {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}
	if max == min {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	for i, h := range hits {
		out[i] = (h.Score - min) / (max - min)
	}
	return out
}

func paginate(hits []RankedHit, offset, limit int) []RankedHit {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return []RankedHit{}
	}
	end := len(hits)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	if limit == 0 {
		return []RankedHit{}
	}
	return hits[offset:end]
}
