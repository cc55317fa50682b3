package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchproxy/internal/indexengine"
	"searchproxy/internal/query"
)

func defaultOpts() Options {
	return Options{
		Boosts: DefaultBoostTable(),
		VariantWeights: map[query.VariantType]float64{
			query.VariantOriginal:  1.0,
			query.VariantTokenized: 0.9,
		},
		Limit:  20,
		Offset: 0,
	}
}

func TestRankTopHitIsExactlyOne(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{
			{DocumentID: "a", Score: 10}, {DocumentID: "b", Score: 5},
		}},
	}
	hits, total := Rank(results, defaultOpts())
	require.Equal(t, 2, total)
	assert.Equal(t, "a", hits[0].DocumentID)
	assert.Equal(t, 1.0, hits[0].Score)
}

func TestRankDeduplicatesAcrossVariantsByBestContribution(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{{DocumentID: "a", Score: 1}}},
		{VariantType: string(query.VariantTokenized), Hits: []indexengine.RawHit{{DocumentID: "a", Score: 1}}},
	}
	hits, total := Rank(results, defaultOpts())
	require.Equal(t, 1, total)
	assert.Len(t, hits[0].Contributors, 2)
}

func TestRankFailedVariantsDoNotContribute(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{{DocumentID: "a", Score: 1}}},
		{VariantType: string(query.VariantTokenized), Err: assert.AnError},
	}
	hits, total := Rank(results, defaultOpts())
	require.Equal(t, 1, total)
	assert.Len(t, hits[0].Contributors, 1)
}

func TestRankMinScoreThresholdAppliedPostNormalization(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{
			{DocumentID: "a", Score: 10}, {DocumentID: "b", Score: 1},
		}},
	}
	opts := defaultOpts()
	opts.MinScoreThreshold = 0.5
	hits, total := Rank(results, opts)
	require.Equal(t, 1, total)
	assert.Equal(t, "a", hits[0].DocumentID)
}

func TestRankPagination(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{
			{DocumentID: "a", Score: 3}, {DocumentID: "b", Score: 2}, {DocumentID: "c", Score: 1},
		}},
	}
	opts := defaultOpts()
	opts.Limit = 1
	opts.Offset = 1
	hits, total := Rank(results, opts)
	assert.Equal(t, 3, total)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].DocumentID)
}

func TestRankLimitZeroYieldsEmptyHitsButPopulatedTotal(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{{DocumentID: "a", Score: 1}}},
	}
	opts := defaultOpts()
	opts.Limit = 0
	hits, total := Rank(results, opts)
	assert.Empty(t, hits)
	assert.Equal(t, 1, total)
}

func TestRankAppliesThaiMatchBoostOnlyToThaiBearingVariant(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantThaiOnly), Hits: []indexengine.RawHit{{DocumentID: "thai-hit", Score: 1}}},
		{VariantType: string(query.VariantEnglishOnly), Hits: []indexengine.RawHit{{DocumentID: "english-hit", Score: 1}}},
	}
	opts := Options{
		Boosts: BoostTable{Exact: 1, Tokenized: 1, Compound: 1, ThaiOrEnglish: 1, ThaiMatch: 1.4, CompoundMatch: 1},
		VariantWeights: map[query.VariantType]float64{
			query.VariantThaiOnly:    1.0,
			query.VariantEnglishOnly: 1.0,
		},
		Limit:               20,
		QueryThaiDetected:   true,
		ThaiBearingVariants: map[query.VariantType]bool{query.VariantThaiOnly: true, query.VariantEnglishOnly: false},
	}
	hits, _ := Rank(results, opts)

	scores := map[string]float64{}
	for _, h := range hits {
		scores[h.DocumentID] = h.Score
	}
	// Every Step 1/2 factor is equalized above (weight, normalized score,
	// type boost), so only Step 3's ThaiMatch multiplier can explain the
	// Thai-bearing variant's hit outscoring the English one.
	assert.Greater(t, scores["thai-hit"], scores["english-hit"])
}

func TestRankAppliesCompoundMatchBoostToCompoundSplitVariant(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantTokenized), Hits: []indexengine.RawHit{{DocumentID: "tokenized", Score: 1}}},
		{VariantType: string(query.VariantCompoundSplit), Hits: []indexengine.RawHit{{DocumentID: "compound", Score: 1}}},
	}
	opts := defaultOpts()
	opts.VariantWeights[query.VariantTokenized] = 0.9
	opts.VariantWeights[query.VariantCompoundSplit] = 0.9
	hits, _ := Rank(results, opts)

	scores := map[string]float64{}
	for _, h := range hits {
		scores[h.DocumentID] = h.Score
	}
	// Tokenized (boost 1.5) outscores compound-split (boost 1.3 x 1.3
	// CompoundMatch = 1.69) only if CompoundMatch were absent; with it
	// wired in, compound-split must come out ahead.
	assert.Greater(t, scores["compound"], scores["tokenized"])
}

func TestRankOffsetBeyondTotalYieldsEmptyHits(t *testing.T) {
	results := []indexengine.EngineSearchResult{
		{VariantType: string(query.VariantOriginal), Hits: []indexengine.RawHit{{DocumentID: "a", Score: 1}}},
	}
	opts := defaultOpts()
	opts.Offset = 5
	hits, _ := Rank(results, opts)
	assert.Empty(t, hits)
}
