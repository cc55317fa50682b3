package rank

import (
	"fmt"
	"math/rand"
	"testing"

	"searchproxy/internal/indexengine"
	"searchproxy/internal/query"
)

var benchVariants = []query.VariantType{
	query.VariantOriginal,
	query.VariantTokenized,
	query.VariantCompoundSplit,
	query.VariantThaiOnly,
	query.VariantEnglishOnly,
	query.VariantFallback,
}

// buildEngineResults synthesizes docCount unique documents scattered across
// every variant type, with overlapping document IDs across variants so the
// benchmark also exercises cross-variant deduplication, not just scoring.
func buildEngineResults(docCount int) []indexengine.EngineSearchResult {
	r := rand.New(rand.NewSource(int64(docCount)))
	results := make([]indexengine.EngineSearchResult, 0, len(benchVariants))
	for _, v := range benchVariants {
		hits := make([]indexengine.RawHit, 0, docCount)
		for i := 0; i < docCount; i++ {
			if r.Intn(3) == 0 {
				continue // not every variant sees every document
			}
			hits = append(hits, indexengine.RawHit{
				DocumentID: fmt.Sprintf("doc-%d", i),
				Score:      r.Float64() * 100,
			})
		}
		results = append(results, indexengine.EngineSearchResult{
			VariantType: string(v),
			Hits:        hits,
		})
	}
	return results
}

func benchOpts() Options {
	return Options{
		Boosts: DefaultBoostTable(),
		VariantWeights: map[query.VariantType]float64{
			query.VariantOriginal:       1.0,
			query.VariantTokenized:      0.9,
			query.VariantCompoundSplit:  0.85,
			query.VariantThaiOnly:       0.8,
			query.VariantEnglishOnly:    0.8,
			query.VariantFallback:       0.5,
		},
		MinScoreThreshold: 0.1,
		Limit:             20,
	}
}

func BenchmarkRank_100Docs(b *testing.B) {
	results := buildEngineResults(100)
	opts := benchOpts()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Rank(results, opts)
	}
}

func BenchmarkRank_1000Docs(b *testing.B) {
	results := buildEngineResults(1000)
	opts := benchOpts()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Rank(results, opts)
	}
}

func BenchmarkRank_10000Docs(b *testing.B) {
	results := buildEngineResults(10000)
	opts := benchOpts()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Rank(results, opts)
	}
}
