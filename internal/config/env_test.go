package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvOverlaysRecognizedKeysOnly(t *testing.T) {
	base := Default()
	env := map[string]string{
		"PRIMARY_ENGINE":       "attacut",
		"FALLBACK_ENGINES":     "deepcut, newmm",
		"MAX_QUERY_VARIANTS":   "3",
		"BOOST_EXACT":          "2.5",
		"SEARCH_TIMEOUT_MS":    "1500",
		"CACHE_ENABLED":        "false",
		"UNRECOGNIZED_KEY":     "ignored",
	}
	out := FromEnv(base, env)

	assert.Equal(t, "attacut", out.PrimaryEngine)
	assert.Equal(t, []string{"deepcut", "newmm"}, out.FallbackEngines)
	assert.Equal(t, 3, out.MaxQueryVariants)
	assert.Equal(t, 2.5, out.Boosts.Exact)
	assert.Equal(t, 1500*time.Millisecond, out.SearchTimeout)
	assert.False(t, out.CacheEnabled)
	// untouched fields keep base's defaults
	assert.Equal(t, base.MaxConcurrentSearches, out.MaxConcurrentSearches)
}

func TestFromEnvOverlaysLanguageBoosts(t *testing.T) {
	base := Default()
	out := FromEnv(base, map[string]string{
		"BOOST_THAI_MATCH":     "1.6",
		"BOOST_COMPOUND_MATCH": "1.2",
	})
	assert.Equal(t, 1.6, out.Boosts.ThaiMatch)
	assert.Equal(t, 1.2, out.Boosts.CompoundMatch)
}

func TestFromEnvLeavesBaseUntouchedWhenEnvEmpty(t *testing.T) {
	base := Default()
	out := FromEnv(base, map[string]string{})
	assert.Equal(t, base, out)
}
