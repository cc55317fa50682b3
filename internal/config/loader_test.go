package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderAppliesYAMLThenEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ranking.yaml")
	require.NoError(t, os.WriteFile(path, []byte("boost_exact: 3.0\nmin_score_threshold: 0.2\n"), 0o600))

	load := Loader(Sources{
		RankingConfigPath: path,
		Env:               map[string]string{"BOOST_EXACT": "4.0"},
	})
	snap, err := load()
	require.NoError(t, err)
	assert.Equal(t, 4.0, snap.Boosts.Exact, "env overlay takes precedence over the YAML file")
	assert.Equal(t, 0.2, snap.MinScoreThreshold)
}

func TestLoaderToleratesMissingRankingFile(t *testing.T) {
	load := Loader(Sources{RankingConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	snap, err := load()
	require.NoError(t, err)
	assert.Equal(t, Default().Boosts, snap.Boosts)
}
