package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuildsKnownEngines(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{EngineNewMM, EngineAttaCut, EngineDeepCut} {
		assert.True(t, r.Has(id))
		eng, err := r.Build(id, EngineOptions{})
		require.NoError(t, err)
		assert.Equal(t, id, eng.ID())
	}
}

func TestRegistryRejectsUnknownEngine(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build("made-up", EngineOptions{})
	require.Error(t, err)
}
