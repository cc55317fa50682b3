package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchproxy/internal/dictionary"
	"searchproxy/internal/tokenize"
)

func newFacade(t *testing.T, dict *dictionary.Store) *tokenize.Facade {
	t.Helper()
	reg := tokenize.NewRegistry()
	primary, err := reg.Build(tokenize.EngineNewMM, tokenize.EngineOptions{Dictionary: dict})
	require.NoError(t, err)
	return tokenize.NewFacade(primary, nil, dict, nil)
}

func newDictWith(t *testing.T, words ...string) *dictionary.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.json")
	body := `{"a": [`
	for i, w := range words {
		if i > 0 {
			body += ","
		}
		body += `"` + w + `"`
	}
	body += `]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	d := dictionary.New(nil)
	require.NoError(t, d.ReloadFrom(path))
	return d
}

func TestProcessPureNonThaiYieldsOriginalOnly(t *testing.T) {
	p := New(newFacade(t, nil), nil)
	pq := p.Process(context.Background(), "hello world", time.Second, 5)
	require.Len(t, pq.Variants, 1)
	assert.Equal(t, VariantOriginal, pq.Variants[0].Type)
	assert.Equal(t, 1.0, pq.Variants[0].Weight)
}

func TestProcessPureThaiSingleTokenYieldsOriginalOnly(t *testing.T) {
	p := New(newFacade(t, nil), nil)
	pq := p.Process(context.Background(), "ข้าว", time.Second, 5)
	require.Len(t, pq.Variants, 1)
	assert.Equal(t, VariantOriginal, pq.Variants[0].Type)
}

func TestProcessPureThaiMultiTokenYieldsTokenizedAndCompound(t *testing.T) {
	dict := newDictWith(t, "วากาเมะ")
	p := New(newFacade(t, dict), dict)
	pq := p.Process(context.Background(), "สาหร่ายวากาเมะ", time.Second, 5)

	var types []VariantType
	for _, v := range pq.Variants {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, VariantOriginal)
	assert.Contains(t, types, VariantTokenized)
	assert.Contains(t, types, VariantCompoundSplit)
	assert.True(t, sortedDescending(pq))
}

func TestProcessMixedLanguageYieldsFourVariants(t *testing.T) {
	p := New(newFacade(t, nil), nil)
	pq := p.Process(context.Background(), "Smart Farm เกษตรอัจฉริยะ", time.Second, 5)
	require.True(t, pq.Language.MixedContent)

	var types []VariantType
	for _, v := range pq.Variants {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, VariantOriginal)
	assert.Contains(t, types, VariantTokenized)
	assert.Contains(t, types, VariantThaiOnly)
	assert.Contains(t, types, VariantEnglishOnly)
}

func TestProcessAllEnginesFailedYieldsFallback(t *testing.T) {
	facade := tokenize.NewFacade(alwaysFailTokenizer{}, []tokenize.Tokenizer{alwaysFailTokenizer{id: "b"}}, nil, nil)
	p := New(facade, nil)
	pq := p.Process(context.Background(), "ข้าว", time.Second, 5)

	require.Len(t, pq.Variants, 2)
	assert.Equal(t, VariantOriginal, pq.Variants[0].Type)
	assert.Equal(t, VariantFallback, pq.Variants[1].Type)
	assert.Equal(t, 0.5, pq.Variants[1].Weight)
}

func TestProcessTruncatesToMaxVariants(t *testing.T) {
	p := New(newFacade(t, nil), nil)
	pq := p.Process(context.Background(), "Smart Farm เกษตรอัจฉริยะ", time.Second, 2)
	assert.Len(t, pq.Variants, 2)
}

type alwaysFailTokenizer struct{ id string }

func (a alwaysFailTokenizer) ID() string {
	if a.id == "" {
		return "a"
	}
	return a.id
}
func (a alwaysFailTokenizer) Tokenize(context.Context, string) (tokenize.TokenizationResult, error) {
	return tokenize.TokenizationResult{}, &tokenize.Error{Kind: tokenize.ErrEngineInternal, Engine: a.ID(), Reason: "boom"}
}

func sortedDescending(pq ProcessedQuery) bool {
	for i := 1; i < len(pq.Variants); i++ {
		if pq.Variants[i-1].Weight < pq.Variants[i].Weight {
			return false
		}
	}
	return true
}
