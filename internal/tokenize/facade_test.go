package tokenize

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchproxy/internal/dictionary"
)

// failingEngine always fails, to exercise the fallback ladder.
type failingEngine struct{ id string }

func (f failingEngine) ID() string { return f.id }
func (f failingEngine) Tokenize(context.Context, string) (TokenizationResult, error) {
	return TokenizationResult{}, &Error{Kind: ErrEngineInternal, Engine: f.id, Reason: "boom"}
}

func TestFacadeFallsBackWhenPrimaryFails(t *testing.T) {
	f := NewFacade(failingEngine{id: "primary-down"}, []Tokenizer{newNewMM(nil)}, nil, nil)
	res := f.Tokenize(context.Background(), "hello world", time.Second)
	assert.Equal(t, EngineNewMM, res.Engine)
	assert.Equal(t, []string{"hello", "world"}, res.TokenStrings())
}

func TestFacadeSynthesizesFallbackWhenAllEnginesFail(t *testing.T) {
	f := NewFacade(failingEngine{id: "a"}, []Tokenizer{failingEngine{id: "b"}}, nil, nil)
	res := f.Tokenize(context.Background(), "hello", time.Second)
	assert.Equal(t, EngineFallback, res.Engine)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, "hello", res.Tokens[0].Text)
	assert.True(t, res.Success)
}

func TestFacadeMergesDictionaryRecognizedCompounds(t *testing.T) {
	dict := dictionary.New(nil)
	dir := t.TempDir() + "/dict.json"
	require.NoError(t, os.WriteFile(dir, []byte(`{"a": ["วากาเมะ"]}`), 0o600))
	require.NoError(t, dict.ReloadFrom(dir))

	f := NewFacade(stubSplitEngine{tokens: []string{"วา", "กา", "เมะ"}}, nil, dict, nil)
	res := f.Tokenize(context.Background(), "วากาเมะ", time.Second)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, "วากาเมะ", res.Tokens[0].Text)
	assert.LessOrEqual(t, res.Tokens[0].Confidence, 0.95)
}

func TestFacadeLeavesNonCompoundTokensAlone(t *testing.T) {
	dict := dictionary.New(nil)
	f := NewFacade(stubSplitEngine{tokens: []string{"hello", "world"}}, nil, dict, nil)
	res := f.Tokenize(context.Background(), "hello world", time.Second)
	assert.Equal(t, []string{"hello", "world"}, res.TokenStrings())
}

// stubSplitEngine returns a fixed token list regardless of input, used to
// pin down the compound-merge behavior independent of segmentation.
type stubSplitEngine struct{ tokens []string }

func (s stubSplitEngine) ID() string { return "stub" }
func (s stubSplitEngine) Tokenize(context.Context, string) (TokenizationResult, error) {
	toks := make([]Token, len(s.tokens))
	for i, t := range s.tokens {
		toks[i] = Token{Text: t, Confidence: 1.0}
	}
	return TokenizationResult{Tokens: toks, Engine: "stub", Success: true}, nil
}
