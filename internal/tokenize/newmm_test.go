package tokenize

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchproxy/internal/dictionary"
)

func TestNewMMEmptyInput(t *testing.T) {
	e := newNewMM(nil)
	res, err := e.Tokenize(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Tokens)
}

func TestNewMMSplitsNonThaiOnCharacterClassBoundaries(t *testing.T) {
	e := newNewMM(nil)
	res, err := e.Tokenize(context.Background(), "world 123")
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "123"}, res.TokenStrings())
}

// TestNewMMPureThaiRunWithoutDictionaryStaysSingleToken pins down the
// fallback behavior when no dictionary is configured: a contiguous Thai run
// with no recognizable word anywhere in it comes back as one token, the same
// way an unrecognized Latin or digit run would, rather than exploding into
// one token per rune (which would fragment combining tone/vowel marks away
// from the consonant they modify).
func TestNewMMPureThaiRunWithoutDictionaryStaysSingleToken(t *testing.T) {
	e := newNewMM(nil)
	res, err := e.Tokenize(context.Background(), "สาหร่าย")
	require.NoError(t, err)
	assert.Equal(t, []string{"สาหร่าย"}, res.TokenStrings())
}

// TestNewMMPureThaiRunSegmentsOnDictionaryWords is the spec §8 scenario 1
// worked example: a continuous Thai run with no Latin/digit/space boundary
// anywhere in it, composed of two dictionary-recognized words. The facade's
// own compound-preservation pass never splits tokens, only merges them, so
// the primary engine itself must be the one producing more than one token
// here.
func TestNewMMPureThaiRunSegmentsOnDictionaryWords(t *testing.T) {
	dict := dictionary.New(nil)
	path := t.TempDir() + "/dict.json"
	require.NoError(t, os.WriteFile(path, []byte(`{"a": ["สาหร่าย", "วากาเมะ"]}`), 0o600))
	require.NoError(t, dict.ReloadFrom(path))

	e := newNewMM(dict)
	res, err := e.Tokenize(context.Background(), "สาหร่ายวากาเมะ")
	require.NoError(t, err)
	assert.Equal(t, []string{"สาหร่าย", "วากาเมะ"}, res.TokenStrings())
}

func TestNewMMRejectsOversizedInput(t *testing.T) {
	e := newNewMM(nil)
	huge := make([]rune, maxInputRunes+1)
	for i := range huge {
		huge[i] = 'a'
	}
	_, err := e.Tokenize(context.Background(), string(huge))
	require.Error(t, err)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, ErrInputTooLarge, tErr.Kind)
}
