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

package tokenize

import (
	"context"
	"time"
	"unicode"

	"searchproxy/internal/dictionary"
)

// maxInputRunes bounds a single tokenize call, per spec §7's
// ErrInputTooLarge failure mode.
const maxInputRunes = 20000

// maxDictWordRunes bounds the longest-match scan inside one Thai-class run;
// no dictionary entry this engine recognizes is longer than this.
const maxDictWordRunes = 10

// dictConfidence is reported for a token that matched a Dictionary Store
// entry during the longest-match scan; higher than absentConfidence since a
// dictionary hit is stronger evidence than the character-class fallback.
const dictConfidence = 0.9

// newmm is the primary, in-process engine. It never leaves the process: no
// network call, no external dependency, so it always answers (it is the
// bottom rung of the facade's fallback ladder as well as the default
// primary). Non-Thai runs (Latin / digit / other) are emitted as one token
// per character-class boundary. Thai runs are segmented by longest-match
// against the Dictionary Store (greedy, left to right): a recognized word is
// emitted as its own token, and any stretch between two recognized words (or
// before the first one, or with no dictionary configured at all) is emitted
// as a single unsegmented token rather than exploded rune by rune — Thai
// combining marks ride on the consonant they modify, and a lone rune is not
// a meaningful unit without dictionary evidence either way. A Thai run
// containing two or more dictionary words therefore yields multiple tokens,
// which is what the facade's compound-preservation pass and the Query
// Processor's variant generation both require.
type newmm struct {
	dict *dictionary.Store
}

func newNewMM(dict *dictionary.Store) Tokenizer { return newmm{dict: dict} }

func (newmm) ID() string { return EngineNewMM }

func (e newmm) Tokenize(ctx context.Context, text string) (TokenizationResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return TokenizationResult{}, &Error{Kind: ErrTimeout, Engine: e.ID(), Reason: err.Error()}
	}
	runes := []rune(text)
	if len(runes) > maxInputRunes {
		return TokenizationResult{}, &Error{
			Kind:   ErrInputTooLarge,
			Engine: e.ID(),
			Reason: "input exceeds maximum rune count",
		}
	}
	if len(runes) == 0 {
		return TokenizationResult{
			OriginalText: text,
			Engine:       e.ID(),
			Duration:     time.Since(start),
			Success:      true,
		}, nil
	}

	tokens := make([]Token, 0, len(runes)/2+1)
	i := 0
	for i < len(runes) {
		class := runeClass(runes[i])
		j := i + 1
		for j < len(runes) && runeClass(runes[j]) == class {
			j++
		}
		if class == classThai {
			tokens = append(tokens, e.segmentThai(runes[i:j])...)
		} else if class != classSpace {
			tokens = append(tokens, Token{Text: string(runes[i:j]), Confidence: absentConfidence})
		}
		i = j
	}

	return TokenizationResult{
		OriginalText: text,
		Tokens:       tokens,
		Engine:       e.ID(),
		Duration:     time.Since(start),
		Success:      true,
	}, nil
}

// segmentThai splits one contiguous run of Thai-class runes into tokens by
// greedy longest-match against the Dictionary Store. Runes that don't start
// a dictionary word are accumulated into a pending unmatched span rather
// than emitted one at a time; the span is flushed as a single token as soon
// as a dictionary match is found (or the run ends), so a run with no
// dictionary matches at all comes back as exactly one token, matching this
// engine's character-class fallback for non-Thai text.
func (e newmm) segmentThai(runes []rune) []Token {
	tokens := make([]Token, 0, len(runes))
	pendingStart := -1
	flushPending := func(end int) {
		if pendingStart >= 0 {
			tokens = append(tokens, Token{Text: string(runes[pendingStart:end]), Confidence: absentConfidence})
			pendingStart = -1
		}
	}

	i := 0
	for i < len(runes) {
		matchLen := 0
		if e.dict != nil {
			maxLen := len(runes) - i
			if maxLen > maxDictWordRunes {
				maxLen = maxDictWordRunes
			}
			for l := maxLen; l >= 2; l-- {
				if e.dict.Contains(string(runes[i : i+l])) {
					matchLen = l
					break
				}
			}
		}
		if matchLen == 0 {
			if pendingStart < 0 {
				pendingStart = i
			}
			i++
			continue
		}
		flushPending(i)
		tokens = append(tokens, Token{Text: string(runes[i : i+matchLen]), Confidence: dictConfidence})
		i += matchLen
	}
	flushPending(len(runes))
	return tokens
}

type charClass int

const (
	classThai charClass = iota
	classLatin
	classDigit
	classSpace
	classOther
)

func runeClass(r rune) charClass {
	switch {
	case r >= 0x0E00 && r <= 0x0E7F:
		return classThai
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsLetter(r):
		return classLatin
	default:
		return classOther
	}
}
