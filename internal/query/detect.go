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

package query

import "unicode"

const (
	firstThai rune = 0x0E00
	lastThai  rune = 0x0E7F
)

// detectLanguage computes the Thai/English composition of text. ThaiFraction
// is the share of letter runes (Thai or Latin) that fall in the Thai
// Unicode block; digits and punctuation do not count toward the
// denominator. MixedContent is true only when both scripts are present.
func detectLanguage(text string) LanguageMix {
	var thai, latin int
	for _, r := range text {
		switch {
		case r >= firstThai && r <= lastThai:
			thai++
		case unicode.IsLetter(r):
			latin++
		}
	}
	total := thai + latin
	mix := LanguageMix{HasEnglish: latin > 0}
	if total == 0 {
		return mix
	}
	mix.ThaiFraction = float64(thai) / float64(total)
	mix.MixedContent = thai > 0 && latin > 0
	return mix
}

// IsThaiBearing reports whether s contains at least one Thai-block rune.
// Exported so the Result Ranker can tell, per variant, whether it should
// receive spec §4.7 Step 3's Thai-match boost.
func IsThaiBearing(s string) bool {
	for _, r := range s {
		if r >= firstThai && r <= lastThai {
			return true
		}
	}
	return false
}
