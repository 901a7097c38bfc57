// Package phoneme approximates English pronunciation from spelling.
// It is a rule-based grapheme-to-phoneme pass over common spelling
// patterns, not a dictionary or model-backed phonemizer: good enough
// to pick mouth shapes, not a linguistic transcription.
package phoneme

import "strings"

// Phoneme is one ASCII-encoded phonetic symbol, X-SAMPA flavored
// (e.g. "tS" for the "ch" affricate, "@U" for the "oa" diphthong).
type Phoneme string

// Approximate converts a word's spelling into an ordered phoneme
// sequence. Matching is case-insensitive and greedy: word-initial
// clusters first, then two-letter digraphs, then single letters.
// Characters with no rule contribute nothing. An empty word yields
// an empty sequence.
func Approximate(word string) []Phoneme {
	chars := strings.ToLower(word)
	phonemes := make([]Phoneme, 0, len(chars))

	i := 0
	for _, r := range prefixRules {
		if strings.HasPrefix(chars, r.pattern) {
			phonemes = append(phonemes, r.phonemes...)
			i = len(r.pattern)
			break
		}
	}

	for i < len(chars) {
		if i+2 <= len(chars) {
			if mapped, ok := digraphAt(chars[i : i+2]); ok {
				phonemes = append(phonemes, mapped...)
				i += 2
				continue
			}
		}
		if mapped, ok := singleRules[chars[i]]; ok {
			phonemes = append(phonemes, mapped...)
		}
		i++
	}

	return phonemes
}

// digraphAt returns the phonemes for a two-letter pattern, scanning
// the rule list in declaration order.
func digraphAt(pair string) ([]Phoneme, bool) {
	for _, r := range digraphRules {
		if r.pattern == pair {
			return r.phonemes, true
		}
	}
	return nil, false
}
