// Package transcript parses timestamp-tagged recognizer output into
// word-level timing records. Recognizers running with word-level
// timestamps emit one fragment per line; a fragment may be a whole
// word or a piece of one, so consecutive fragments are merged back
// into words before any downstream processing.
package transcript

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampLine matches one recognizer output line, e.g.
// [00:00:01.320 --> 00:00:01.700]  hello
var timestampLine = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2}\.\d{3}) --> (\d{2}:\d{2}:\d{2}\.\d{3})\]\s*(\S*)`)

// Fragment is one timestamped unit of recognizer output. Times are
// seconds from the start of the audio.
type Fragment struct {
	Start float64
	End   float64
	Text  string
}

// WordTiming is a merged, lower-cased word with its time span in
// seconds. End is never before Start for well-formed input.
type WordTiming struct {
	Start float64
	End   float64
	Word  string
}

// MergePredicate reports whether next belongs to the same word as
// prev. Swapping the predicate changes word segmentation without
// touching the parse loop.
type MergePredicate func(prev, next Fragment) bool

// DefaultMergeGap is the largest silence between two fragments that
// still reads as an intra-word split rather than a word boundary.
const DefaultMergeGap = 100 * time.Millisecond

// MergeWithin returns a predicate that joins a fragment to the word
// being built when the previous fragment is a stray single character
// ahead of a vowel-initial remainder ("a" + "pple"), or when the two
// fragments are separated by less than gap.
func MergeWithin(gap time.Duration) MergePredicate {
	gapSeconds := gap.Seconds()
	return func(prev, next Fragment) bool {
		if len(prev.Text) == 1 && startsWithVowel(next.Text) {
			return true
		}
		return next.Start-prev.End < gapSeconds
	}
}

// DefaultMerge is MergeWithin(DefaultMergeGap).
var DefaultMerge = MergeWithin(DefaultMergeGap)

func startsWithVowel(s string) bool {
	if s == "" {
		return false
	}
	return strings.ContainsRune("aeiou", rune(strings.ToLower(s)[0]))
}

// Parser turns raw recognizer text into word timings. The zero-cost
// construction keeps no state between calls, so a single Parser is
// safe for concurrent use.
type Parser struct {
	merge MergePredicate
}

// NewParser returns a Parser using DefaultMerge.
func NewParser() *Parser {
	return &Parser{merge: DefaultMerge}
}

// NewParserWithMerge returns a Parser using a custom merge predicate.
// A nil predicate falls back to DefaultMerge.
func NewParserWithMerge(merge MergePredicate) *Parser {
	if merge == nil {
		merge = DefaultMerge
	}
	return &Parser{merge: merge}
}

// Parse extracts word timings from raw recognizer output. Lines that
// do not match the timestamp pattern are skipped, as are fragments
// that are empty after trimming. The final in-progress word is
// flushed at end of input.
func (p *Parser) Parse(raw string) []WordTiming {
	var words []WordTiming
	var current []Fragment

	for _, line := range strings.Split(raw, "\n") {
		m := timestampLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		start, err := parseClock(m[1])
		if err != nil {
			continue
		}
		end, err := parseClock(m[2])
		if err != nil {
			continue
		}

		text := strings.TrimSpace(m[3])
		if text == "" {
			continue
		}

		frag := Fragment{Start: start, End: end, Text: text}
		if len(current) > 0 && !p.merge(current[len(current)-1], frag) {
			words = append(words, mergeFragments(current))
			current = current[:0]
		}
		current = append(current, frag)
	}

	if len(current) > 0 {
		words = append(words, mergeFragments(current))
	}

	return words
}

// mergeFragments concatenates fragment texts with no separator and
// lower-cases the result, spanning first start to last end.
func mergeFragments(frags []Fragment) WordTiming {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	return WordTiming{
		Start: frags[0].Start,
		End:   frags[len(frags)-1].End,
		Word:  strings.ToLower(b.String()),
	}
}

// parseClock converts an HH:MM:SS.mmm timestamp to seconds.
func parseClock(ts string) (float64, error) {
	parts := strings.SplitN(ts, ":", 3)
	if len(parts) != 3 {
		return 0, strconv.ErrSyntax
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	return float64(h)*3600 + float64(m)*60 + s, nil
}
