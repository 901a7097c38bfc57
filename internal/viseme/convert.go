package viseme

import "github.com/normanking/lipsyncd/internal/transcript"

// Convert runs the whole pipeline over raw recognizer output: parse
// timestamp lines into words, expand words to phonemes, map phonemes
// to visemes, and assemble the global timeline. It never fails;
// malformed input degrades to fewer events, with the time-zero
// silence always present.
func Convert(raw string) []Event {
	return BuildTimeline(transcript.NewParser().Parse(raw))
}
