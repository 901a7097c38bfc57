package viseme

import (
	"sort"
	"strings"

	"github.com/normanking/lipsyncd/internal/phoneme"
	"github.com/normanking/lipsyncd/internal/transcript"
)

const (
	// overlapFactor compresses per-phoneme slots so adjacent mouth
	// shapes blend instead of snapping edge to edge.
	overlapFactor = 0.8

	// minPhonemeSeconds floors each slot at 50ms. Short words packed
	// with phonemes can overrun their span because of the floor; the
	// overrun is kept, not clamped.
	minPhonemeSeconds = 0.05
)

// BuildTimeline lays word timings out as a single event stream:
// a global silence at time zero, per-word events, a stable sort by
// time, and a final pass collapsing adjacent identical visemes.
func BuildTimeline(words []transcript.WordTiming) []Event {
	events := make([]Event, 0, len(words)*4+1)

	events = append(events, Event{Time: 0, Type: EventViseme, Value: string(VisemeSil)})

	for _, w := range words {
		events = append(events, wordEvents(w)...)
	}

	// The sort key is time only; stability keeps each word event
	// ahead of its own visemes when timestamps collide.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})

	return collapseRepeats(events)
}

// wordEvents expands one word into its word marker and viseme walk.
func wordEvents(w transcript.WordTiming) []Event {
	trimmed := strings.TrimSpace(w.Word)
	if trimmed == "" || trimmed == "," || trimmed == "." {
		// Punctuation and blanks hold the mouth closed.
		return []Event{{Time: toMillis(w.Start), Type: EventViseme, Value: string(VisemeSil)}}
	}

	events := []Event{{
		Time:  toMillis(w.Start),
		Type:  EventWord,
		Value: w.Word,
		Start: toMillis(w.Start),
		End:   toMillis(w.End),
	}}

	phonemes := phoneme.Approximate(w.Word)
	if len(phonemes) == 0 {
		return events
	}

	duration := w.End - w.Start
	base := duration * overlapFactor / float64(len(phonemes))
	per := base
	if per < minPhonemeSeconds {
		per = minPhonemeSeconds
	}

	current := w.Start
	var prev Viseme
	for _, p := range phonemes {
		v := FromPhoneme(p)
		// A held pose is not re-emitted; time advances regardless.
		if v != prev {
			events = append(events, Event{Time: toMillis(current), Type: EventViseme, Value: string(v)})
			prev = v
		}
		current += per
	}

	// Every word closes on silence at its end time.
	last := events[len(events)-1]
	if last.Type != EventViseme || last.Value != string(VisemeSil) {
		events = append(events, Event{Time: toMillis(w.End), Type: EventViseme, Value: string(VisemeSil)})
	}

	return events
}

// collapseRepeats drops viseme events whose value matches the
// previously kept viseme. Word events are always kept and reset the
// comparison, so a word boundary never swallows a pose.
func collapseRepeats(events []Event) []Event {
	kept := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Type == EventViseme && len(kept) > 0 {
			prev := kept[len(kept)-1]
			if prev.Type == EventViseme && prev.Value == e.Value {
				continue
			}
		}
		kept = append(kept, e)
	}
	return kept
}

// toMillis truncates seconds to whole milliseconds.
func toMillis(seconds float64) int {
	return int(seconds * 1000)
}
