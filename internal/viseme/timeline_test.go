package viseme

import (
	"reflect"
	"testing"

	"github.com/normanking/lipsyncd/internal/transcript"
)

func TestConvert_SingleShortWord(t *testing.T) {
	events := Convert("[00:00:00.000 --> 00:00:00.500] hi")

	want := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 0, Type: EventWord, Value: "hi", Start: 0, End: 500},
		{Time: 0, Type: EventViseme, Value: "k"},
		{Time: 200, Type: EventViseme, Value: "i"},
		{Time: 500, Type: EventViseme, Value: "sil"},
	}

	if !reflect.DeepEqual(events, want) {
		t.Errorf("Convert mismatch\ngot:  %v\nwant: %v", events, want)
	}
}

func TestConvert_NoMatchingLines(t *testing.T) {
	events := Convert("whisper_init: loading model\nnothing to see here")

	want := []Event{{Time: 0, Type: EventViseme, Value: "sil"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected only the leading silence, got %v", events)
	}
}

func TestConvert_EmptyInput(t *testing.T) {
	events := Convert("")

	if len(events) != 1 || events[0].Value != "sil" || events[0].Time != 0 {
		t.Errorf("expected single silence at t=0, got %v", events)
	}
}

const sampleTranscript = `[00:00:00.000 --> 00:00:00.500] Hello
[00:00:00.700 --> 00:00:01.200] world
[00:00:01.400 --> 00:00:01.500] .
[00:00:01.700 --> 00:00:02.300] goodbye`

func TestConvert_SortedByTime(t *testing.T) {
	events := Convert(sampleTranscript)

	for i := 1; i < len(events); i++ {
		if events[i].Time < events[i-1].Time {
			t.Fatalf("event %d at %dms precedes event %d at %dms", i, events[i].Time, i-1, events[i-1].Time)
		}
	}
}

func TestConvert_NoAdjacentDuplicateVisemes(t *testing.T) {
	events := Convert(sampleTranscript)

	for i := 1; i < len(events); i++ {
		if events[i].Type == EventViseme && events[i-1].Type == EventViseme &&
			events[i].Value == events[i-1].Value {
			t.Fatalf("adjacent duplicate viseme %q at index %d", events[i].Value, i)
		}
	}
}

func TestConvert_WordEventBounds(t *testing.T) {
	events := Convert(sampleTranscript)

	words := 0
	for _, e := range events {
		if e.Type != EventWord {
			continue
		}
		words++
		if e.Start < 0 || e.End < e.Start {
			t.Errorf("word %q has invalid span [%d, %d]", e.Value, e.Start, e.End)
		}
		if e.Time != e.Start {
			t.Errorf("word %q emitted at %dms but starts at %dms", e.Value, e.Time, e.Start)
		}
	}
	if words != 3 {
		t.Errorf("expected 3 word events, got %d", words)
	}
}

func TestConvert_EveryWordClosesOnSilence(t *testing.T) {
	events := Convert(sampleTranscript)

	for i, e := range events {
		if e.Type != EventWord {
			continue
		}
		closed := false
		for _, later := range events[i+1:] {
			if later.Type == EventViseme && later.Value == "sil" && later.Time >= e.End {
				closed = true
				break
			}
		}
		if !closed {
			t.Errorf("word %q has no closing silence at or after %dms", e.Value, e.End)
		}
	}
}

func TestConvert_PunctuationCollapsesIntoTrailingSilence(t *testing.T) {
	events := Convert("[00:00:00.000 --> 00:00:00.500] hi\n[00:00:00.700 --> 00:00:00.800] .")

	// The punctuation silence lands right after hi's closing silence
	// and must be collapsed away.
	want := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 0, Type: EventWord, Value: "hi", Start: 0, End: 500},
		{Time: 0, Type: EventViseme, Value: "k"},
		{Time: 200, Type: EventViseme, Value: "i"},
		{Time: 500, Type: EventViseme, Value: "sil"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("Convert mismatch\ngot:  %v\nwant: %v", events, want)
	}
}

func TestConvert_PunctuationAloneCollapsesIntoLeadingSilence(t *testing.T) {
	// The comma's silence marker at 1000ms duplicates the held
	// time-zero silence and is collapsed away.
	events := Convert("[00:00:01.000 --> 00:00:01.100] ,")

	want := []Event{{Time: 0, Type: EventViseme, Value: "sil"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected the leading silence only, got %v", events)
	}
}

func TestConvert_DigraphOrderPreserved(t *testing.T) {
	events := Convert("[00:00:00.000 --> 00:00:01.000] she")

	shIdx, ehIdx := -1, -1
	for i, e := range events {
		if e.Type != EventViseme {
			continue
		}
		if e.Value == "S" && shIdx == -1 {
			shIdx = i
		}
		if e.Value == "E" && ehIdx == -1 {
			ehIdx = i
		}
	}
	if shIdx == -1 || ehIdx == -1 {
		t.Fatalf("expected S and E visemes, got %v", events)
	}
	if shIdx > ehIdx {
		t.Errorf("S viseme at %d comes after E viseme at %d", shIdx, ehIdx)
	}
}

func TestConvert_PhonemelessWordKeepsOnlyMarker(t *testing.T) {
	events := Convert("[00:00:00.000 --> 00:00:00.300] !")

	want := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 0, Type: EventWord, Value: "!", Start: 0, End: 300},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected word marker without viseme walk, got %v", events)
	}
}

func TestBuildTimeline_FloorOverrunsShortWord(t *testing.T) {
	// Six phonemes in 100ms: the 50ms floor pushes the walk past the
	// word's end, and the closing silence lands mid-walk after the
	// stable sort. The overrun is preserved.
	words := []transcript.WordTiming{{Start: 0, End: 0.1, Word: "extra"}}
	events := BuildTimeline(words)

	want := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 0, Type: EventWord, Value: "extra", Start: 0, End: 100},
		{Time: 0, Type: EventViseme, Value: "E"},
		{Time: 50, Type: EventViseme, Value: "k"},
		{Time: 100, Type: EventViseme, Value: "s"},
		{Time: 100, Type: EventViseme, Value: "sil"},
		{Time: 150, Type: EventViseme, Value: "t"},
		{Time: 200, Type: EventViseme, Value: "r"},
		{Time: 250, Type: EventViseme, Value: "a"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("BuildTimeline mismatch\ngot:  %v\nwant: %v", events, want)
	}
}

func TestBuildTimeline_RepeatedPosesHeldWithinWord(t *testing.T) {
	// "hello" maps l+l to the same pose; the second must not re-emit.
	words := []transcript.WordTiming{{Start: 0, End: 0.5, Word: "hello"}}
	events := BuildTimeline(words)

	count := 0
	for _, e := range events {
		if e.Type == EventViseme && e.Value == "t" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected a single held t pose, got %d in %v", count, events)
	}
}

func TestCollapseRepeats_Idempotent(t *testing.T) {
	events := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 10, Type: EventViseme, Value: "a"},
		{Time: 20, Type: EventViseme, Value: "a"},
		{Time: 30, Type: EventWord, Value: "w", Start: 30, End: 60},
		{Time: 30, Type: EventViseme, Value: "a"},
		{Time: 40, Type: EventViseme, Value: "a"},
		{Time: 50, Type: EventViseme, Value: "sil"},
		{Time: 60, Type: EventViseme, Value: "sil"},
	}

	once := collapseRepeats(events)
	twice := collapseRepeats(once)

	want := []Event{
		{Time: 0, Type: EventViseme, Value: "sil"},
		{Time: 10, Type: EventViseme, Value: "a"},
		{Time: 30, Type: EventWord, Value: "w", Start: 30, End: 60},
		{Time: 30, Type: EventViseme, Value: "a"},
		{Time: 50, Type: EventViseme, Value: "sil"},
	}
	if !reflect.DeepEqual(once, want) {
		t.Errorf("collapse mismatch\ngot:  %v\nwant: %v", once, want)
	}
	if !reflect.DeepEqual(twice, once) {
		t.Errorf("collapse is not idempotent\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestBuildTimeline_EmptyWords(t *testing.T) {
	events := BuildTimeline(nil)

	want := []Event{{Time: 0, Type: EventViseme, Value: "sil"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected only leading silence, got %v", events)
	}
}
