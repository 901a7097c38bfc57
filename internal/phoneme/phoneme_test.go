package phoneme

import (
	"reflect"
	"testing"
)

func TestApproximate_Words(t *testing.T) {
	tests := []struct {
		name string
		word string
		want []Phoneme
	}{
		{
			name: "sh digraph before single letters",
			word: "she",
			want: []Phoneme{"S", "E"},
		},
		{
			name: "silent k prefix",
			word: "knee",
			want: []Phoneme{"n", "i"},
		},
		{
			name: "silent w prefix",
			word: "write",
			want: []Phoneme{`r\`, "I", "t", "E"},
		},
		{
			name: "silent p prefix",
			word: "psalm",
			want: []Phoneme{"s", "{", "l", "m"},
		},
		{
			name: "x expands to two phonemes",
			word: "box",
			want: []Phoneme{"b", "Q", "k", "s"},
		},
		{
			name: "ch then vowel digraph",
			word: "chair",
			want: []Phoneme{"tS", "eI", `r\`},
		},
		{
			name: "ng at word end",
			word: "sing",
			want: []Phoneme{"s", "I", "N"},
		},
		{
			name: "ck collapses to k",
			word: "back",
			want: []Phoneme{"b", "{", "k"},
		},
		{
			name: "vowel digraph oo",
			word: "food",
			want: []Phoneme{"f", "u:", "d"},
		},
		{
			name: "vowel digraph ow",
			word: "know",
			want: []Phoneme{"n", "@U"},
		},
		{
			name: "vowel digraph oy",
			word: "boy",
			want: []Phoneme{"b", "OI"},
		},
		{
			name: "wh digraph",
			word: "what",
			want: []Phoneme{"w", "{", "t"},
		},
		{
			name: "y as consonant",
			word: "yes",
			want: []Phoneme{"j", "E", "s"},
		},
		{
			name: "plain short word",
			word: "hi",
			want: []Phoneme{"h", "I"},
		},
		{
			name: "case insensitive",
			word: "SHE",
			want: []Phoneme{"S", "E"},
		},
		{
			name: "apostrophe contributes nothing",
			word: "can't",
			want: []Phoneme{"k", "{", "n", "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Approximate(tt.word)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Approximate(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestApproximate_EmptyWord(t *testing.T) {
	got := Approximate("")
	if len(got) != 0 {
		t.Errorf("expected empty sequence, got %v", got)
	}
}

func TestApproximate_PunctuationOnly(t *testing.T) {
	got := Approximate("...")
	if len(got) != 0 {
		t.Errorf("expected empty sequence for punctuation, got %v", got)
	}
}

func TestApproximate_PrefixOnlyAtWordStart(t *testing.T) {
	// The kn cluster is silent at position 0 but spelled out mid-word.
	got := Approximate("unknown")
	want := []Phoneme{"V", "n", "k", "n", "@U", "n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Approximate(%q) = %v, want %v", "unknown", got, want)
	}
}

func TestApproximate_DigraphWinsOverSingles(t *testing.T) {
	// "thin" must open with the dental fricative, never t-h.
	got := Approximate("thin")
	if len(got) == 0 || got[0] != "T" {
		t.Errorf("expected leading T for %q, got %v", "thin", got)
	}
}
