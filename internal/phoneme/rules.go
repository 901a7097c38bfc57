package phoneme

// rule maps a spelling pattern to the phonemes it produces.
// Rules are evaluated in declaration order, longest pattern first,
// so a new pattern is added by appending a row, not by touching
// control flow.
type rule struct {
	pattern  string
	phonemes []Phoneme
}

// prefixRules handle silent-letter clusters at the start of a word.
var prefixRules = []rule{
	{"kn", []Phoneme{"n"}},  // knee, know
	{"wr", []Phoneme{`r\`}}, // write, wrong
	{"ps", []Phoneme{"s"}},  // psalm, psyche
}

// digraphRules cover two-letter patterns, matched before any single
// letter. Vowel digraphs first, then consonant digraphs.
var digraphRules = []rule{
	// Vowel digraphs
	{"ee", []Phoneme{"i"}},   // see
	{"ea", []Phoneme{"i"}},   // sea
	{"ai", []Phoneme{"eI"}},  // rain
	{"ay", []Phoneme{"eI"}},  // day
	{"oa", []Phoneme{"@U"}},  // boat
	{"ow", []Phoneme{"@U"}},  // show
	{"oo", []Phoneme{"u:"}},  // food
	{"ou", []Phoneme{"aU"}},  // out
	{"au", []Phoneme{"O:"}},  // auto
	{"aw", []Phoneme{"O:"}},  // saw
	{"oi", []Phoneme{"OI"}},  // oil
	{"oy", []Phoneme{"OI"}},  // boy

	// Consonant digraphs
	{"th", []Phoneme{"T"}},  // think
	{"ch", []Phoneme{"tS"}}, // chair
	{"sh", []Phoneme{"S"}},  // ship
	{"ph", []Phoneme{"f"}},  // phone
	{"wh", []Phoneme{"w"}},  // what
	{"ng", []Phoneme{"N"}},  // sing
	{"ck", []Phoneme{"k"}},  // back
}

// singleRules map one letter to its default phonemes. Letters absent
// from the table (and any non-letter byte) contribute nothing.
var singleRules = map[byte][]Phoneme{
	// Vowels
	'a': {"{"},
	'e': {"E"},
	'i': {"I"},
	'o': {"Q"},
	'u': {"V"},

	// Consonants
	'b': {"b"},
	'c': {"k"},
	'd': {"d"},
	'f': {"f"},
	'g': {"g"},
	'h': {"h"},
	'j': {"dZ"},
	'k': {"k"},
	'l': {"l"},
	'm': {"m"},
	'n': {"n"},
	'p': {"p"},
	'q': {"k"},
	'r': {`r\`},
	's': {"s"},
	't': {"t"},
	'v': {"v"},
	'w': {"w"},
	'x': {"k", "s"}, // box
	'y': {"j"},
	'z': {"z"},
}
