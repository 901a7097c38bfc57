// Package viseme turns word timings into a time-coded mouth-shape
// event stream for driving lip-sync animation. Words are expanded to
// phonemes, phonemes collapse onto a small closed set of viseme
// categories, and the categories are laid out on a millisecond
// timeline with silence bracketing and flicker suppression.
package viseme

import (
	"strings"

	"github.com/normanking/lipsyncd/internal/phoneme"
)

// Viseme is one mouth pose category. The alphabet is closed: every
// phoneme maps into it, with sil as the catch-all.
type Viseme string

const (
	VisemeSil Viseme = "sil" // closed or neutral mouth
	VisemePP  Viseme = "p"   // p, b, m
	VisemeDD  Viseme = "t"   // t, d, n, l
	VisemeKK  Viseme = "k"   // k, g, h
	VisemeFF  Viseme = "f"   // f, v
	VisemeSS  Viseme = "s"   // s, z
	VisemeSH  Viseme = "S"   // sh, ch, j
	VisemeTH  Viseme = "T"   // th
	VisemeRR  Viseme = "r"   // r
	VisemeIH  Viseme = "i"   // sit, see
	VisemeEY  Viseme = "e"   // day
	VisemeEH  Viseme = "E"   // bed
	VisemeAA  Viseme = "a"   // father
	VisemeOH  Viseme = "O"   // go, law
	VisemeOU  Viseme = "u"   // boot
	VisemeAX  Viseme = "@"   // about (schwa)
)

// phonemeToViseme maps every phoneme the approximator can produce,
// plus CMU-style aliases, onto a viseme category.
var phonemeToViseme = map[phoneme.Phoneme]Viseme{
	// Consonants
	"b":  VisemePP, // bed
	"d":  VisemeDD, // dig
	"dZ": VisemeSH, // jump
	"D":  VisemeTH, // then
	"f":  VisemeFF, // five
	"g":  VisemeKK, // game
	"h":  VisemeKK, // house
	"j":  VisemeIH, // yes
	"k":  VisemeKK, // cat
	"l":  VisemeDD, // lay
	"l=": VisemeDD, // battle (syllabic l)
	"m":  VisemePP, // mouse
	"m=": VisemePP, // rhythm (syllabic m)
	"n":  VisemeDD, // nap
	"n=": VisemeDD, // button (syllabic n)
	"N":  VisemeKK, // thing
	"p":  VisemePP, // pin
	`r\`: VisemeRR, // red
	"s":  VisemeSS, // seem
	"S":  VisemeSH, // ship
	"t":  VisemeDD, // task
	"tS": VisemeSH, // chart
	"T":  VisemeTH, // thin
	"v":  VisemeFF, // vest
	"w":  VisemeOU, // west
	"z":  VisemeSS, // zero
	"Z":  VisemeSH, // vision

	// Vowels
	"@":  VisemeAX, // about
	"@U": VisemeAX, // goat
	"{":  VisemeAA, // trap
	"aI": VisemeAA, // price
	"aU": VisemeAA, // mouth
	"A:": VisemeAA, // father
	"eI": VisemeEY, // face
	"3:": VisemeEH, // nurse
	"E":  VisemeEH, // dress
	"E@": VisemeEH, // square
	"i":  VisemeIH, // fleece
	"I":  VisemeIH, // kit
	"I@": VisemeIH, // near
	"O:": VisemeOH, // thought
	"OI": VisemeOH, // choice
	"Q":  VisemeOH, // lot
	"u:": VisemeOU, // goose
	"U":  VisemeOU, // foot
	"U@": VisemeOU, // cure
	"V":  VisemeEH, // strut

	// CMU-style aliases
	"CH": VisemeSH,
	"SH": VisemeSH,
	"TH": VisemeTH,
	"DH": VisemeTH,
	"NG": VisemeKK,
	"Y":  VisemeIH,
	"AA": VisemeAA,
	"AE": VisemeAA,
	"AH": VisemeEH,
	"AO": VisemeOH,
	"AW": VisemeAA,
	"AY": VisemeAA,
	"EH": VisemeEH,
	"ER": VisemeEH,
	"EY": VisemeEY,
	"IH": VisemeIH,
	"IY": VisemeIH,
	"OW": VisemeOH,
	"OY": VisemeOH,
	"UH": VisemeOU,
	"UW": VisemeOU,
}

// FromPhoneme maps a phoneme to its viseme category. Lookup tries the
// exact symbol, then its upper-cased form, and degrades to sil rather
// than failing on symbols outside the inventory.
func FromPhoneme(p phoneme.Phoneme) Viseme {
	if v, ok := phonemeToViseme[p]; ok {
		return v
	}
	if v, ok := phonemeToViseme[phoneme.Phoneme(strings.ToUpper(string(p)))]; ok {
		return v
	}
	return VisemeSil
}
