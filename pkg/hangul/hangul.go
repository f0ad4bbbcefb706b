// Package hangul implements the Korean/English keyboard-layout
// transliteration used for "did you mean" suggestions. A user typing with
// the wrong input mode produces strings like "gksrmf" (meant "한글") or
// "한국어 typed on the English layout" in reverse. Both directions follow
// the standard dubeolsik (2-beolsik) layout.
//
// The functions are pure so alternate heuristics can be swapped in without
// touching the search flow.
package hangul

import (
	"strings"
	"unicode"
)

const (
	syllableBase = 0xAC00
	syllableEnd  = 0xD7A3
	jungCount    = 21
	jongCount    = 28
)

// Choseong, jungseong, jongseong in canonical Unicode order, expressed as
// compatibility jamo. Jongseong index 0 means "no final consonant".
var (
	choseong = []rune("ㄱㄲㄴㄷㄸㄹㅁㅂㅃㅅㅆㅇㅈㅉㅊㅋㅌㅍㅎ")
	jungseong = []rune("ㅏㅐㅑㅒㅓㅔㅕㅖㅗㅘㅙㅚㅛㅜㅝㅞㅟㅠㅡㅢㅣ")
	jongseong = []rune{0, 'ㄱ', 'ㄲ', 'ㄳ', 'ㄴ', 'ㄵ', 'ㄶ', 'ㄷ', 'ㄹ', 'ㄺ', 'ㄻ', 'ㄼ', 'ㄽ', 'ㄾ', 'ㄿ', 'ㅀ', 'ㅁ', 'ㅂ', 'ㅄ', 'ㅅ', 'ㅆ', 'ㅇ', 'ㅈ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ'}
)

// keyToJamo maps dubeolsik key presses to jamo. Shifted keys give the
// double consonants and the ㅒ/ㅖ vowels.
var keyToJamo = map[rune]rune{
	'q': 'ㅂ', 'w': 'ㅈ', 'e': 'ㄷ', 'r': 'ㄱ', 't': 'ㅅ',
	'y': 'ㅛ', 'u': 'ㅕ', 'i': 'ㅑ', 'o': 'ㅐ', 'p': 'ㅔ',
	'a': 'ㅁ', 's': 'ㄴ', 'd': 'ㅇ', 'f': 'ㄹ', 'g': 'ㅎ',
	'h': 'ㅗ', 'j': 'ㅓ', 'k': 'ㅏ', 'l': 'ㅣ',
	'z': 'ㅋ', 'x': 'ㅌ', 'c': 'ㅊ', 'v': 'ㅍ',
	'b': 'ㅠ', 'n': 'ㅜ', 'm': 'ㅡ',
	'Q': 'ㅃ', 'W': 'ㅉ', 'E': 'ㄸ', 'R': 'ㄲ', 'T': 'ㅆ',
	'O': 'ㅒ', 'P': 'ㅖ',
}

// jamoToKeys is the reverse direction; compound jamo expand to the two key
// presses that produce them.
var jamoToKeys = map[rune]string{
	'ㅂ': "q", 'ㅈ': "w", 'ㄷ': "e", 'ㄱ': "r", 'ㅅ': "t",
	'ㅛ': "y", 'ㅕ': "u", 'ㅑ': "i", 'ㅐ': "o", 'ㅔ': "p",
	'ㅁ': "a", 'ㄴ': "s", 'ㅇ': "d", 'ㄹ': "f", 'ㅎ': "g",
	'ㅗ': "h", 'ㅓ': "j", 'ㅏ': "k", 'ㅣ': "l",
	'ㅋ': "z", 'ㅌ': "x", 'ㅊ': "c", 'ㅍ': "v",
	'ㅠ': "b", 'ㅜ': "n", 'ㅡ': "m",
	'ㅃ': "Q", 'ㅉ': "W", 'ㄸ': "E", 'ㄲ': "R", 'ㅆ': "T",
	'ㅒ': "O", 'ㅖ': "P",
	'ㅘ': "hk", 'ㅙ': "ho", 'ㅚ': "hl", 'ㅝ': "nj", 'ㅞ': "np", 'ㅟ': "nl", 'ㅢ': "ml",
	'ㄳ': "rt", 'ㄵ': "sw", 'ㄶ': "sg", 'ㄺ': "fr", 'ㄻ': "fa", 'ㄼ': "fq",
	'ㄽ': "ft", 'ㄾ': "fx", 'ㄿ': "fv", 'ㅀ': "fg", 'ㅄ': "qt",
}

var vowelCombos = map[[2]rune]rune{
	{'ㅗ', 'ㅏ'}: 'ㅘ', {'ㅗ', 'ㅐ'}: 'ㅙ', {'ㅗ', 'ㅣ'}: 'ㅚ',
	{'ㅜ', 'ㅓ'}: 'ㅝ', {'ㅜ', 'ㅔ'}: 'ㅞ', {'ㅜ', 'ㅣ'}: 'ㅟ',
	{'ㅡ', 'ㅣ'}: 'ㅢ',
}

var jongCombos = map[[2]rune]rune{
	{'ㄱ', 'ㅅ'}: 'ㄳ', {'ㄴ', 'ㅈ'}: 'ㄵ', {'ㄴ', 'ㅎ'}: 'ㄶ',
	{'ㄹ', 'ㄱ'}: 'ㄺ', {'ㄹ', 'ㅁ'}: 'ㄻ', {'ㄹ', 'ㅂ'}: 'ㄼ', {'ㄹ', 'ㅅ'}: 'ㄽ',
	{'ㄹ', 'ㅌ'}: 'ㄾ', {'ㄹ', 'ㅍ'}: 'ㄿ', {'ㄹ', 'ㅎ'}: 'ㅀ',
	{'ㅂ', 'ㅅ'}: 'ㅄ',
}

// jongSplit maps a compound final back to (kept final, consonant carried to
// the next syllable) when a vowel follows.
var jongSplit = map[rune][2]rune{
	'ㄳ': {'ㄱ', 'ㅅ'}, 'ㄵ': {'ㄴ', 'ㅈ'}, 'ㄶ': {'ㄴ', 'ㅎ'},
	'ㄺ': {'ㄹ', 'ㄱ'}, 'ㄻ': {'ㄹ', 'ㅁ'}, 'ㄼ': {'ㄹ', 'ㅂ'}, 'ㄽ': {'ㄹ', 'ㅅ'},
	'ㄾ': {'ㄹ', 'ㅌ'}, 'ㄿ': {'ㄹ', 'ㅍ'}, 'ㅀ': {'ㄹ', 'ㅎ'},
	'ㅄ': {'ㅂ', 'ㅅ'},
}

var (
	choIndex  = indexOf(choseong)
	jungIndex = indexOf(jungseong)
	jongIndex = indexOf(jongseong)
)

func indexOf(rs []rune) map[rune]int {
	m := make(map[rune]int, len(rs))
	for i, r := range rs {
		if r != 0 {
			m[r] = i
		}
	}
	return m
}

func isVowel(j rune) bool { _, ok := jungIndex[j]; return ok }

// composer assembles jamo into complete syllables using the usual dubeolsik
// input automaton.
type composer struct {
	out  strings.Builder
	cho  rune
	jung rune
	jong rune
}

func (c *composer) flush() {
	switch {
	case c.cho != 0 && c.jung != 0:
		ci := choIndex[c.cho]
		ji := jungIndex[c.jung]
		gi := 0
		if c.jong != 0 {
			gi = jongIndex[c.jong]
		}
		c.out.WriteRune(rune(syllableBase + (ci*jungCount+ji)*jongCount + gi))
	case c.cho != 0:
		c.out.WriteRune(c.cho)
	case c.jung != 0:
		c.out.WriteRune(c.jung)
	}
	c.cho, c.jung, c.jong = 0, 0, 0
}

func (c *composer) feedConsonant(j rune) {
	switch {
	case c.cho == 0 && c.jung == 0:
		c.cho = j
	case c.cho != 0 && c.jung != 0 && c.jong == 0:
		if _, ok := jongIndex[j]; ok {
			c.jong = j
			return
		}
		c.flush()
		c.cho = j
	case c.jong != 0:
		if combined, ok := jongCombos[[2]rune{c.jong, j}]; ok {
			c.jong = combined
			return
		}
		c.flush()
		c.cho = j
	default:
		// Lone vowel pending; consonant starts a fresh syllable.
		c.flush()
		c.cho = j
	}
}

func (c *composer) feedVowel(j rune) {
	switch {
	case c.jong != 0:
		// The trailing consonant moves onto the new syllable.
		carry := c.jong
		if parts, ok := jongSplit[carry]; ok {
			c.jong = parts[0]
			carry = parts[1]
		} else {
			c.jong = 0
		}
		c.flush()
		c.cho = carry
		c.jung = j
	case c.jung != 0:
		if combined, ok := vowelCombos[[2]rune{c.jung, j}]; ok {
			c.jung = combined
			return
		}
		c.flush()
		c.jung = j
	default:
		c.jung = j
	}
}

func (c *composer) feedOther(r rune) {
	c.flush()
	c.out.WriteRune(r)
}

// EnglishToHangul reinterprets English keyboard input as dubeolsik key
// presses and composes the resulting jamo into syllables. Characters
// without a jamo mapping pass through unchanged.
func EnglishToHangul(s string) string {
	var c composer
	for _, r := range s {
		j, ok := keyToJamo[r]
		if !ok {
			// Shifted keys matter only for the five double jamo; any other
			// uppercase letter falls back to its lowercase mapping.
			if lower := unicode.ToLower(r); lower != r {
				j, ok = keyToJamo[lower]
			}
		}
		if !ok {
			c.feedOther(r)
			continue
		}
		if isVowel(j) {
			c.feedVowel(j)
		} else {
			c.feedConsonant(j)
		}
	}
	c.flush()
	return c.out.String()
}

// HangulToEnglish decomposes Hangul syllables and maps each jamo back to
// the English key that produces it. Non-Hangul runes pass through.
func HangulToEnglish(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch {
		case r >= syllableBase && r <= syllableEnd:
			idx := int(r - syllableBase)
			cho := choseong[idx/(jungCount*jongCount)]
			jung := jungseong[(idx/jongCount)%jungCount]
			jong := jongseong[idx%jongCount]
			out.WriteString(jamoToKeys[cho])
			out.WriteString(jamoToKeys[jung])
			if jong != 0 {
				out.WriteString(jamoToKeys[jong])
			}
		default:
			if keys, ok := jamoToKeys[r]; ok {
				out.WriteString(keys)
			} else {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}

// SuggestAlternate returns at most one wrong-layout correction for a query,
// or "" when no plausible correction exists. A query with no Hangul is
// remapped English→Hangul, but only accepted if it composes at least one
// full syllable (pure consonant strings like "react" do not). A short
// Hangul query (≤10 runes) is remapped in reverse.
func SuggestAlternate(q string) string {
	hasHangul := false
	runes := 0
	for _, r := range q {
		runes++
		if unicode.Is(unicode.Hangul, r) {
			hasHangul = true
		}
	}

	if !hasHangul {
		alt := EnglishToHangul(q)
		if alt == q || !hasSyllable(alt) {
			return ""
		}
		return alt
	}

	if runes <= 10 {
		if alt := HangulToEnglish(q); alt != q {
			return alt
		}
	}
	return ""
}

func hasSyllable(s string) bool {
	for _, r := range s {
		if r >= syllableBase && r <= syllableEnd {
			return true
		}
	}
	return false
}
