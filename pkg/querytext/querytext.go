// Package querytext provides normalization, tokenization and pattern-escaping
// helpers for user-supplied search queries. Queries mix Korean and English
// freely, so tokenization splits on script boundaries in addition to the
// usual separators.
package querytext

import (
	"strings"
	"unicode"
)

// Normalize trims the query and collapses internal whitespace runs to a
// single space.
func Normalize(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

type scriptClass int

const (
	classOther scriptClass = iota
	classHangul
	classLatin
)

func classify(r rune) scriptClass {
	switch {
	case unicode.Is(unicode.Hangul, r):
		return classHangul
	case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		// Latin letters and digits form one run: "React18" stays together.
		return classLatin
	default:
		return classOther
	}
}

// Tokenize splits a query into discrete tokens. Separators are whitespace
// and commas; additionally a transition between a Hangul run and a
// Latin/digit run starts a new token even without whitespace, so
// "React개발자" yields ["React", "개발자"].
func Tokenize(q string) []string {
	var tokens []string
	var cur strings.Builder
	prev := classOther

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range q {
		if unicode.IsSpace(r) || r == ',' {
			flush()
			prev = classOther
			continue
		}
		cls := classify(r)
		if cur.Len() > 0 && cls != prev && prev != classOther && cls != classOther {
			flush()
		}
		cur.WriteRune(r)
		prev = cls
	}
	flush()

	return tokens
}

// EscapeLike escapes LIKE/ILIKE metacharacters so a user-supplied term can
// only ever match literally inside a pattern. The backslash must be escaped
// first. This runs regardless of parameterization: bind parameters stop SQL
// injection but not wildcard injection inside a pattern.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ContainsPattern builds a case-insensitive substring pattern for an
// already-raw term, escaping it first.
func ContainsPattern(term string) string {
	return "%" + EscapeLike(term) + "%"
}

// HasHangul reports whether the string contains at least one Hangul rune
// (syllables or jamo).
func HasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
