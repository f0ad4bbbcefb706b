package hangul

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglishToHangul(t *testing.T) {
	cases := map[string]string{
		"gksrmf":   "한글",
		"dkssud":   "안녕",
		"gksrnrdj": "한국어",
		// Compound vowel: ㅜ + ㅣ composes to ㅟ.
		"dnl": "위",
		// Compound final: ㄹ + ㄱ composes to ㄺ.
		"ekfr": "닭",
		// Consonant-only input stays bare jamo, no syllables.
		"react": "ㄱㄷㅁㅊㅅ",
	}
	for in, want := range cases {
		assert.Equal(t, want, EnglishToHangul(in), "input %q", in)
	}

	t.Run("Should pass unmapped characters through", func(t *testing.T) {
		assert.Equal(t, "한글 2024!", EnglishToHangul("gksrmf 2024!"))
	})

	t.Run("Should fall back to lowercase for uppercase keys", func(t *testing.T) {
		// G is not a shifted jamo key, so it acts like g.
		assert.Equal(t, EnglishToHangul("gksrmf"), EnglishToHangul("Gksrmf"))
	})

	t.Run("Should map shifted keys to double jamo", func(t *testing.T) {
		// Rkd = ㄲ+ㅏ+ㅇ = 깡
		assert.Equal(t, "깡", EnglishToHangul("Rkd"))
	})
}

func TestHangulToEnglish(t *testing.T) {
	cases := map[string]string{
		"한글":  "gksrmf",
		"안녕":  "dkssud",
		"한국어": "gksrnrdj",
		"위":   "dnl",
		"닭":   "ekfr",
	}
	for in, want := range cases {
		assert.Equal(t, want, HangulToEnglish(in), "input %q", in)
	}

	t.Run("Should pass non-Hangul through", func(t *testing.T) {
		assert.Equal(t, "gks 123", HangulToEnglish("한 123"))
	})
}

func TestRoundTrip(t *testing.T) {
	for _, word := range []string{"한글", "안녕하세요", "검색", "개발자"} {
		assert.Equal(t, word, EnglishToHangul(HangulToEnglish(word)), "word %q", word)
	}
}

func TestSuggestAlternate(t *testing.T) {
	t.Run("Should correct wrong-layout English to Hangul", func(t *testing.T) {
		assert.Equal(t, "한글", SuggestAlternate("gksrmf"))
	})

	t.Run("Should not suggest for plausible English words", func(t *testing.T) {
		// No vowel keys, so no syllable ever composes.
		assert.Equal(t, "", SuggestAlternate("react"))
	})

	t.Run("Should correct short Hangul to English", func(t *testing.T) {
		assert.Equal(t, "gksrmf", SuggestAlternate("한글"))
	})

	t.Run("Should not correct long Hangul queries", func(t *testing.T) {
		assert.Equal(t, "", SuggestAlternate("백엔드 개발자 오년차 서울 거주중"))
	})
}
