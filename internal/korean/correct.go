// Package korean implements the Korean-language primitives of the order
// engine: canonicalisation of known speech-recognition mishearings, serving
// temperature keyword detection, and native/Arabic numeral quantity
// extraction.
//
// Everything in this package is a pure function over strings. The lexicons
// are compiled once at package init and are safe for concurrent use.
package korean

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// correction maps one known mis-transcription to its canonical menu phrase.
type correction struct {
	pattern   *regexp.Regexp
	canonical string // replacement text, including any boundary capture
	full      string // plain canonical phrase
	embedded  bool   // wrong form is a substring of the canonical
	length    int    // pattern length in runes, for ordering
}

// rawCorrections is the mis-hearing dictionary: phrases the speech
// recogniser is known to produce for common menu words, paired with the
// canonical spelling. Entries are applied longest-pattern-first so that a
// short pattern ("라떼") can never pre-empt a longer one that contains it
// ("녹차 라떼"); within equal lengths the declaration order decides.
var rawCorrections = []struct{ wrong, right string }{
	// 콜드브루
	{"콜드 보러", "콜드브루"},
	{"콜드보러", "콜드브루"},
	{"콜드브로", "콜드브루"},
	{"콜드 브로", "콜드브루"},
	{"콜브루", "콜드브루"},
	{"콜드 부루", "콜드브루"},
	{"콜드부루", "콜드브루"},
	{"콜브로", "콜드브루"},
	{"콜드 불루", "콜드브루"},

	// 아메리카노
	{"아메리카나", "아메리카노"},
	{"아멜리카노", "아메리카노"},
	{"아메리까노", "아메리카노"},
	{"어메리카노", "아메리카노"},
	{"아메라카노", "아메리카노"},

	// 축약형: 아아(아이스 아메리카노), 뜨아(뜨거운 아메리카노)
	{"아아", "아이스 아메리카노"},
	{"뜨아", "뜨거운 아메리카노"},

	// 카페라떼
	{"라떼", "카페라떼"},
	{"라테", "카페라떼"},
	{"카페라테", "카페라떼"},
	{"카폐라떼", "카페라떼"},
	{"까페라떼", "카페라떼"},
	{"카페 라떼", "카페라떼"},
	{"카페 라테", "카페라떼"},
	{"카폐라테", "카페라떼"},

	// 바닐라라떼
	{"바닐라라테", "바닐라라떼"},
	{"바닐라 라떼", "바닐라라떼"},
	{"바닐라 라테", "바닐라라떼"},
	{"바닐라떼", "바닐라라떼"},
	{"바닐라레떼", "바닐라라떼"},

	// 카라멜 마키아토
	{"카라멜마키아토", "카라멜 마키아토"},
	{"카라멜 마끼아또", "카라멜 마키아토"},
	{"카라멜마끼아또", "카라멜 마키아토"},
	{"캬라멜 마키아토", "카라멜 마키아토"},
	{"카라맬 마키아토", "카라멜 마키아토"},
	{"마끼아또", "카라멜 마키아토"},
	{"마키아토", "카라멜 마키아토"},
	{"마키아또", "카라멜 마키아토"},
	{"마끼아토", "카라멜 마키아토"},

	// 헤이즐넛라떼
	{"헤이즐넛라테", "헤이즐넛라떼"},
	{"헤이즐넛 라떼", "헤이즐넛라떼"},
	{"헤이즐렛 라떼", "헤이즐넛라떼"},
	{"헤즐넛라떼", "헤이즐넛라떼"},
	{"헤이즐럿라떼", "헤이즐넛라떼"},

	// 카푸치노
	{"카프치노", "카푸치노"},
	{"까푸치노", "카푸치노"},
	{"카푸지노", "카푸치노"},
	{"카푸찌노", "카푸치노"},
	{"카프찌노", "카푸치노"},

	// 에스프레소
	{"에스프레쏘", "에스프레소"},
	{"에스프래소", "에스프레소"},
	{"에스프레소오", "에스프레소"},
	{"엑스프레소", "에스프레소"},

	// 녹차라떼
	{"녹차라테", "녹차라떼"},
	{"녹차 라떼", "녹차라떼"},
	{"녹차 라테", "녹차라떼"},
	{"녹찰라떼", "녹차라떼"},

	// 초코라떼
	{"초코라테", "초코라떼"},
	{"초코 라떼", "초코라떼"},
	{"초콜릿 라떼", "초코라떼"},
	{"초콜릿라떼", "초코라떼"},

	// 유자차
	{"유자 차", "유자차"},
	{"유자쨔", "유자차"},

	// 딸기 스무디
	{"딸기스무디", "딸기 스무디"},
	{"딸기 쓰무디", "딸기 스무디"},
	{"딸기쓰무디", "딸기 스무디"},

	// 망고 스무디
	{"망고스무디", "망고 스무디"},
	{"망고 쓰무디", "망고 스무디"},
	{"망고쓰무디", "망고 스무디"},

	// 크로플
	{"크로푸", "크로플"},
	{"크로풀", "크로플"},
	{"크로플르", "크로플"},

	// 티라미수
	{"티라미슈", "티라미수"},
	{"티라미쑤", "티라미수"},
	{"티라미스", "티라미수"},

	// 치즈케이크
	{"치즈 케이크", "치즈케이크"},
	{"치즈게이크", "치즈케이크"},
	{"치즈게익", "치즈케이크"},

	// 크루아상
	{"크로와상", "크루아상"},
	{"크로아상", "크루아상"},
	{"크루아쌍", "크루아상"},
}

var corrections = compileCorrections()

func compileCorrections() []correction {
	out := make([]correction, 0, len(rawCorrections))
	for _, rc := range rawCorrections {
		expr := "(?i)" + regexp.QuoteMeta(rc.wrong)
		replacement := rc.right
		// A wrong form embedded in its own canonical phrase ("라떼" in
		// "카페라떼", "마키아토" in "카라멜 마키아토") needs two guards, or
		// correcting already-canonical text would stutter it
		// ("카페카페라떼"): the pattern matches only at a word start, and
		// [Correct] skips it entirely while the canonical phrase is present.
		embedded := strings.Contains(rc.right, rc.wrong) && rc.right != rc.wrong
		if embedded {
			expr = "(?i)(^|\\s)" + regexp.QuoteMeta(rc.wrong)
			replacement = "${1}" + rc.right
		}
		out = append(out, correction{
			pattern:   regexp.MustCompile(expr),
			canonical: replacement,
			full:      rc.right,
			embedded:  embedded,
			length:    utf8.RuneCountInString(rc.wrong),
		})
	}
	// Longest pattern first; SliceStable keeps declaration order for ties.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].length > out[j].length
	})
	return out
}

// Correct applies the mis-hearing dictionary to an ASR transcript and
// returns the canonicalised text. The raw transcript should be kept by the
// caller for chat history; only the corrected form feeds the matchers.
func Correct(text string) string {
	for _, c := range corrections {
		if c.embedded && strings.Contains(text, c.full) {
			continue
		}
		text = c.pattern.ReplaceAllString(text, c.canonical)
	}
	return text
}
