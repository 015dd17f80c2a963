package korean

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// counterQuantities pairs each native-Korean numeral with its counter-word
// forms ("~잔", "~개") and, for some numerals, a standalone form ("하나").
// Larger numbers come first: "열" would otherwise never win against patterns
// embedded in its phrase, and "네 잔" must not be mis-split into "네".
var counterQuantities = []struct {
	pattern *regexp.Regexp
	value   int
}{
	{regexp.MustCompile(`열\s*잔|열\s*개`), 10},
	{regexp.MustCompile(`아홉\s*잔|아홉\s*개`), 9},
	{regexp.MustCompile(`여덟\s*잔|여덟\s*개`), 8},
	{regexp.MustCompile(`일곱\s*잔|일곱\s*개`), 7},
	{regexp.MustCompile(`여섯\s*잔|여섯\s*개`), 6},
	{regexp.MustCompile(`다섯\s*잔|다섯\s*개`), 5},
	{regexp.MustCompile(`네\s*잔|네\s*개|넷`), 4},
	{regexp.MustCompile(`세\s*잔|세\s*개|셋`), 3},
	{regexp.MustCompile(`두\s*잔|두\s*개|둘`), 2},
	{regexp.MustCompile(`한\s*잔|한\s*개|하나`), 1},
}

// arabicQuantity matches an Arabic numeral followed by a counter word
// ("2잔", "3 개", "10컵").
var arabicQuantity = regexp.MustCompile(`(\d+)\s*(잔|개|컵)`)

// standaloneQuantities are native numerals without a counter word. "한",
// "두", "세", "네" are excluded: bare, they are too ambiguous with ordinary
// determiners.
var standaloneQuantities = []struct {
	pattern *regexp.Regexp
	value   int
}{
	{regexp.MustCompile(`열`), 10},
	{regexp.MustCompile(`아홉`), 9},
	{regexp.MustCompile(`여덟`), 8},
	{regexp.MustCompile(`일곱`), 7},
	{regexp.MustCompile(`여섯`), 6},
	{regexp.MustCompile(`다섯`), 5},
	{regexp.MustCompile(`넷`), 4},
	{regexp.MustCompile(`셋`), 3},
	{regexp.MustCompile(`둘`), 2},
}

// EachMarker reports whether text contains an "each/respectively" marker
// (각각, ~씩), which switches multi-item quantity extraction to positional
// pairing.
var eachMarker = regexp.MustCompile(`각각|씩`)

func HasEachMarker(text string) bool {
	return eachMarker.MatchString(text)
}

// Quantity extracts a single order quantity from text, defaulting to 1 when
// no quantity is spoken. An order quantity is never zero or negative.
func Quantity(text string) int {
	n, _ := FindQuantity(text)
	return n
}

// FindQuantity extracts a single order quantity from text and reports
// whether one was actually spoken. The returned quantity is 1 when found is
// false.
//
// Precedence: native numeral with counter word (10 down to 1), then Arabic
// numeral with counter word, then standalone native numeral. Text is checked
// both as-is and with all whitespace stripped, since the recogniser splits
// words unpredictably.
func FindQuantity(text string) (quantity int, found bool) {
	normalized := strings.Join(strings.Fields(text), " ")
	noSpace := strings.Join(strings.Fields(text), "")

	for _, q := range counterQuantities {
		if q.pattern.MatchString(normalized) || q.pattern.MatchString(noSpace) {
			return q.value, true
		}
	}

	m := arabicQuantity.FindStringSubmatch(normalized)
	if m == nil {
		m = arabicQuantity.FindStringSubmatch(noSpace)
	}
	if m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			return n, true
		}
	}

	for _, q := range standaloneQuantities {
		if q.pattern.MatchString(normalized) {
			return q.value, true
		}
	}

	return 1, false
}

// positionalQuantities covers the forms recognised by [Quantities]. Only
// values one through five have reliable positional forms in colloquial
// orders; larger counts come in through the Arabic-numeral pattern.
var positionalQuantities = []struct {
	pattern *regexp.Regexp
	value   int
}{
	{regexp.MustCompile(`한\s*잔|하나|한\s*개`), 1},
	{regexp.MustCompile(`두\s*잔|둘|두\s*개`), 2},
	{regexp.MustCompile(`세\s*잔|셋|세\s*개`), 3},
	{regexp.MustCompile(`네\s*잔|넷|네\s*개`), 4},
	{regexp.MustCompile(`다섯\s*잔|다섯|다섯\s*개`), 5},
}

// Quantities extracts every quantity mentioned in text, in utterance order.
// Used for "각각/씩" orders, where the k-th quantity pairs with the k-th
// menu item regardless of adjacency. Returns [1] when no quantity appears.
func Quantities(text string) []int {
	type hit struct{ value, index int }
	var hits []hit

	for _, m := range arabicQuantity.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n < 1 {
			continue
		}
		hits = append(hits, hit{value: n, index: m[0]})
	}

	for _, q := range positionalQuantities {
		for _, m := range q.pattern.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{value: q.value, index: m[0]})
		}
	}

	if len(hits) == 0 {
		return []int{1}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].index < hits[j].index })
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.value
	}
	return out
}
