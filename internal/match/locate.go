// Package match finds menu items in corrected ASR transcripts and resolves
// complete order requests from them.
//
// Location runs in two passes: an exact/substring pass over every available
// catalog item (with and without internal whitespace, since the recogniser
// splits compound names unpredictably), then — only when the first pass finds
// nothing at all — a Levenshtein fallback with a length-proportional
// tolerance. Finding zero items is a normal outcome, not an error; the caller
// treats the utterance as unmatched.
package match

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/dawoncafe/orderintent/internal/menu"
)

const (
	// DefaultFuzzyTolerance is the minimum edit distance accepted by the
	// fuzzy fallback regardless of name length.
	DefaultFuzzyTolerance = 2

	// DefaultFuzzyLengthRatio scales the accepted edit distance with the
	// item name length: tolerance = max(DefaultFuzzyTolerance, ⌊ratio·len⌋).
	DefaultFuzzyLengthRatio = 0.3
)

// Span is one located menu item with its byte offsets in the searched text.
type Span struct {
	Item  *menu.Item
	Start int
	End   int
}

// Locate finds every available catalog item mentioned in text and returns
// the matches in utterance order. Overlapping matches are resolved
// first-match-wins: a later match whose span overlaps an earlier one is
// discarded. Empty or whitespace-only input yields an empty list.
func Locate(c *menu.Catalog, text string) []Span {
	lower := strings.ToLower(text)
	noSpace, backMap := stripSpaces(lower)

	var found []Span
	for _, it := range c.Available() {
		nameLower := strings.ToLower(it.Name)

		// Exact match with the spacing the catalog uses.
		if idx := strings.Index(lower, nameLower); idx >= 0 {
			found = append(found, Span{Item: it, Start: idx, End: idx + len(nameLower)})
			continue
		}

		// Match ignoring whitespace on both sides, mapping the hit back to
		// offsets in the original text.
		nameNoSpace := squash(it.Name)
		if idx := strings.Index(noSpace, nameNoSpace); idx >= 0 {
			found = append(found, spanFromNoSpace(it, lower, backMap, idx, len(nameNoSpace)))
			continue
		}

		if en := squash(it.EnglishName); en != "" {
			if idx := strings.Index(noSpace, en); idx >= 0 {
				found = append(found, spanFromNoSpace(it, lower, backMap, idx, len(en)))
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].Start < found[j].Start })

	// First match wins on overlap.
	var out []Span
	for _, f := range found {
		overlaps := false
		for _, kept := range out {
			if f.Start < kept.End && f.End > kept.Start {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, f)
		}
	}
	return out
}

// Fuzzy returns the available item whose whitespace-stripped name is closest
// to text by Levenshtein distance, provided the distance stays within
// max(tolerance, ⌊lengthRatio·nameLen⌋). Returns nil when nothing is close
// enough.
func Fuzzy(c *menu.Catalog, text string, tolerance int, lengthRatio float64) *menu.Item {
	normalized := squash(text)
	if normalized == "" {
		return nil
	}

	var best *menu.Item
	bestDistance := -1

	for _, it := range c.Available() {
		name := squash(it.Name)
		distance := matchr.Levenshtein(normalized, name)

		limit := int(float64(utf8.RuneCountInString(name)) * lengthRatio)
		if limit < tolerance {
			limit = tolerance
		}

		if distance <= limit && (bestDistance < 0 || distance < bestDistance) {
			bestDistance = distance
			best = it
		}
	}
	return best
}

// orderNoise matches quantity phrases, temperature cues and polite order
// endings. Stripping them leaves (roughly) the spoken item name, which is
// what the fuzzy pass needs to compare against catalog names.
var orderNoise = regexp.MustCompile(`\d+\s*(?:잔|개|컵)` +
	`|(?:열|아홉|여덟|일곱|여섯|다섯|네|세|두|한)\s*(?:잔|개|컵)` +
	`|하나|둘|셋|넷` +
	`|아이스로|아이스|차갑게|차가운|시원하게|시원한|얼음` +
	`|핫으로|핫|따뜻하게|따뜻한|따듯하게|따듯한|뜨겁게|뜨거운|뜨뜻한` +
	`|주시겠어요|주세요|주실래요|할게요|부탁드려요|부탁해요|부탁|주문이요|주문`)

// findInFragment locates a single item inside a fragment of the utterance:
// the substring pass first, then the fuzzy fallback with quantity and
// temperature phrasing stripped. Used by the resolver's segmentation path.
func findInFragment(c *menu.Catalog, fragment string, tolerance int, lengthRatio float64) *menu.Item {
	fragNoSpace := squash(fragment)
	for _, it := range c.Available() {
		if strings.Contains(fragNoSpace, squash(it.Name)) {
			return it
		}
		if en := squash(it.EnglishName); en != "" && strings.Contains(fragNoSpace, en) {
			return it
		}
	}
	return Fuzzy(c, orderNoise.ReplaceAllString(fragment, " "), tolerance, lengthRatio)
}

// stripSpaces removes all whitespace from s and returns the result together
// with a byte-index map from the stripped string back into s.
func stripSpaces(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	backMap := make([]int, 0, len(s))
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		start := b.Len()
		b.WriteRune(r)
		for n := start; n < b.Len(); n++ {
			backMap = append(backMap, i)
		}
	}
	return b.String(), backMap
}

// spanFromNoSpace maps a hit in the whitespace-stripped text back to byte
// offsets in the original text. backMap holds, for every byte of the
// stripped string, the byte offset of that rune in orig.
func spanFromNoSpace(item *menu.Item, orig string, backMap []int, idx, length int) Span {
	start := backMap[idx]
	lastStart := backMap[idx+length-1]
	_, size := utf8.DecodeRuneInString(orig[lastStart:])
	return Span{Item: item, Start: start, End: lastStart + size}
}

// squash lowercases s and strips all whitespace.
func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
