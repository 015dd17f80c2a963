package match

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dawoncafe/orderintent/internal/korean"
	"github.com/dawoncafe/orderintent/internal/menu"
)

// Order is one menu item recovered from an utterance, together with
// everything needed to either place it or ask the customer a follow-up.
type Order struct {
	Item *menu.Item

	// Temperature is the serving temperature to place the order at. Unset
	// when the customer still has to choose (the item offers more than one
	// option) or when the item has no temperature at all.
	Temperature menu.Temperature

	// Quantity is always at least 1.
	Quantity int

	// NeedsConfirm marks a true temperature conflict: the customer asked for
	// a temperature the item is not offered at. Requested carries the denied
	// option and Available the one the item actually has. An Order with an
	// unset Temperature and NeedsConfirm false merely lacks a choice.
	NeedsConfirm bool
	Requested    menu.Temperature
	Available    menu.Temperature
}

// Result is the outcome of resolving one utterance.
type Result struct {
	// Orders are fully resolved requests plus items that still need a
	// temperature choice (Temperature unset with multiple options). Nothing
	// has been applied to a store yet; that is the caller's job.
	Orders []Order

	// Unmatched collects utterance fragments that look like order attempts
	// but matched no catalog item.
	Unmatched []string

	// Conflicts are requests whose asked-for temperature the item does not
	// offer. They are never placed without a follow-up answer.
	Conflicts []Order
}

// Empty reports whether resolving produced nothing at all.
func (r Result) Empty() bool {
	return len(r.Orders) == 0 && len(r.Unmatched) == 0 && len(r.Conflicts) == 0
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithFuzzyTolerance sets the minimum accepted edit distance for the fuzzy
// fallback. Default: [DefaultFuzzyTolerance].
func WithFuzzyTolerance(n int) Option {
	return func(r *Resolver) { r.tolerance = n }
}

// WithFuzzyLengthRatio sets the length-proportional part of the fuzzy
// tolerance. Default: [DefaultFuzzyLengthRatio].
func WithFuzzyLengthRatio(ratio float64) Option {
	return func(r *Resolver) { r.lengthRatio = ratio }
}

// Resolver turns corrected transcripts into order requests using the
// rule-based pipeline: locate items, scope quantity and temperature per
// item, validate temperatures against the catalog. It is read-only after
// construction and safe for concurrent use.
type Resolver struct {
	catalog     *menu.Catalog
	tolerance   int
	lengthRatio float64
}

// NewResolver builds a Resolver over catalog.
func NewResolver(catalog *menu.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:     catalog,
		tolerance:   DefaultFuzzyTolerance,
		lengthRatio: DefaultFuzzyLengthRatio,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve analyses one raw transcript. The mis-hearing dictionary is applied
// first; the corrected text feeds every downstream step.
//
// Quantity and temperature scoping with N located items:
//
//   - temperature for item i is read from the text strictly between item i-1
//     and item i — a temperature word modifies the item that follows it.
//   - quantity for item i is read from the text between item i and item i+1;
//     when no quantity is spoken there, a non-default quantity in the
//     preceding context is taken instead.
//   - an "각각/씩" utterance switches to positional pairing: the k-th
//     quantity found anywhere goes to the k-th item.
func (r *Resolver) Resolve(transcript string) Result {
	result := Result{}

	corrected := korean.Correct(strings.TrimSpace(transcript))
	if corrected == "" {
		return result
	}

	spans := Locate(r.catalog, corrected)

	if len(spans) == 0 {
		// No direct hit anywhere: split on connectives and retry fragment by
		// fragment, collecting what still cannot be matched.
		for _, seg := range segment(corrected) {
			if utf8.RuneCountInString(strings.TrimSpace(seg)) <= 1 {
				continue
			}
			item := findInFragment(r.catalog, seg, r.tolerance, r.lengthRatio)
			if item == nil {
				result.Unmatched = append(result.Unmatched, strings.TrimSpace(seg))
				continue
			}
			r.place(&result, item, korean.Temperature(seg), korean.Quantity(seg))
		}
		return result
	}

	switch {
	case korean.HasEachMarker(corrected) && len(spans) > 1:
		quantities := korean.Quantities(corrected)
		for i, span := range spans {
			contextStart := 0
			if i > 0 {
				contextStart = spans[i-1].End
			}
			requested := korean.Temperature(corrected[contextStart:span.Start])

			qty := quantities[len(quantities)-1]
			if i < len(quantities) {
				qty = quantities[i]
			}
			r.place(&result, span.Item, requested, qty)
		}

	case len(spans) == 1:
		r.place(&result, spans[0].Item, korean.Temperature(corrected), korean.Quantity(corrected))

	default:
		for i, span := range spans {
			contextStart := 0
			if i > 0 {
				contextStart = spans[i-1].End
			}
			before := corrected[contextStart:span.Start]

			contextEnd := len(corrected)
			if i < len(spans)-1 {
				contextEnd = spans[i+1].Start
			}
			after := corrected[span.End:contextEnd]

			qty, found := korean.FindQuantity(after)
			if !found {
				if fromBefore := korean.Quantity(before); fromBefore > 1 {
					qty = fromBefore
				}
			}
			r.place(&result, span.Item, korean.Temperature(before), qty)
		}
	}

	return result
}

// place validates the requested temperature against the item and files the
// request under Orders or Conflicts.
func (r *Resolver) place(result *Result, item *menu.Item, requested menu.Temperature, qty int) {
	if qty < 1 {
		qty = 1
	}

	if requested.IsSet() {
		if item.Offers(requested) {
			result.Orders = append(result.Orders, Order{Item: item, Temperature: requested, Quantity: qty})
			return
		}
		if available := item.SoleTemperature(); available.IsSet() {
			result.Conflicts = append(result.Conflicts, Order{
				Item:         item,
				Quantity:     qty,
				NeedsConfirm: true,
				Requested:    requested,
				Available:    available,
			})
			return
		}
		// Item has no temperature at all (dessert): the cue word was noise.
		result.Orders = append(result.Orders, Order{Item: item, Quantity: qty})
		return
	}

	// No temperature spoken: a single option resolves silently; multiple
	// options leave the choice open; none means there is nothing to choose.
	result.Orders = append(result.Orders, Order{
		Item:        item,
		Temperature: item.SoleTemperature(),
		Quantity:    qty,
	})
}

// segmentSeparators splits an utterance at explicit Korean connectives
// ("하고", "이랑", "그리고", ...) and sentence-final "~요 " boundaries.
var segmentSeparators = regexp.MustCompile(`\s*(?:하고|이랑|그리고|랑|와|과|,|요\s+)\s*`)

// temperatureBreak detects a quantity immediately followed by a temperature
// word — the signature of a new item starting without any connective, as in
// "아메리카노 1잔 따뜻한 카페라떼".
var temperatureBreak = regexp.MustCompile(`(\d+\s*잔|\d+\s*개|한\s*잔|두\s*잔|세\s*잔|하나|둘|셋)\s+(핫|따뜻한|따듯한|뜨거운|아이스|차가운|시원한)`)

// segment splits an utterance into candidate per-item fragments.
func segment(input string) []string {
	var out []string

	for _, part := range segmentSeparators.Split(input, -1) {
		if strings.TrimSpace(part) == "" {
			continue
		}

		matches := temperatureBreak.FindAllStringSubmatchIndex(part, -1)
		if len(matches) == 0 {
			out = append(out, strings.TrimSpace(part))
			continue
		}

		// Cut after each quantity; the temperature word opens the next
		// fragment.
		last := 0
		for _, m := range matches {
			quantityEnd := m[3]
			if sub := strings.TrimSpace(part[last:quantityEnd]); sub != "" {
				out = append(out, sub)
			}
			last = quantityEnd
		}
		if rest := strings.TrimSpace(part[last:]); rest != "" {
			out = append(out, rest)
		}
	}

	return out
}
