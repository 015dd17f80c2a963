// Package rule implements intent classification without any model: the
// deterministic resolver pipeline packaged as an intent source. It always
// answers, which makes it the natural last element of a chain.
package rule

import (
	"context"
	"strings"

	"github.com/dawoncafe/orderintent/internal/korean"
	"github.com/dawoncafe/orderintent/internal/match"
	"github.com/dawoncafe/orderintent/pkg/intent"
)

const (
	matchedConfidence   = 0.9
	unmatchedConfidence = 0.3

	notFoundMessage = "죄송해요, 말씀하신 메뉴를 찾지 못했어요. 다시 말씀해 주시겠어요?"
)

// Source classifies by running the rule-based resolver over the transcript.
type Source struct {
	resolver *match.Resolver
}

var _ intent.Source = (*Source)(nil)

// New builds a rule source around resolver.
func New(resolver *match.Resolver) *Source {
	return &Source{resolver: resolver}
}

// Classify implements intent.Source. It never returns an error.
//
// Every recovered item is reported with the temperature the customer asked
// for, valid or not; the executor validates against the catalog and opens a
// clarification dialogue where needed. An utterance that matched nothing but
// carries order cues (a quantity, a temperature word, order phrasing) is
// UNKNOWN with a menu-not-found message; without cues it is UNKNOWN with no
// message, which downstream treats as off-topic talk.
func (s *Source) Classify(_ context.Context, req intent.Request) (*intent.OrderIntent, error) {
	res := s.resolver.Resolve(req.Transcript)

	if len(res.Orders) > 0 || len(res.Conflicts) > 0 {
		out := &intent.OrderIntent{Type: intent.AddItem, Confidence: matchedConfidence}
		for _, o := range res.Orders {
			out.Items = append(out.Items, intent.Item{
				MenuID:      o.Item.ID,
				MenuName:    o.Item.Name,
				Temperature: o.Temperature,
				Quantity:    o.Quantity,
			})
		}
		for _, c := range res.Conflicts {
			out.Items = append(out.Items, intent.Item{
				MenuID:      c.Item.ID,
				MenuName:    c.Item.Name,
				Temperature: c.Requested,
				Quantity:    c.Quantity,
			})
		}
		if len(res.Unmatched) > 0 {
			out.Message = notFoundMessage
		}
		return out, nil
	}

	if len(res.Unmatched) > 0 && hasOrderCue(req.Transcript) {
		return &intent.OrderIntent{
			Type:       intent.Unknown,
			Message:    notFoundMessage,
			Confidence: unmatchedConfidence,
		}, nil
	}

	return &intent.OrderIntent{Type: intent.Unknown, Confidence: unmatchedConfidence}, nil
}

var orderPhrases = []string{"주세요", "주문", "주시", "할게요", "잔", "개", "컵"}

// hasOrderCue reports whether the utterance sounds like an order attempt
// even though no menu item was recognised.
func hasOrderCue(transcript string) bool {
	if _, found := korean.FindQuantity(transcript); found {
		return true
	}
	if korean.Temperature(transcript).IsSet() {
		return true
	}
	for _, p := range orderPhrases {
		if strings.Contains(transcript, p) {
			return true
		}
	}
	return false
}
