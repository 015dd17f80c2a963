package korean

import (
	"strings"

	"github.com/dawoncafe/orderintent/internal/menu"
)

// Cold and hot cue words, checked against the lowercased utterance.
// ICE keywords are scanned before HOT ones: when an utterance carries both,
// ICE wins. That tie-break is deliberate, not an artefact of ordering.
var (
	iceKeywords = []string{"아이스", "차가운", "시원한", "얼음", "ice", "iced", "아이스로", "차갑게", "시원하게"}
	hotKeywords = []string{"핫", "따뜻한", "따듯한", "뜨거운", "뜨뜻한", "hot", "핫으로", "따뜻하게", "따듯하게", "뜨겁게"}
)

// Temperature extracts a serving-temperature cue from text. The zero
// Temperature is returned when no cue word appears.
func Temperature(text string) menu.Temperature {
	lower := strings.ToLower(text)

	for _, kw := range iceKeywords {
		if strings.Contains(lower, kw) {
			return menu.Ice
		}
	}
	for _, kw := range hotKeywords {
		if strings.Contains(lower, kw) {
			return menu.Hot
		}
	}
	return ""
}
