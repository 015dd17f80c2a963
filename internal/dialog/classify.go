package dialog

import (
	"strings"

	"github.com/dawoncafe/orderintent/internal/menu"
)

// Keyword lists for the short replies that never reach a classifier. All
// checks are substring matches over the lowercased, trimmed utterance, so
// "네, 좋아요" and "괜찮아요~" both read as agreement.
var (
	confirmKeywords = []string{
		"네", "응", "예", "좋아", "좋아요", "그래", "그래요",
		"핫으로", "핫으로 해", "핫으로 해주세요", "그걸로", "그걸로 해",
		"괜찮아", "괜찮아요",
	}

	rejectKeywords = []string{
		"아니", "아니요", "아뇨", "싫어", "싫어요",
		"다른", "다른거", "다른 거", "취소",
		"안 할래", "안할래", "됐어", "됐어요",
	}

	replyHotKeywords = []string{"핫", "따뜻한", "따듯한", "뜨거운", "따뜻하게", "따듯하게", "뜨겁게", "hot"}
	replyIceKeywords = []string{"아이스", "차가운", "시원한", "차갑게", "시원하게", "ice", "iced"}

	confirmIntentKeywords = []string{
		"이대로 주문", "이대로 해", "이걸로 해", "이걸로 주문",
		"주문할게", "주문 할게", "주문해줘", "주문 해줘",
		"결제할게", "결제 할게", "결제해줘", "결제 해줘",
		"계산할게", "계산 할게", "계산해줘", "계산 해줘",
		"끝이야", "끝 이야", "다 됐어", "다됐어", "다 했어",
		"그게 다야", "그게 전부야", "더 없어", "더없어",
		"주문 완료", "주문완료", "확정", "완료",
	}
)

// IsConfirmation reports whether text is an agreement reply.
func IsConfirmation(text string) bool {
	return containsAny(text, confirmKeywords)
}

// IsRejection reports whether text declines or cancels.
func IsRejection(text string) bool {
	return containsAny(text, rejectKeywords)
}

// TemperatureReply extracts a temperature choice from a short reply. Cold
// words are checked first, like everywhere else in the pipeline.
func TemperatureReply(text string) menu.Temperature {
	if containsAny(text, replyIceKeywords) {
		return menu.Ice
	}
	if containsAny(text, replyHotKeywords) {
		return menu.Hot
	}
	return ""
}

// IsOrderConfirm reports whether text asks to finalise the whole order.
func IsOrderConfirm(text string) bool {
	return containsAny(text, confirmIntentKeywords)
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
