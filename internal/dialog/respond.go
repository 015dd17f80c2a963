package dialog

import (
	"fmt"
	"strings"

	"github.com/dawoncafe/orderintent/internal/menu"
)

// Fixed prompts. These are spoken verbatim, so wording changes are customer
// facing.
const (
	orderOnlyMessage   = "저는 주문과 관련된 대화만 가능합니다. 주문과 관련된 말씀 부탁드립니다."
	orderDoneMessage   = "주문이 완료되었습니다! 잠시만 기다려주세요."
	emptyOrderMessage  = "아직 주문 내역이 없어요. 먼저 메뉴를 선택해주세요."
	anythingElsePrompt = "더 필요하신 게 있으신가요?"
	clarifyFallback    = "다시 한번 말씀해주시겠어요?"
)

// koPrefix renders a temperature as the adjective used in spoken summaries:
// "따뜻한 아메리카노", "아이스 카페라떼".
func koPrefix(t menu.Temperature) string {
	switch t {
	case menu.Hot:
		return "따뜻한 "
	case menu.Ice:
		return "아이스 "
	}
	return ""
}

// choicePrompt asks the customer to pick a temperature for p.
func choicePrompt(p pending) string {
	qty := ""
	if p.quantity > 1 {
		qty = fmt.Sprintf(" %d잔", p.quantity)
	}
	return fmt.Sprintf("%s%s 온도를 선택해주세요. 따뜻하게 또는 차갑게라고 말씀해주세요.", p.item.Name, qty)
}

// conflictPrompt tells the customer the requested temperature is not offered
// and proposes the available one.
func conflictPrompt(p pending) string {
	return fmt.Sprintf("%s은 %s가 없어요. %s으로 드릴까요, 아니면 다른 메뉴를 선택하시겠어요?",
		p.item.Name, p.requested.Korean(), p.available.Korean())
}

// pendingPrompt is the follow-up question for whichever kind of pending
// entry comes next.
func pendingPrompt(p pending) string {
	if p.conflict {
		return fmt.Sprintf("%s은 %s가 없어요. %s으로 드릴까요?",
			p.item.Name, p.requested.Korean(), p.available.Korean())
	}
	return fmt.Sprintf("%s 온도를 선택해주세요. 따뜻하게 또는 차갑게라고 말씀해주세요.", p.item.Name)
}

// addedSummary renders placed lines as "아메리카노(ICE) 2잔, 크루아상 추가했어요."
func addedSummary(added []addedLine) string {
	parts := make([]string, 0, len(added))
	for _, a := range added {
		s := a.name
		if a.temperature.IsSet() {
			s += fmt.Sprintf("(%s)", a.temperature)
		}
		if a.quantity > 1 {
			s += fmt.Sprintf(" %d잔", a.quantity)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ") + " 추가했어요."
}

// unmatchedSummary reports fragments that matched nothing on the menu.
func unmatchedSummary(unmatched []string) string {
	return fmt.Sprintf("%q은(는) 메뉴에 없어요. 메뉴판을 확인해주세요.", strings.Join(unmatched, ", "))
}
