// Package prompt builds the classification prompts shared by the cloud
// intent sources.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent"
)

// System returns the system prompt with the catalog embedded, so the model
// only ever answers with real menu IDs.
func System(catalog *menu.Catalog) string {
	var b strings.Builder
	b.WriteString(`당신은 카페 키오스크의 주문 분석기입니다. 손님의 말을 분석해 JSON 하나로만 답하세요.

응답 형식:
{"type": "<의도>", "items": [{"menuId": "...", "menuName": "...", "temperature": "HOT"|"ICE"|null, "quantity": 1, "action": "ADD"}], "message": "...", "confidence": 0.0}

의도 종류: ADD_ITEM, REMOVE_ITEM, CHANGE_QUANTITY, CHANGE_TEMPERATURE, MULTI_ACTION, CLEAR_ORDER, CONFIRM_ORDER, ASK_CLARIFICATION, UNKNOWN

규칙:
- menuId는 반드시 아래 메뉴판의 id 중 하나여야 합니다.
- 온도를 말하지 않았고 메뉴가 HOT/ICE 둘 다 가능하면 temperature는 null로 두세요.
- 메뉴가 한 온도만 가능하면 그 온도를 넣으세요.
- 주문과 무관한 말은 UNKNOWN으로 분류하고 message에 안내 문구를 넣으세요.
- confidence는 0.0에서 1.0 사이입니다.

메뉴판:
`)

	type promptItem struct {
		ID           string   `json:"id"`
		Name         string   `json:"name"`
		Price        int      `json:"price"`
		Temperatures []string `json:"temperatures,omitempty"`
	}
	items := make([]promptItem, 0, len(catalog.Available()))
	for _, it := range catalog.Available() {
		pi := promptItem{ID: it.ID, Name: it.Name, Price: it.Price}
		for _, t := range it.Temperatures {
			pi.Temperatures = append(pi.Temperatures, string(t))
		}
		items = append(items, pi)
	}
	enc, _ := json.Marshal(items)
	b.Write(enc)
	return b.String()
}

// User renders one classification request: the current order, any pending
// clarification question, and the transcript itself.
func User(req intent.Request) string {
	var b strings.Builder

	if len(req.Current) > 0 {
		b.WriteString("현재 주문 내역:\n")
		for _, it := range req.Current {
			temp := "온도 미정"
			if it.Temperature.IsSet() {
				temp = it.Temperature.Korean()
			}
			fmt.Fprintf(&b, "- %s (%s) x%d\n", it.Name, temp, it.Quantity)
		}
	}
	if req.Pending != nil {
		fmt.Fprintf(&b, "대기 중인 질문: %q에 대해 \"%s\"\n", req.Pending.MenuName, req.Pending.Question)
	}
	fmt.Fprintf(&b, "손님의 말: %q", req.Transcript)
	return b.String()
}
