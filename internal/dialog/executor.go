package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/order"
)

// execute applies a classified intent to the order and composes the spoken
// reply.
//
// Items are validated against the catalog here even when a classifier
// already chose temperatures: a requested temperature the item does not
// offer becomes a conflict question, and a missing one on a dual-temperature
// item becomes a choice question. That keeps cloud and rule answers on the
// same footing.
func (e *Engine) execute(ctx context.Context, in *intent.OrderIntent) string {
	// A model sometimes labels "아메리카노 주문할게" as CONFIRM_ORDER. With
	// items attached it is really an add.
	if in.Type == intent.ConfirmOrder && len(in.Items) > 0 {
		in = &intent.OrderIntent{
			Type:       intent.AddItem,
			Items:      in.Items,
			Message:    in.Message,
			Confidence: in.Confidence,
		}
	}

	switch in.Type {
	case intent.AddItem:
		return e.executeAdd(ctx, in)

	case intent.RemoveItem:
		if len(in.Items) == 0 {
			return "삭제할 메뉴를 찾을 수 없습니다."
		}
		var msgs []string
		for _, it := range in.Items {
			msgs = append(msgs, e.removeItem(it))
		}
		return strings.Join(msgs, " ")

	case intent.ChangeQuantity:
		if len(in.Items) == 0 {
			return "변경할 메뉴를 찾을 수 없습니다."
		}
		var msgs []string
		for _, it := range in.Items {
			msgs = append(msgs, e.changeQuantity(it))
		}
		return strings.Join(msgs, " ")

	case intent.ChangeTemperature:
		if len(in.Items) == 0 {
			return "변경할 메뉴를 찾을 수 없습니다."
		}
		var msgs []string
		for _, it := range in.Items {
			msgs = append(msgs, e.changeTemperature(it))
		}
		return strings.Join(msgs, " ")

	case intent.MultiAction:
		return e.executeMulti(ctx, in)

	case intent.ClearOrder:
		if len(e.store.Lines()) == 0 {
			return "주문 내역이 없습니다."
		}
		e.store.Clear()
		return "주문을 취소했습니다."

	case intent.ConfirmOrder:
		return e.finishOrder(ctx)

	case intent.AskClarification:
		if in.Message != "" {
			return in.Message
		}
		return clarifyFallback

	default:
		if in.Message != "" {
			return in.Message
		}
		return orderOnlyMessage
	}
}

// executeAdd places every addable item, queues the rest as temperature
// questions, and composes the combined reply in a fixed order: unknown
// items, conflicts, placed items, then the first open choice.
func (e *Engine) executeAdd(ctx context.Context, in *intent.OrderIntent) string {
	if len(in.Items) == 0 {
		if in.Message != "" {
			return in.Message
		}
		return "추가할 메뉴가 없습니다."
	}

	var (
		added     []addedLine
		questions []pending
		unknown   []string
	)

	for _, it := range in.Items {
		item := e.lookup(it)
		if item == nil {
			unknown = append(unknown, it.MenuName)
			continue
		}

		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}

		switch {
		case it.Temperature.IsSet() && item.Offers(it.Temperature):
			e.store.Add(item, it.Temperature, qty)
			e.metrics.ItemsAdded.Add(ctx, int64(qty))
			added = append(added, addedLine{name: item.Name, temperature: it.Temperature, quantity: qty})

		case it.Temperature.IsSet() && item.SoleTemperature().IsSet():
			questions = append(questions, pending{
				item:      item,
				quantity:  qty,
				conflict:  true,
				requested: it.Temperature,
				available: item.SoleTemperature(),
			})

		case !it.Temperature.IsSet() && len(item.Temperatures) > 1:
			questions = append(questions, pending{item: item, quantity: qty})

		default:
			// Single or no temperature: resolves silently.
			t := item.SoleTemperature()
			e.store.Add(item, t, qty)
			e.metrics.ItemsAdded.Add(ctx, int64(qty))
			added = append(added, addedLine{name: item.Name, temperature: t, quantity: qty})
		}
	}

	e.pushPending(ctx, questions)

	var msgs []string
	if len(unknown) > 0 {
		msgs = append(msgs, unmatchedSummary(unknown))
	}
	if in.Message != "" {
		msgs = append(msgs, in.Message)
	}
	for _, q := range questions {
		if q.conflict {
			msgs = append(msgs, conflictPrompt(q))
		}
	}
	if len(added) > 0 {
		msgs = append(msgs, addedSummary(added))
	}
	for _, q := range questions {
		if !q.conflict {
			msgs = append(msgs, choicePrompt(q))
			break
		}
	}

	if len(msgs) == 0 {
		return "주문하실 메뉴를 말씀해주세요."
	}
	if len(questions) == 0 && len(added) > 0 {
		msgs = append(msgs, anythingElsePrompt)
	}
	return strings.Join(msgs, " ")
}

// executeMulti dispatches per-item actions of a MULTI_ACTION intent.
func (e *Engine) executeMulti(ctx context.Context, in *intent.OrderIntent) string {
	if len(in.Items) == 0 {
		return "처리할 항목이 없습니다."
	}

	var msgs []string
	var adds []intent.Item

	for _, it := range in.Items {
		switch it.Action {
		case intent.AddItem, "ADD", "":
			adds = append(adds, it)
		case intent.RemoveItem, "REMOVE":
			msgs = append(msgs, e.removeItem(it))
		case intent.ChangeQuantity:
			msgs = append(msgs, e.changeQuantity(it))
		case intent.ChangeTemperature:
			msgs = append(msgs, e.changeTemperature(it))
		default:
			e.log.Warn("dialog: unknown action in multi intent", "action", it.Action)
		}
	}

	if len(adds) > 0 {
		msgs = append(msgs, e.executeAdd(ctx, &intent.OrderIntent{Type: intent.AddItem, Items: adds}))
	}
	if len(msgs) == 0 {
		return "요청을 처리했습니다."
	}
	return strings.Join(msgs, " ")
}

// lookup resolves an intent item against the catalog, by ID first and by
// name as a fallback for models that echo the Korean name only.
func (e *Engine) lookup(it intent.Item) *menu.Item {
	if item := e.catalog.ByID(it.MenuID); item != nil {
		return item
	}
	if it.MenuName != "" {
		return e.catalog.ByName(it.MenuName)
	}
	return nil
}

func (e *Engine) removeItem(it intent.Item) string {
	item := e.lookup(it)
	if item == nil {
		return "주문 목록에서 해당 메뉴를 찾을 수 없습니다."
	}
	if e.store.RemoveByMenu(item.ID) == 0 {
		return "주문 목록에서 해당 메뉴를 찾을 수 없습니다."
	}
	return item.Name + " 삭제했습니다."
}

func (e *Engine) changeQuantity(it intent.Item) string {
	item := e.lookup(it)
	if item == nil {
		return "주문 목록에서 해당 메뉴를 찾을 수 없습니다."
	}
	line, ok := e.findLine(item.ID, it.Temperature)
	if !ok {
		return "주문 목록에서 해당 메뉴를 찾을 수 없습니다."
	}

	if it.Quantity <= 0 {
		e.store.Remove(line.ID)
		return line.Name + " 삭제했습니다."
	}
	e.store.SetQuantity(line.ID, it.Quantity)
	return fmt.Sprintf("%s%s %d잔으로 변경했습니다.", koPrefix(line.Temperature), line.Name, it.Quantity)
}

func (e *Engine) changeTemperature(it intent.Item) string {
	item := e.lookup(it)
	if item == nil {
		return "주문 목록에서 해당 메뉴를 찾을 수 없습니다."
	}
	if !it.Temperature.IsSet() {
		return choicePrompt(pending{item: item, quantity: 1})
	}
	line, ok := e.findLine(item.ID, "")
	if !ok {
		return "주문 목록에서 해당 메뉴를 찾을 수 없습니다."
	}

	if !item.Offers(it.Temperature) {
		avail := item.SoleTemperature()
		return fmt.Sprintf("%s은 %s가 없어요. %s만 가능합니다.",
			item.Name, it.Temperature.Korean(), avail.Korean())
	}
	if line.Temperature == it.Temperature {
		return fmt.Sprintf("이미 %s%s입니다.", koPrefix(it.Temperature), line.Name)
	}

	e.store.Remove(line.ID)
	e.store.Add(item, it.Temperature, line.Quantity)
	return fmt.Sprintf("%s%s으로 변경했습니다.", koPrefix(it.Temperature), item.Name)
}

// findLine returns the first order line for menuID, narrowed by temperature
// when one is given.
func (e *Engine) findLine(menuID string, t menu.Temperature) (order.Line, bool) {
	for _, l := range e.store.Lines() {
		if l.MenuID != menuID {
			continue
		}
		if t.IsSet() && l.Temperature != t {
			continue
		}
		return l, true
	}
	return order.Line{}, false
}
