package dialog_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dawoncafe/orderintent/internal/dialog"
	"github.com/dawoncafe/orderintent/internal/echo"
	"github.com/dawoncafe/orderintent/internal/match"
	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/intent/mock"
	"github.com/dawoncafe/orderintent/pkg/intent/rule"
	"github.com/dawoncafe/orderintent/pkg/order"
)

// recorder captures everything the engine reports.
type recorder struct {
	mu        sync.Mutex
	replies   []string
	interims  []string
	finals    []string
	confirmed [][]order.Line
}

func (r *recorder) Transcript(text string, interim bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if interim {
		r.interims = append(r.interims, text)
	} else {
		r.finals = append(r.finals, text)
	}
}

func (r *recorder) Reply(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
}

func (r *recorder) Typing(bool) {}

func (r *recorder) Confirmed(lines []order.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed = append(r.confirmed, lines)
}

func (r *recorder) lastReply() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

func (r *recorder) replyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies)
}

// newEngine builds an engine over the default catalog with the rule source,
// which is the configuration the fallback path runs in production.
func newEngine(t *testing.T, opts ...dialog.Option) (*dialog.Engine, *order.MemStore, *recorder) {
	t.Helper()
	catalog := menu.Default()
	store := order.NewMemStore()
	rec := &recorder{}
	src := rule.New(match.NewResolver(catalog))
	opts = append([]dialog.Option{dialog.WithEvents(rec)}, opts...)
	return dialog.New(catalog, store, src, opts...), store, rec
}

func speak(t *testing.T, e *dialog.Engine, text string) {
	t.Helper()
	if err := e.HandleSpeechResult(context.Background(), text, true); err != nil {
		t.Fatalf("HandleSpeechResult(%q): %v", text, err)
	}
}

func TestAddSimpleOrder(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)
	speak(t, e, "아이스 아메리카노 한 잔 주세요")

	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].MenuID != "americano" || lines[0].Temperature != menu.Ice || lines[0].Quantity != 1 {
		t.Errorf("line = %+v, want americano/ICE/1", lines[0])
	}
	if !strings.Contains(rec.lastReply(), "추가했어요") {
		t.Errorf("reply = %q, want an added confirmation", rec.lastReply())
	}
}

func TestTemperatureClarificationDialogue(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "카페라떼 두 잔 주세요")
	if len(store.Lines()) != 0 {
		t.Fatal("latte placed before the temperature was chosen")
	}
	if e.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", e.Pending())
	}
	if !strings.Contains(rec.lastReply(), "온도를 선택해주세요") {
		t.Errorf("reply = %q, want a temperature question", rec.lastReply())
	}

	speak(t, e, "따뜻하게 주세요")
	lines := store.Lines()
	if len(lines) != 1 || lines[0].Temperature != menu.Hot || lines[0].Quantity != 2 {
		t.Fatalf("lines = %+v, want one HOT latte x2", lines)
	}
	if e.Pending() != 0 {
		t.Errorf("pending = %d after answer, want 0", e.Pending())
	}
	if !strings.Contains(rec.lastReply(), "추가했어요") {
		t.Errorf("reply = %q, want an added confirmation", rec.lastReply())
	}
}

func TestTemperatureConflictAccepted(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "핫 콜드브루 주세요")
	if len(store.Lines()) != 0 {
		t.Fatal("conflicting item placed without asking")
	}
	reply := rec.lastReply()
	if !strings.Contains(reply, "없어요") || !strings.Contains(reply, "드릴까요") {
		t.Errorf("reply = %q, want a conflict question", reply)
	}

	speak(t, e, "네 그걸로 주세요")
	lines := store.Lines()
	if len(lines) != 1 || lines[0].MenuID != "cold-brew" || lines[0].Temperature != menu.Ice {
		t.Fatalf("lines = %+v, want iced cold brew", lines)
	}
}

func TestTemperatureConflictRejected(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "핫 콜드브루 주세요")
	speak(t, e, "아니요")

	if len(store.Lines()) != 0 {
		t.Fatalf("lines = %+v, want none after rejection", store.Lines())
	}
	if e.Pending() != 0 {
		t.Errorf("pending = %d, want 0", e.Pending())
	}
	if !strings.Contains(rec.lastReply(), "뺐어요") {
		t.Errorf("reply = %q, want a removal notice", rec.lastReply())
	}
}

func TestConflictQueueServedInOrder(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "핫 콜드브루랑 아이스 에스프레소 주세요")
	if e.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", e.Pending())
	}

	// First answer settles the cold brew, and the reply chains the espresso
	// question.
	speak(t, e, "네")
	if !strings.Contains(rec.lastReply(), "에스프레소") {
		t.Errorf("reply = %q, want the next question about the espresso", rec.lastReply())
	}

	speak(t, e, "네")
	lines := store.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %+v, want both items placed", lines)
	}
	if lines[0].MenuID != "cold-brew" || lines[0].Temperature != menu.Ice {
		t.Errorf("first line = %+v, want iced cold brew", lines[0])
	}
	if lines[1].MenuID != "espresso" || lines[1].Temperature != menu.Hot {
		t.Errorf("second line = %+v, want hot espresso", lines[1])
	}
}

func TestAddWhileClarificationPending(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "카페라떼 주세요")
	if e.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", e.Pending())
	}

	// Ordering something else instead of answering places it right away,
	// with the usual added summary. The open latte question stays queued.
	speak(t, e, "크루아상 하나 주세요")
	reply := rec.lastReply()
	if !strings.Contains(reply, "크루아상") || !strings.Contains(reply, "추가했어요") {
		t.Errorf("reply = %q, want the croissant summary", reply)
	}
	lines := store.Lines()
	if len(lines) != 1 || lines[0].MenuID != "croissant" {
		t.Fatalf("lines = %+v, want just the croissant", lines)
	}
	if e.Pending() != 1 {
		t.Fatalf("pending = %d after side order, want 1", e.Pending())
	}

	speak(t, e, "따뜻하게 주세요")
	lines = store.Lines()
	if len(lines) != 2 || lines[1].MenuID != "cafe-latte" || lines[1].Temperature != menu.Hot {
		t.Fatalf("lines = %+v, want the hot latte settled after the croissant", lines)
	}
}

func TestTemperatureSelectByTouch(t *testing.T) {
	t.Parallel()

	e, store, _ := newEngine(t)

	speak(t, e, "카페라떼 하나요")
	e.HandleTemperatureSelect(context.Background(), menu.Ice)

	lines := store.Lines()
	if len(lines) != 1 || lines[0].Temperature != menu.Ice {
		t.Fatalf("lines = %+v, want one iced latte", lines)
	}
}

func TestOrderConfirmation(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "아이스 아메리카노 두 잔 주세요")
	speak(t, e, "주문할게요")

	if got := rec.lastReply(); !strings.Contains(got, "주문이 완료되었습니다") {
		t.Errorf("reply = %q, want the completion message", got)
	}
	rec.mu.Lock()
	confirmed := len(rec.confirmed)
	rec.mu.Unlock()
	if confirmed != 1 {
		t.Fatalf("confirmed %d times, want 1", confirmed)
	}
	if len(store.Lines()) != 0 {
		t.Error("order not cleared after confirmation")
	}
}

func TestConfirmWithEmptyOrder(t *testing.T) {
	t.Parallel()

	e, _, rec := newEngine(t)
	speak(t, e, "주문 완료")

	if got := rec.lastReply(); !strings.Contains(got, "아직 주문 내역이 없어요") {
		t.Errorf("reply = %q, want the empty-order notice", got)
	}
}

func TestConfirmBlockedByPendingQuestion(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	speak(t, e, "카페라떼 주세요")
	speak(t, e, "이대로 주문해줘")

	if got := rec.lastReply(); !strings.Contains(got, "먼저") || !strings.Contains(got, "온도") {
		t.Errorf("reply = %q, want the choose-temperature-first notice", got)
	}
	if len(store.Lines()) != 0 {
		t.Error("order confirmed with an open temperature question")
	}
}

func TestOffTopicUtterance(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)
	speak(t, e, "오늘 날씨 어때요")

	if got := rec.lastReply(); !strings.Contains(got, "주문과 관련된") {
		t.Errorf("reply = %q, want the order-only guide", got)
	}
	if len(store.Lines()) != 0 {
		t.Error("off-topic utterance changed the order")
	}
}

func TestInterimResultsOnlyUpdateTranscript(t *testing.T) {
	t.Parallel()

	e, store, rec := newEngine(t)

	if err := e.HandleSpeechResult(context.Background(), "아이스 아메리", false); err != nil {
		t.Fatalf("HandleSpeechResult: %v", err)
	}

	rec.mu.Lock()
	interims := len(rec.interims)
	rec.mu.Unlock()
	if interims != 1 {
		t.Errorf("interim transcripts = %d, want 1", interims)
	}
	if len(store.Lines()) != 0 || rec.replyCount() != 0 {
		t.Error("interim result triggered processing")
	}
}

func TestEchoOfOwnReplyIsDropped(t *testing.T) {
	t.Parallel()

	fixed := time.Unix(1700000000, 0)
	filter := echo.New(echo.WithClock(func() time.Time { return fixed }))
	e, store, rec := newEngine(t, dialog.WithEchoFilter(filter))

	speak(t, e, "아이스 아메리카노 한 잔 주세요")
	reply := rec.lastReply()
	replies := rec.replyCount()

	// The reply comes back through the microphone while playback runs.
	speak(t, e, reply)

	if rec.replyCount() != replies {
		t.Errorf("echo produced a new reply: %q", rec.lastReply())
	}
	if len(store.Lines()) != 1 {
		t.Errorf("echo changed the order: %+v", store.Lines())
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	e, store, _ := newEngine(t)

	speak(t, e, "아이스 아메리카노 주세요")
	speak(t, e, "카페라떼 주세요")
	e.Reset(context.Background())

	if len(store.Lines()) != 0 {
		t.Error("order survived Reset")
	}
	if e.Pending() != 0 {
		t.Error("pending questions survived Reset")
	}
}

func TestConfirmOrderWithItemsReclassified(t *testing.T) {
	t.Parallel()

	catalog := menu.Default()
	store := order.NewMemStore()
	rec := &recorder{}
	src := &mock.Source{Result: &intent.OrderIntent{
		Type: intent.ConfirmOrder,
		Items: []intent.Item{
			{MenuID: "americano", MenuName: "아메리카노", Temperature: menu.Ice, Quantity: 1},
		},
		Confidence: 0.9,
	}}
	e := dialog.New(catalog, store, src, dialog.WithEvents(rec))

	speak(t, e, "아이스 아메리카노 하나 담아줘")

	lines := store.Lines()
	if len(lines) != 1 || lines[0].MenuID != "americano" {
		t.Fatalf("lines = %+v, want the item added instead of a confirmation", lines)
	}
	rec.mu.Lock()
	confirmed := len(rec.confirmed)
	rec.mu.Unlock()
	if confirmed != 0 {
		t.Errorf("order confirmed %d times, want 0", confirmed)
	}
}

// blockingSource parks Classify until released, to probe the in-flight guard.
type blockingSource struct {
	entered chan struct{}
	release chan struct{}
	calls   int32
}

func (b *blockingSource) Classify(ctx context.Context, _ intent.Request) (*intent.OrderIntent, error) {
	atomic.AddInt32(&b.calls, 1)
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &intent.OrderIntent{Type: intent.Unknown, Confidence: 0.9}, nil
}

func TestSecondFinalDroppedWhileProcessing(t *testing.T) {
	t.Parallel()

	src := &blockingSource{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	rec := &recorder{}
	e := dialog.New(menu.Default(), order.NewMemStore(), src, dialog.WithEvents(rec))

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.HandleSpeechResult(context.Background(), "아메리카노 주세요", true)
	}()

	<-src.entered

	// A second final while the first is still classifying is dropped.
	speak(t, e, "카페라떼 주세요")
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("classifier calls = %d, want 1", got)
	}

	close(src.release)
	<-done
}

func TestRemoveAndChangeViaClassifier(t *testing.T) {
	t.Parallel()

	catalog := menu.Default()
	store := order.NewMemStore()
	rec := &recorder{}
	src := &mock.Source{}
	e := dialog.New(catalog, store, src, dialog.WithEvents(rec))

	store.Add(catalog.ByID("americano"), menu.Ice, 2)

	src.Result = &intent.OrderIntent{
		Type: intent.ChangeQuantity,
		Items: []intent.Item{
			{MenuID: "americano", MenuName: "아메리카노", Quantity: 3},
		},
		Confidence: 0.9,
	}
	speak(t, e, "아메리카노 세 잔으로 바꿔줘")
	if lines := store.Lines(); len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("lines = %+v, want quantity 3", lines)
	}

	src.Result = &intent.OrderIntent{
		Type: intent.RemoveItem,
		Items: []intent.Item{
			{MenuID: "americano", MenuName: "아메리카노", Quantity: 1},
		},
		Confidence: 0.9,
	}
	speak(t, e, "아메리카노 빼줘")
	if lines := store.Lines(); len(lines) != 0 {
		t.Fatalf("lines = %+v, want empty after removal", lines)
	}
	if !strings.Contains(rec.lastReply(), "삭제했습니다") {
		t.Errorf("reply = %q, want a deletion notice", rec.lastReply())
	}
}
