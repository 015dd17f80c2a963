// Package dialog runs the multi-turn voice ordering conversation: it takes
// speech-recognition results, filters echo, classifies intent, applies order
// operations, and produces the spoken replies — including the follow-up
// dialogue for items whose serving temperature still has to be settled.
package dialog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dawoncafe/orderintent/internal/echo"
	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/internal/observe"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/order"
	"github.com/dawoncafe/orderintent/pkg/speech"
)

// Events receives conversation updates for the UI layer. Implementations
// must be fast; they are called on the processing path.
type Events interface {
	// Transcript reports a customer utterance. Interim transcripts may be
	// superseded by later ones.
	Transcript(text string, interim bool)

	// Reply reports a spoken assistant reply.
	Reply(text string)

	// Typing reports whether the assistant is working on a reply.
	Typing(active bool)

	// Confirmed hands the finalised order over for preparation.
	Confirmed(lines []order.Line)
}

// NopEvents is an Events that does nothing.
type NopEvents struct{}

func (NopEvents) Transcript(string, bool) {}
func (NopEvents) Reply(string)            {}
func (NopEvents) Typing(bool)             {}
func (NopEvents) Confirmed([]order.Line)  {}

// pending is one item waiting for a temperature decision, queued in the
// order the items were spoken. conflict distinguishes a requested-but-
// unavailable temperature from a plain open choice.
type pending struct {
	item      *menu.Item
	quantity  int
	conflict  bool
	requested menu.Temperature
	available menu.Temperature
}

// addedLine is one placed order line, kept for composing the spoken summary.
type addedLine struct {
	name        string
	temperature menu.Temperature
	quantity    int
}

// Option configures an [Engine].
type Option func(*Engine)

// WithEchoFilter sets the echo filter. Without one, every transcript is
// taken at face value.
func WithEchoFilter(f *echo.Filter) Option {
	return func(e *Engine) { e.echo = f }
}

// WithSpeaker sets the text-to-speech output.
func WithSpeaker(s speech.Speaker) Option {
	return func(e *Engine) { e.speaker = s }
}

// WithEvents sets the conversation event sink. Default: [NopEvents].
func WithEvents(ev Events) Option {
	return func(e *Engine) { e.events = ev }
}

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// Engine drives one kiosk session. Speech results come in through
// [Engine.HandleSpeechResult]; replies go out through the configured
// speaker and event sink. An Engine is not shared across sessions.
type Engine struct {
	catalog *menu.Catalog
	store   order.Store
	source  intent.Source
	echo    *echo.Filter
	speaker speech.Speaker
	events  Events
	metrics *observe.Metrics
	log     *slog.Logger

	// busy rejects a new final transcript while the previous one is still
	// being processed, which otherwise happens when the recogniser fires
	// twice in quick succession.
	busy atomic.Bool

	mu      sync.Mutex
	pending []pending
}

// New builds an Engine over catalog, store and the classification source.
func New(catalog *menu.Catalog, store order.Store, source intent.Source, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		store:   store,
		source:  source,
		events:  NopEvents{},
		metrics: observe.DefaultMetrics(),
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// HandleSpeechResult processes one recognition result. Interim results only
// update the transcript display; a final result runs the full pipeline and
// ends with a spoken reply.
func (e *Engine) HandleSpeechResult(ctx context.Context, text string, final bool) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if e.echo != nil {
		if d := e.echo.Check(trimmed); d.Echo {
			e.metrics.EchoDrops.Add(ctx, 1)
			e.log.Debug("dialog: transcript dropped as echo",
				"reason", d.Reason, "confidence", d.Confidence)
			return nil
		}
	}
	e.metrics.RecordTranscript(ctx, final)

	if !final {
		e.events.Transcript(trimmed, true)
		return nil
	}

	if !e.busy.CompareAndSwap(false, true) {
		e.log.Debug("dialog: dropping transcript, previous one still processing", "text", trimmed)
		return nil
	}
	defer e.busy.Store(false)

	e.events.Transcript(trimmed, false)
	e.events.Typing(true)
	defer e.events.Typing(false)

	reply, err := e.respond(ctx, trimmed)
	if err != nil {
		return err
	}
	if reply != "" {
		e.say(ctx, reply)
	}
	return nil
}

// HandleTemperatureSelect resolves the front pending item with a choice made
// by touch instead of voice.
func (e *Engine) HandleTemperatureSelect(ctx context.Context, t menu.Temperature) {
	e.mu.Lock()
	if len(e.pending) == 0 {
		e.mu.Unlock()
		return
	}
	head := e.pending[0]
	e.mu.Unlock()

	if !head.item.Offers(t) {
		e.say(ctx, pendingPrompt(head))
		return
	}
	e.say(ctx, e.settleHead(ctx, t))
}

// PlaybackFinished tells the engine its spoken reply has finished playing,
// which starts the echo filter's decay window.
func (e *Engine) PlaybackFinished() {
	if e.echo != nil {
		e.echo.SpeakingEnded()
	}
}

// Pending returns the number of unresolved temperature questions.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Reset clears the session: order, pending questions and echo state.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	n := len(e.pending)
	e.pending = nil
	e.mu.Unlock()
	if n > 0 {
		e.metrics.PendingClarifications.Add(ctx, int64(-n))
	}

	e.store.Clear()
	if e.echo != nil {
		e.echo.Reset()
	}
}

// respond produces the reply for one final transcript.
//
// Precedence mirrors how customers actually speak: an explicit "finish the
// order" wish wins over everything, then an open temperature question
// captures short replies, and only then is the utterance classified as a
// fresh command.
func (e *Engine) respond(ctx context.Context, text string) (string, error) {
	if IsOrderConfirm(text) {
		return e.finishOrder(ctx), nil
	}

	e.mu.Lock()
	hasPending := len(e.pending) > 0
	e.mu.Unlock()
	if hasPending {
		return e.respondPending(ctx, text)
	}

	res, err := e.classify(ctx, text)
	if err != nil {
		e.log.Error("dialog: classification failed", "error", err)
		return clarifyFallback, nil
	}
	return e.execute(ctx, res), nil
}

// respondPending interprets text as an answer to the front temperature
// question, falling back to treating it as a fresh order.
func (e *Engine) respondPending(ctx context.Context, text string) (string, error) {
	e.mu.Lock()
	head := e.pending[0]
	e.mu.Unlock()

	if t := TemperatureReply(text); t.IsSet() {
		if !head.item.Offers(t) {
			avail := head.item.SoleTemperature()
			return head.item.Name + "은 " + t.Korean() + "가 없어요. " +
				avail.Korean() + "만 가능해요. " + avail.Korean() + "으로 드릴까요?", nil
		}
		return e.settleHead(ctx, t), nil
	}

	if IsConfirmation(text) {
		t := head.available
		if !t.IsSet() {
			t = head.item.SoleTemperature()
		}
		if !t.IsSet() && len(head.item.Temperatures) > 0 {
			t = head.item.Temperatures[0]
		}
		return e.settleHead(ctx, t), nil
	}

	if IsRejection(text) {
		e.popPending(ctx)
		reply := head.item.Name + "은 주문에서 뺐어요."
		if next, ok := e.peekPending(); ok {
			reply += " " + pendingPrompt(next)
		} else {
			reply += " 다른 메뉴를 주문하시겠어요?"
		}
		return reply, nil
	}

	// Not an answer at all. Maybe the customer moved on to ordering more.
	res, err := e.classify(ctx, text)
	if err == nil && res.Type == intent.AddItem && len(res.Items) > 0 {
		return e.execute(ctx, res), nil
	}
	return orderOnlyMessage, nil
}

// settleHead places the front pending item at temperature t and composes
// the reply, chaining the next question if one is queued.
func (e *Engine) settleHead(ctx context.Context, t menu.Temperature) string {
	e.mu.Lock()
	head := e.pending[0]
	e.mu.Unlock()
	e.popPending(ctx)

	e.store.Add(head.item, t, head.quantity)
	e.metrics.ItemsAdded.Add(ctx, int64(head.quantity))

	reply := head.item.Name + " " + t.Korean() + "으로 추가했어요."
	if next, ok := e.peekPending(); ok {
		reply += " " + pendingPrompt(next)
	} else {
		reply += " " + anythingElsePrompt
	}
	return reply
}

// finishOrder handles an explicit order-confirmation wish.
func (e *Engine) finishOrder(ctx context.Context) string {
	if head, ok := e.peekPending(); ok {
		return "먼저 " + head.item.Name + "의 온도를 선택해주세요. 따뜻하게 또는 차갑게라고 말씀해주세요."
	}

	lines := e.store.Lines()
	if len(lines) == 0 {
		return emptyOrderMessage
	}

	e.events.Confirmed(lines)
	e.metrics.OrdersConfirmed.Add(ctx, 1)
	e.store.Clear()
	return orderDoneMessage
}

// classify runs the configured intent source with the session context.
func (e *Engine) classify(ctx context.Context, text string) (*intent.OrderIntent, error) {
	req := intent.Request{Transcript: text}
	for _, l := range e.store.Lines() {
		req.Current = append(req.Current, intent.ContextItem{
			Name:        l.Name,
			Temperature: l.Temperature,
			Quantity:    l.Quantity,
		})
	}
	if head, ok := e.peekPending(); ok {
		req.Pending = &intent.Clarification{
			MenuName: head.item.Name,
			Question: pendingPrompt(head),
		}
	}

	start := time.Now()
	res, err := e.source.Classify(ctx, req)
	e.metrics.RecordClassify(ctx, "chain", time.Since(start))
	return res, err
}

// say speaks a reply and mirrors it to the event sink, arming the echo
// filter for the playback.
func (e *Engine) say(ctx context.Context, text string) {
	e.events.Reply(text)
	if e.echo != nil {
		e.echo.SpeakingStarted(text)
	}
	if e.speaker != nil {
		if err := e.speaker.Speak(ctx, text); err != nil {
			e.log.Error("dialog: speak failed", "error", err)
		}
	}
}

func (e *Engine) pushPending(ctx context.Context, items []pending) {
	if len(items) == 0 {
		return
	}
	e.mu.Lock()
	e.pending = append(e.pending, items...)
	e.mu.Unlock()
	e.metrics.PendingClarifications.Add(ctx, int64(len(items)))
}

func (e *Engine) popPending(ctx context.Context) {
	e.mu.Lock()
	if len(e.pending) > 0 {
		e.pending = e.pending[1:]
		e.mu.Unlock()
		e.metrics.PendingClarifications.Add(ctx, -1)
		return
	}
	e.mu.Unlock()
}

func (e *Engine) peekPending() (pending, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return pending{}, false
	}
	return e.pending[0], true
}
