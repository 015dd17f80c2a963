package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dawoncafe/orderintent/internal/dialog"
	"github.com/dawoncafe/orderintent/pkg/order"
	"github.com/dawoncafe/orderintent/pkg/speech"
)

// session is one websocket kiosk connection. It bridges the frame protocol
// to a dedicated [dialog.Engine] and order store.
//
// The read loop is the only goroutine driving the engine, so engine
// callbacks arrive sequentially; the write mutex covers the remaining
// direct writes.
type session struct {
	conn   *websocket.Conn
	engine *dialog.Engine
	store  order.Store
	log    *slog.Logger

	ctx     context.Context
	writeMu sync.Mutex
}

var (
	_ dialog.Events  = (*session)(nil)
	_ speech.Speaker = (*session)(nil)
)

func (s *session) Transcript(text string, interim bool) {
	s.write(serverFrame{Type: frameTranscript, Text: text, Interim: interim})
}

func (s *session) Reply(text string) {
	s.write(serverFrame{Type: frameChat, Text: text})
}

func (s *session) Typing(active bool) {
	s.write(serverFrame{Type: frameTyping, Active: active})
}

func (s *session) Confirmed(lines []order.Line) {
	s.write(serverFrame{Type: frameConfirmed, Lines: lines, Total: total(lines)})
}

// Speak asks the front end to synthesise and play text. The front end
// reports completion with a tts_done frame.
func (s *session) Speak(_ context.Context, text string) error {
	s.write(serverFrame{Type: frameSpeak, Text: text})
	return nil
}

// pushOrder sends the current order snapshot.
func (s *session) pushOrder() {
	lines := s.store.Lines()
	s.write(serverFrame{Type: frameOrder, Lines: lines, Total: total(lines)})
}

func (s *session) write(f serverFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := wsjson.Write(s.ctx, s.conn, f); err != nil {
		s.log.Debug("server: session write failed", "frame", f.Type, "error", err)
	}
}

func total(lines []order.Line) int {
	sum := 0
	for _, l := range lines {
		sum += l.TotalPrice
	}
	return sum
}
