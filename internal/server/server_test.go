package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dawoncafe/orderintent/internal/config"
	"github.com/dawoncafe/orderintent/internal/match"
	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent/rule"
)

// newTestServer starts an HTTP server around a rule-only Server and returns
// it together with a connected websocket session.
func newTestServer(t *testing.T) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	catalog := menu.Default()
	s := New(config.Default(), catalog, rule.New(match.NewResolver(catalog)))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/session"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return srv, conn
}

func send(t *testing.T, conn *websocket.Conn, f clientFrame) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, f); err != nil {
		t.Fatalf("send %s frame: %v", f.Type, err)
	}
}

// collectUntil reads frames until one of the wanted type arrives and returns
// everything read, last frame included.
func collectUntil(t *testing.T, conn *websocket.Conn, frameType string) []serverFrame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var frames []serverFrame
	for {
		var f serverFrame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read while waiting for %q frame (got %d frames): %v", frameType, len(frames), err)
		}
		frames = append(frames, f)
		if f.Type == frameType {
			return frames
		}
	}
}

func findFrame(frames []serverFrame, frameType string) (serverFrame, bool) {
	for _, f := range frames {
		if f.Type == frameType {
			return f, true
		}
	}
	return serverFrame{}, false
}

func TestSessionTranscriptPlacesOrder(t *testing.T) {
	_, conn := newTestServer(t)

	send(t, conn, clientFrame{Type: frameTranscript, Text: "아이스 아메리카노 한 잔 주세요", Final: true})
	frames := collectUntil(t, conn, frameOrder)

	chat, ok := findFrame(frames, frameChat)
	if !ok {
		t.Fatal("no chat frame received")
	}
	if !strings.Contains(chat.Text, "추가했어요") {
		t.Errorf("chat = %q, want an added confirmation", chat.Text)
	}
	if _, ok := findFrame(frames, frameSpeak); !ok {
		t.Error("no speak frame received")
	}

	orderFrame := frames[len(frames)-1]
	if len(orderFrame.Lines) != 1 {
		t.Fatalf("order frame has %d lines, want 1", len(orderFrame.Lines))
	}
	line := orderFrame.Lines[0]
	if line.MenuID != "americano" || line.Temperature != menu.Ice {
		t.Errorf("line = %+v, want americano/ICE", line)
	}
	if orderFrame.Total != line.TotalPrice {
		t.Errorf("total = %d, want %d", orderFrame.Total, line.TotalPrice)
	}
}

func TestSessionInterimTranscript(t *testing.T) {
	_, conn := newTestServer(t)

	send(t, conn, clientFrame{Type: frameTranscript, Text: "아이스 아메리", Final: false})
	send(t, conn, clientFrame{Type: frameTranscript, Text: "아이스 아메리카노 주세요", Final: true})

	frames := collectUntil(t, conn, frameOrder)
	if frames[0].Type != frameTranscript || !frames[0].Interim {
		t.Errorf("first frame = %+v, want an interim transcript", frames[0])
	}
}

func TestSessionTemperatureSelect(t *testing.T) {
	_, conn := newTestServer(t)

	send(t, conn, clientFrame{Type: frameTranscript, Text: "카페라떼 주세요", Final: true})
	frames := collectUntil(t, conn, frameOrder)
	if got := frames[len(frames)-1]; len(got.Lines) != 0 {
		t.Fatalf("order placed before temperature was chosen: %+v", got.Lines)
	}

	send(t, conn, clientFrame{Type: frameTemperature, Value: "ICE"})
	frames = collectUntil(t, conn, frameOrder)
	orderFrame := frames[len(frames)-1]
	if len(orderFrame.Lines) != 1 || orderFrame.Lines[0].Temperature != menu.Ice {
		t.Fatalf("lines = %+v, want one iced latte", orderFrame.Lines)
	}
}

func TestSessionReset(t *testing.T) {
	_, conn := newTestServer(t)

	send(t, conn, clientFrame{Type: frameTranscript, Text: "아이스 아메리카노 주세요", Final: true})
	collectUntil(t, conn, frameOrder)

	send(t, conn, clientFrame{Type: frameReset})
	frames := collectUntil(t, conn, frameOrder)
	if got := frames[len(frames)-1]; len(got.Lines) != 0 {
		t.Errorf("lines = %+v, want empty after reset", got.Lines)
	}
}

func TestSessionUnknownFrame(t *testing.T) {
	_, conn := newTestServer(t)

	send(t, conn, clientFrame{Type: "bogus"})
	frames := collectUntil(t, conn, frameError)
	if !strings.Contains(frames[len(frames)-1].Text, "bogus") {
		t.Errorf("error frame = %+v, want it to name the frame type", frames[len(frames)-1])
	}
}

func TestSessionInvalidTemperature(t *testing.T) {
	_, conn := newTestServer(t)

	send(t, conn, clientFrame{Type: frameTemperature, Value: "LUKEWARM"})
	frames := collectUntil(t, conn, frameError)
	if !strings.Contains(frames[len(frames)-1].Text, "LUKEWARM") {
		t.Errorf("error frame = %+v, want it to name the value", frames[len(frames)-1])
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode readiness JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("readiness status = %q, want %q", body.Status, "ok")
	}
	for _, check := range []string{"catalog", "classifier"} {
		if body.Checks[check] != "ok" {
			t.Errorf("%s check = %q, want ok", check, body.Checks[check])
		}
	}
}
