package rule_test

import (
	"context"
	"testing"

	"github.com/dawoncafe/orderintent/internal/match"
	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/intent/rule"
)

func newSource() *rule.Source {
	return rule.New(match.NewResolver(menu.Default()))
}

func TestClassifyAddItem(t *testing.T) {
	t.Parallel()

	got, err := newSource().Classify(context.Background(), intent.Request{
		Transcript: "아이스 아메리카노 두 잔 주세요",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != intent.AddItem {
		t.Fatalf("type = %s, want ADD_ITEM", got.Type)
	}
	if len(got.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.MenuID != "americano" || item.Temperature != menu.Ice || item.Quantity != 2 {
		t.Errorf("item = %+v, want americano/ICE/2", item)
	}
}

func TestClassifyKeepsRequestedTemperature(t *testing.T) {
	t.Parallel()

	// The resolver flags hot cold brew as a conflict; the source still
	// reports the requested temperature and lets the executor handle it.
	got, err := newSource().Classify(context.Background(), intent.Request{
		Transcript: "핫 콜드브루 주세요",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != intent.AddItem || len(got.Items) != 1 {
		t.Fatalf("got %+v, want one ADD_ITEM item", got)
	}
	if got.Items[0].Temperature != menu.Hot {
		t.Errorf("temperature = %q, want the requested HOT", got.Items[0].Temperature)
	}
}

func TestClassifyUnknownMenuWithCue(t *testing.T) {
	t.Parallel()

	got, err := newSource().Classify(context.Background(), intent.Request{
		Transcript: "유자차 한 잔 주세요",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != intent.Unknown {
		t.Fatalf("type = %s, want UNKNOWN", got.Type)
	}
	if got.Message == "" {
		t.Error("message empty, want a menu-not-found prompt")
	}
}

func TestClassifyOffTopic(t *testing.T) {
	t.Parallel()

	got, err := newSource().Classify(context.Background(), intent.Request{
		Transcript: "오늘 날씨 어때요",
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != intent.Unknown {
		t.Fatalf("type = %s, want UNKNOWN", got.Type)
	}
	if got.Message != "" {
		t.Errorf("message = %q, want empty for off-topic talk", got.Message)
	}
}
