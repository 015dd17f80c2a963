package intent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/intent/mock"
)

func TestParseJSON(t *testing.T) {
	t.Parallel()

	t.Run("plain payload", func(t *testing.T) {
		t.Parallel()

		got, err := intent.ParseJSON(`{
			"type": "ADD_ITEM",
			"items": [{"menuId": "americano", "menuName": "아메리카노", "temperature": "ICE", "quantity": 2}],
			"confidence": 0.95
		}`)
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if got.Type != intent.AddItem || got.Confidence != 0.95 {
			t.Errorf("got type %s confidence %v", got.Type, got.Confidence)
		}
		if len(got.Items) != 1 || got.Items[0].MenuID != "americano" || got.Items[0].Quantity != 2 {
			t.Errorf("items = %+v", got.Items)
		}
	})

	t.Run("fenced payload", func(t *testing.T) {
		t.Parallel()

		got, err := intent.ParseJSON("```json\n{\"type\": \"CONFIRM_ORDER\", \"confidence\": 0.9}\n```")
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if got.Type != intent.ConfirmOrder {
			t.Errorf("type = %s, want CONFIRM_ORDER", got.Type)
		}
	})

	t.Run("unknown type degrades", func(t *testing.T) {
		t.Parallel()

		got, err := intent.ParseJSON(`{"type": "ORDER_PIZZA", "confidence": 0.99}`)
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if got.Type != intent.Unknown || got.Confidence != 0 {
			t.Errorf("got %s/%v, want UNKNOWN with zero confidence", got.Type, got.Confidence)
		}
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		t.Parallel()

		got, err := intent.ParseJSON(`{
			"type": "ADD_ITEM",
			"items": [{"menuId": "croissant", "menuName": "크루아상"}],
			"confidence": 0.8
		}`)
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if got.Items[0].Quantity != 1 {
			t.Errorf("quantity = %d, want 1", got.Items[0].Quantity)
		}
	})

	t.Run("malformed payload errors", func(t *testing.T) {
		t.Parallel()

		if _, err := intent.ParseJSON("the customer wants coffee"); err == nil {
			t.Error("ParseJSON(non-JSON) = nil error, want error")
		}
		if _, err := intent.ParseJSON(""); err == nil {
			t.Error("ParseJSON(empty) = nil error, want error")
		}
	})
}

func TestChainPrefersFirstConfidentSource(t *testing.T) {
	t.Parallel()

	primary := &mock.Source{
		Result: &intent.OrderIntent{Type: intent.ConfirmOrder, Confidence: 0.9},
	}
	fallback := &mock.Source{
		Result: &intent.OrderIntent{Type: intent.Unknown, Confidence: 0.3},
	}

	chain := intent.NewChain(0.5, primary, fallback)
	got, err := chain.Classify(context.Background(), intent.Request{Transcript: "주문 완료"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != intent.ConfirmOrder {
		t.Errorf("type = %s, want CONFIRM_ORDER from primary", got.Type)
	}
	if fallback.Calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.Calls)
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	t.Parallel()

	primary := &mock.Source{Err: intent.ErrUnavailable}
	fallback := &mock.Source{
		Result: &intent.OrderIntent{Type: intent.AddItem, Confidence: 0.6},
	}

	chain := intent.NewChain(0.5, primary, fallback)
	got, err := chain.Classify(context.Background(), intent.Request{Transcript: "아메리카노"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Type != intent.AddItem {
		t.Errorf("type = %s, want ADD_ITEM from fallback", got.Type)
	}
}

func TestChainFallsBackOnLowConfidence(t *testing.T) {
	t.Parallel()

	primary := &mock.Source{
		Result: &intent.OrderIntent{Type: intent.Unknown, Confidence: 0.2},
	}
	fallback := &mock.Source{
		Result: &intent.OrderIntent{Type: intent.AddItem, Confidence: 0.4},
	}

	chain := intent.NewChain(0.5, primary, fallback)
	got, err := chain.Classify(context.Background(), intent.Request{Transcript: "아메리카노 주세요"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	// The last source answers even below the floor.
	if got.Type != intent.AddItem {
		t.Errorf("type = %s, want ADD_ITEM from last source", got.Type)
	}
}

func TestChainAllSourcesFail(t *testing.T) {
	t.Parallel()

	chain := intent.NewChain(0.5,
		&mock.Source{Err: intent.ErrUnavailable},
		&mock.Source{Err: errors.New("boom")},
	)
	if _, err := chain.Classify(context.Background(), intent.Request{Transcript: "아메리카노"}); err == nil {
		t.Error("Classify with all sources failing = nil error, want error")
	}
}
