// Package intent classifies customer utterances into structured order
// operations.
//
// A [Source] produces one [OrderIntent] per utterance. Sources are meant to
// be stacked with [Chain]: a cloud model first, the rule-based resolver as
// the fallback that always answers.
package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/internal/observe"
)

// Type is the kind of order operation an utterance asks for.
type Type string

const (
	AddItem           Type = "ADD_ITEM"
	RemoveItem        Type = "REMOVE_ITEM"
	ChangeQuantity    Type = "CHANGE_QUANTITY"
	ChangeTemperature Type = "CHANGE_TEMPERATURE"
	MultiAction       Type = "MULTI_ACTION"
	ClearOrder        Type = "CLEAR_ORDER"
	ConfirmOrder      Type = "CONFIRM_ORDER"
	AskClarification  Type = "ASK_CLARIFICATION"
	Unknown           Type = "UNKNOWN"
)

// Valid reports whether t is one of the defined intent types.
func (t Type) Valid() bool {
	switch t {
	case AddItem, RemoveItem, ChangeQuantity, ChangeTemperature,
		MultiAction, ClearOrder, ConfirmOrder, AskClarification, Unknown:
		return true
	}
	return false
}

// Item is one menu item an intent operates on. Temperature is unset when
// the customer has to be asked. Action is only meaningful inside a
// MULTI_ACTION intent and names the per-item operation.
type Item struct {
	MenuID      string           `json:"menuId"`
	MenuName    string           `json:"menuName"`
	Temperature menu.Temperature `json:"temperature,omitempty"`
	Quantity    int              `json:"quantity"`
	Action      Type             `json:"action,omitempty"`
}

// OrderIntent is a classified utterance.
type OrderIntent struct {
	Type       Type    `json:"type"`
	Items      []Item  `json:"items,omitempty"`
	Message    string  `json:"message,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ContextItem describes one line of the current order, given to classifiers
// so references like "that one" and "the latte" can be resolved.
type ContextItem struct {
	Name        string           `json:"name"`
	Temperature menu.Temperature `json:"temperature,omitempty"`
	Quantity    int              `json:"quantity"`
}

// Clarification is a pending question the kiosk has asked and not yet had
// answered. Classifiers use it to interpret short replies.
type Clarification struct {
	MenuName string `json:"menuName"`
	Question string `json:"question"`
}

// Request is one classification request.
type Request struct {
	Transcript string         `json:"transcript"`
	Current    []ContextItem  `json:"currentItems,omitempty"`
	Pending    *Clarification `json:"pendingClarification,omitempty"`
}

// ErrUnavailable marks a source that cannot answer right now (no
// credentials, network down, quota exhausted). Chain treats it as a cue to
// move on without noise.
var ErrUnavailable = errors.New("intent: source unavailable")

// Source classifies a single utterance.
type Source interface {
	Classify(ctx context.Context, req Request) (*OrderIntent, error)
}

// Chain tries sources in order until one returns a confident answer. A
// source that errors, or answers below the confidence floor, is skipped in
// favor of the next. The last source's answer is returned as-is, so a chain
// ending in an always-answering source never fails on low confidence.
type Chain struct {
	minConfidence float64
	sources       []Source
	metrics       *observe.Metrics
	log           *slog.Logger
}

var _ Source = (*Chain)(nil)

// NewChain builds a chain over sources with the given confidence floor.
func NewChain(minConfidence float64, sources ...Source) *Chain {
	return &Chain{
		minConfidence: minConfidence,
		sources:       sources,
		metrics:       observe.DefaultMetrics(),
		log:           slog.Default(),
	}
}

// Classify implements Source.
func (c *Chain) Classify(ctx context.Context, req Request) (*OrderIntent, error) {
	if len(c.sources) == 0 {
		return nil, fmt.Errorf("intent: chain has no sources: %w", ErrUnavailable)
	}

	var lastErr error
	for i, src := range c.sources {
		last := i == len(c.sources)-1

		res, err := src.Classify(ctx, req)
		if err != nil {
			if !errors.Is(err, ErrUnavailable) {
				c.log.Warn("intent: source failed, trying next", "source", i, "error", err)
			}
			if !last {
				c.metrics.IntentFallbacks.Add(ctx, 1)
			}
			lastErr = err
			continue
		}

		if res.Confidence < c.minConfidence && !last {
			c.metrics.IntentFallbacks.Add(ctx, 1)
			c.log.Debug("intent: low confidence, trying next",
				"source", i, "confidence", res.Confidence, "type", res.Type)
			continue
		}
		return res, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("intent: all sources failed: %w", lastErr)
	}
	return nil, fmt.Errorf("intent: all sources below confidence floor: %w", ErrUnavailable)
}
