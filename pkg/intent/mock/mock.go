// Package mock provides a canned intent source for tests.
package mock

import (
	"context"
	"sync"

	"github.com/dawoncafe/orderintent/pkg/intent"
)

// Source returns a fixed result or error and records every request it saw.
type Source struct {
	Result *intent.OrderIntent
	Err    error

	mu       sync.Mutex
	Calls    int
	Requests []intent.Request
}

var _ intent.Source = (*Source)(nil)

func (s *Source) Classify(_ context.Context, req intent.Request) (*intent.OrderIntent, error) {
	s.mu.Lock()
	s.Calls++
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}
