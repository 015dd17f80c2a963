// Package openai classifies utterances with the OpenAI chat completions
// API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/intent/prompt"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds one classification round trip.
	DefaultTimeout = 5 * time.Second

	samplingTemperature = 0.1
)

// config holds optional configuration for the source.
type config struct {
	model   string
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Source.
type Option func(*config)

// WithModel overrides the model name. Default: [DefaultModel].
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL overrides the API base URL, for tests and proxies.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout. Default: [DefaultTimeout].
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Source implements intent.Source using the OpenAI API.
type Source struct {
	client oai.Client
	model  string
	system string
}

var _ intent.Source = (*Source)(nil)

// New constructs an OpenAI-backed intent source for catalog.
func New(apiKey string, catalog *menu.Catalog, opts ...Option) (*Source, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}

	cfg := &config{model: DefaultModel, timeout: DefaultTimeout}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Source{
		client: oai.NewClient(reqOpts...),
		model:  cfg.model,
		system: prompt.System(catalog),
	}, nil
}

// Classify implements intent.Source.
func (s *Source) Classify(ctx context.Context, req intent.Request) (*intent.OrderIntent, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(s.system),
			oai.UserMessage(prompt.User(req)),
		},
		Temperature: param.NewOpt(samplingTemperature),
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}

	return intent.ParseJSON(resp.Choices[0].Message.Content)
}
