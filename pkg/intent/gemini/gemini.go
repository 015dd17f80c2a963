// Package gemini classifies utterances with the Google Gemini REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/intent/prompt"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultBaseURL is the Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds one classification round trip.
	DefaultTimeout = 5 * time.Second
)

// Option configures a [Source].
type Option func(*Source)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(s *Source) { s.model = model }
}

// WithBaseURL overrides the API endpoint, for tests and proxies.
func WithBaseURL(base string) Option {
	return func(s *Source) { s.baseURL = strings.TrimSuffix(base, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithTimeout bounds one classification round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) { s.timeout = d }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(s *Source) { s.log = log }
}

// Source classifies utterances through the Gemini generateContent endpoint,
// asking for a JSON-only reply.
type Source struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
	log     *slog.Logger
	system  string
}

var _ intent.Source = (*Source)(nil)

// New builds a Source for catalog. The catalog is embedded in the system
// prompt so the model only ever answers with real menu IDs.
func New(apiKey string, catalog *menu.Catalog, opts ...Option) *Source {
	s := &Source{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		client:  http.DefaultClient,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.system = prompt.System(catalog)
	return s
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	TopK             int     `json:"topK"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Classify implements intent.Source.
func (s *Source) Classify(ctx context.Context, req intent.Request) (*intent.OrderIntent, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("gemini: no API key configured: %w", intent.ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: s.system + "\n\n" + prompt.User(req)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:      0.1,
			TopP:             0.8,
			TopK:             40,
			MaxOutputTokens:  1024,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		s.baseURL, s.model, url.QueryEscape(s.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.Warn("gemini: request failed", "status", resp.StatusCode, "body", string(payload))
		return nil, fmt.Errorf("gemini: generateContent returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini: decoding response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: empty response")
	}

	return intent.ParseJSON(out.Candidates[0].Content.Parts[0].Text)
}

