// Package echo rejects speech-recognition results that are really the
// kiosk's own voice picked up by the microphone.
//
// The filter leans permissive: dropping a real customer utterance is worse
// than letting one echo through, so every check has to clear a high bar
// before a transcript is discarded.
package echo

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWindow is how long after playback ends an incoming transcript
	// can still be an echo of it.
	DefaultWindow = 800 * time.Millisecond

	// DefaultMinLength is the shortest normalized transcript (in runes)
	// the substring check will ever reject. Shorter hits are coincidence.
	DefaultMinLength = 6

	// DefaultCoverageRatio is the share of the spoken prompt a transcript
	// must cover for the substring check to call it an echo.
	DefaultCoverageRatio = 0.3

	// DefaultMatchRatio is the share of the transcript that must match a
	// run of the spoken prompt for the similarity check to call it an echo.
	DefaultMatchRatio = 0.7
)

// Decision explains what the filter made of one transcript.
type Decision struct {
	Echo       bool
	Reason     string
	Confidence float64
}

// Option configures a [Filter].
type Option func(*Filter)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) { f.now = now }
}

// WithWindow sets the post-playback echo window.
func WithWindow(d time.Duration) Option {
	return func(f *Filter) { f.window = d }
}

// WithMinLength sets the minimum normalized transcript length (runes) for
// the substring check.
func WithMinLength(n int) Option {
	return func(f *Filter) { f.minLength = n }
}

// WithCoverageRatio sets the prompt-coverage threshold of the substring
// check.
func WithCoverageRatio(r float64) Option {
	return func(f *Filter) { f.coverageRatio = r }
}

// WithMatchRatio sets the transcript-match threshold of the similarity
// check.
func WithMatchRatio(r float64) Option {
	return func(f *Filter) { f.matchRatio = r }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(f *Filter) { f.log = log }
}

// Filter tracks what the kiosk is currently saying and decides whether an
// incoming transcript is an echo of it. Safe for concurrent use.
type Filter struct {
	window        time.Duration
	minLength     int
	coverageRatio float64
	matchRatio    float64
	now           func() time.Time
	log           *slog.Logger

	mu         sync.Mutex
	promptText string
	started    time.Time
	ended      time.Time
}

// New builds a Filter with the default thresholds.
func New(opts ...Option) *Filter {
	f := &Filter{
		window:        DefaultWindow,
		minLength:     DefaultMinLength,
		coverageRatio: DefaultCoverageRatio,
		matchRatio:    DefaultMatchRatio,
		now:           time.Now,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// SpeakingStarted records that playback of text has begun.
func (f *Filter) SpeakingStarted(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promptText = text
	f.started = f.now()
	f.ended = time.Time{}
}

// SpeakingEnded records that playback has finished. The recorded text stays
// relevant for the echo window and is ignored afterwards.
func (f *Filter) SpeakingEnded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = f.now()
}

// Reset forgets any tracked playback.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promptText = ""
	f.started = time.Time{}
	f.ended = time.Time{}
}

// Check decides whether transcript is an echo of the current or just-ended
// playback.
func (f *Filter) Check(transcript string) Decision {
	normalized := normalize(transcript)
	if normalized == "" {
		return Decision{Echo: true, Reason: "empty", Confidence: 1}
	}

	f.mu.Lock()
	prompt := f.promptText
	active := !f.started.IsZero() &&
		(f.ended.IsZero() || f.now().Sub(f.ended) < f.window)
	f.mu.Unlock()

	if !active {
		return Decision{Reason: "playback not active", Confidence: 1}
	}
	if prompt == "" {
		return Decision{Reason: "no playback text", Confidence: 1}
	}

	promptNorm := normalize(prompt)
	stt := []rune(normalized)
	tts := []rune(promptNorm)

	// A sufficiently long transcript that sits verbatim inside the prompt
	// and covers a fair share of it came from the speaker, not the customer.
	if len(stt) >= f.minLength && len(tts) > 0 && strings.Contains(promptNorm, normalized) {
		if ratio := float64(len(stt)) / float64(len(tts)); ratio > f.coverageRatio {
			d := Decision{Echo: true, Reason: "substring of playback", Confidence: 0.9}
			f.log.Debug("echo: transcript dropped", "reason", d.Reason, "coverage", ratio)
			return d
		}
	}

	// Longest run of the prompt found inside the transcript. Catches echoes
	// the recogniser mangled at the edges.
	if len(stt) >= f.minLength {
		maxMatch := 0
		for i := 0; i+f.minLength <= len(tts); i++ {
			for length := f.minLength; i+length <= len(tts); length++ {
				if length <= maxMatch {
					continue
				}
				if strings.Contains(normalized, string(tts[i:i+length])) {
					maxMatch = length
				}
			}
		}
		if ratio := float64(maxMatch) / float64(len(stt)); ratio >= f.matchRatio {
			d := Decision{Echo: true, Reason: "high overlap with playback", Confidence: ratio}
			f.log.Debug("echo: transcript dropped", "reason", d.Reason, "overlap", ratio)
			return d
		}
	}

	return Decision{Reason: "passed", Confidence: 1}
}

var normalizePattern = regexp.MustCompile(`[.,!?~\s]`)

func normalize(s string) string {
	return normalizePattern.ReplaceAllString(strings.ToLower(s), "")
}
