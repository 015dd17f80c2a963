// Package speech defines the recognition and synthesis boundary of the
// kiosk. Implementations live at the transport edge; the dialog engine only
// sees these types.
package speech

import "context"

// Result is one speech-recognition hypothesis. Interim results may be
// revised by later ones; only a final result stands.
type Result struct {
	Text  string
	Final bool
}

// Speaker plays a prompt to the customer. Speak returns once playback has
// been handed off, not once it has finished; implementations report playback
// lifecycle to the echo filter themselves.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(ctx context.Context, text string) error

func (f SpeakerFunc) Speak(ctx context.Context, text string) error { return f(ctx, text) }
