package server

import "github.com/dawoncafe/orderintent/pkg/order"

// Client-to-server frame types.
const (
	frameTranscript  = "transcript"
	frameTTSDone     = "tts_done"
	frameTemperature = "temperature_select"
	frameReset       = "reset"
)

// Server-to-client frame types.
const (
	frameChat      = "chat"
	frameSpeak     = "speak"
	frameTyping    = "typing"
	frameOrder     = "order"
	frameConfirmed = "confirmed"
	frameError     = "error"
)

// clientFrame is one JSON message from the kiosk front end. Type selects
// which of the remaining fields carry data.
type clientFrame struct {
	Type string `json:"type"`

	// Text and Final carry a speech-recognition result (type "transcript").
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`

	// Value carries a touch temperature choice, "HOT" or "ICE"
	// (type "temperature_select").
	Value string `json:"value,omitempty"`
}

// serverFrame is one JSON message to the kiosk front end.
type serverFrame struct {
	Type string `json:"type"`

	// Text carries the utterance or reply for transcript, chat and speak
	// frames, and the error description for error frames.
	Text    string `json:"text,omitempty"`
	Interim bool   `json:"interim,omitempty"`

	// Active carries the typing-indicator state.
	Active bool `json:"active,omitempty"`

	// Lines and Total carry the order snapshot for order and confirmed
	// frames.
	Lines []order.Line `json:"lines,omitempty"`
	Total int          `json:"total,omitempty"`
}
