package streamdeck

import "encoding/json"

// Inbound event names delivered by the host.
const (
	EventWillAppear         = "willAppear"
	EventWillDisappear      = "willDisappear"
	EventKeyDown            = "keyDown"
	EventKeyUp              = "keyUp"
	EventDidReceiveSettings = "didReceiveSettings"
)

// Event is the envelope of every host message. Payload is kept raw; its
// shape depends on the event name.
type Event struct {
	Action  string          `json:"action,omitempty"`
	Event   string          `json:"event"`
	Context string          `json:"context,omitempty"`
	Device  string          `json:"device,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventPayload is the common shape of inbound payloads; only the settings
// blob is consumed here.
type EventPayload struct {
	Settings json.RawMessage `json:"settings"`
}

// Settings extracts the per-button settings blob from the event payload.
// Events without a payload yield nil, which decodes to pure defaults.
func (e *Event) Settings() json.RawMessage {
	if len(e.Payload) == 0 {
		return nil
	}
	var p EventPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil
	}
	return p.Settings
}

type registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

type setImagePayload struct {
	Image  string `json:"image"`
	Target int    `json:"target"`
}

type outbound struct {
	Event   string      `json:"event"`
	Context string      `json:"context,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type logMessagePayload struct {
	Message string `json:"message"`
}
