package models

const (
	EventNotice   = "notice"
	EventNavigate = "navigate"
	EventSession  = "session"
)

// Event is pushed to a device over the websocket.
type Event struct {
	Type      string        `json:"type"`
	Notice    *Notice       `json:"notice,omitempty"`
	Location  *Location     `json:"location,omitempty"`
	Session   *SessionState `json:"session,omitempty"`
	Timestamp string        `json:"timestamp"`
}
