package models

type SessionState struct {
	Loading       bool        `json:"loading"`
	Authenticated bool        `json:"authenticated"`
	Data          *ClientData `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// Profile returns the cached client document, or nil when there is none.
func (s SessionState) Profile() *Profile {
	if s.Data == nil {
		return nil
	}
	return s.Data.Client
}

// Location is a navigation target. From carries the location the user was on
// when they were redirected, so it can be restored after login.
type Location struct {
	Path string    `json:"path"`
	From *Location `json:"from,omitempty"`
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

type Notice struct {
	Message string     `json:"message"`
	Kind    NoticeKind `json:"kind"`
}
