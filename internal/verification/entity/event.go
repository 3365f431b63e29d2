package entity

// NoticeKind is the severity of a user-visible notification.
type NoticeKind int16

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

func (k NoticeKind) String() string {
	if k == NoticeError {
		return "error"
	}
	return "info"
}

// MarshalText encodes the kind by name.
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// EventType tags an Event published to a session's view.
type EventType string

const (
	EventState    EventType = "state"
	EventNotice   EventType = "notice"
	EventNavigate EventType = "navigate"
)

// Notice is a toast/banner message.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Event is one update delivered to a session's subscribers.
type Event struct {
	Type       EventType `json:"type"`
	State      *Snapshot `json:"state,omitempty"`
	Notice     *Notice   `json:"notice,omitempty"`
	NavigateTo string    `json:"navigate_to,omitempty"`
}
