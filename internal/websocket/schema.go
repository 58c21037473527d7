package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave  Action = "autosave"
	ActionViolation Action = "violation"
	ActionSubmit    Action = "submit"
	ActionState     Action = "state"
	ActionPing      Action = "ping"
)

// RequestPayload is the single client message shape; unused fields stay empty
// depending on the action.
type RequestPayload struct {
	Action Action `json:"action"`
	QID    string `json:"q_id,omitempty"`   // autosave
	Value  string `json:"value,omitempty"`  // autosave
	Kind   string `json:"kind,omitempty"`   // violation
	Detail string `json:"detail,omitempty"` // violation
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventWarning   Event = "warning"
	EventSubmitted Event = "submitted"
	EventState     Event = "state"
	EventPong      Event = "pong"
)

// ResponsePayload is the server message envelope.
type ResponsePayload struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}
