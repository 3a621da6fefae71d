package hue

import "encoding/json"

// Command is the addressable command envelope the bridge stores inside a
// schedule and replays when the schedule fires. Body is kept raw so state
// payloads pass through this layer verbatim.
type Command struct {
	Address string          `json:"address"`
	Body    json.RawMessage `json:"body"`
	Method  string          `json:"method"`
}

// Schedule statuses as reported by the bridge.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// Schedule is a schedule record as stored on the bridge (v1 API).
type Schedule struct {
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Command      Command `json:"command"`
	Localtime    string  `json:"localtime"`
	Status       string  `json:"status,omitempty"`
	Created      string  `json:"created,omitempty"`
	LastModified string  `json:"lastmodified,omitempty"`
	Recycle      bool    `json:"recycle"`
}

// apiResult is one element of the bridge's response array. Every mutating
// v1 call answers with a list of success/error objects. Success payloads
// vary by call (object, string, or bare true), so they stay raw.
type apiResult struct {
	Success json.RawMessage `json:"success,omitempty"`
	Error   *apiErrorBody   `json:"error,omitempty"`
}

type apiErrorBody struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}
