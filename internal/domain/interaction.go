package domain

import (
	"encoding/json"
	"time"
)

// Interaction is a unit of work submitted to the engine. Origin is a tag
// used to pick the start stage; Target optionally names an explicit goal
// stage. The payload is opaque to the engine.
type Interaction struct {
	ID      string          `json:"id"`
	Origin  string          `json:"origin"`
	Target  string          `json:"target,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result is what a caller gets back after an interaction has been routed
// through its resolved stage sequence.
type Result struct {
	InteractionID string          `json:"interaction_id"`
	Path          Path            `json:"path"`
	Output        json.RawMessage `json:"output,omitempty"`
	Elapsed       time.Duration   `json:"elapsed"`
}
