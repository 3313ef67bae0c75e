// Package dto defines the request and response shapes of the engine's HTTP
// API, with validation tags enforced at the handler boundary.
package dto

import "encoding/json"

// ProcessInteractionRequest submits one unit of work for routing.
type ProcessInteractionRequest struct {
	Origin  string          `json:"origin" validate:"required,max=128"`
	Target  string          `json:"target,omitempty" validate:"max=128"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateConnectionRequest seeds or resets pathway topology. Strength outside
// [0,1] is clamped by the engine, lenient by design, but obvious nonsense is
// rejected here.
type CreateConnectionRequest struct {
	Source   string   `json:"source" validate:"required,max=128"`
	Targets  []string `json:"targets" validate:"required,min=1,dive,required,max=128"`
	Strength float64  `json:"strength"`
}

// CachePutRequest stores a resolved component under a lookup key.
type CachePutRequest struct {
	Key       string `json:"key" validate:"required,max=256"`
	Component string `json:"component" validate:"required,max=256"`
}

// TokenRequest exchanges the shared admin secret for a bearer token.
type TokenRequest struct {
	Subject string `json:"subject" validate:"required,max=128"`
	Secret  string `json:"secret" validate:"required"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ConnectionResponse is the read form of one edge.
type ConnectionResponse struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Strength float64 `json:"strength"`
	LastUsed string  `json:"last_used"`
	UseCount uint64  `json:"use_count"`
}

// CacheGetResponse is the read form of one cache entry.
type CacheGetResponse struct {
	Key       string `json:"key"`
	Component string `json:"component"`
}
