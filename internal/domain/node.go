package domain

import "time"

// Node is a named processing stage in the pathway graph. Nodes own no
// mutable state of their own; processing logic is supplied externally by a
// handler registered under the node's name.
type Node struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
