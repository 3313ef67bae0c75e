package domain

import "time"

// EventKind enumerates the closed set of change notifications the engine
// publishes.
type EventKind string

const (
	EventPathwayCreated      EventKind = "pathway_created"
	EventPathwayStrengthened EventKind = "pathway_strengthened"
	EventPathwayPruned       EventKind = "pathway_pruned"
	EventNodeProcessed       EventKind = "node_processed"
)

// Event is a structured change notification. Fields are populated according
// to Kind; unused fields are omitted from the JSON form.
type Event struct {
	Kind     EventKind     `json:"kind"`
	Source   string        `json:"source,omitempty"`
	Target   string        `json:"target,omitempty"`
	Targets  []string      `json:"targets,omitempty"`
	Node     string        `json:"node,omitempty"`
	Strength float64       `json:"strength,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	At       time.Time     `json:"at"`
}

// NewPathwayCreatedEvent announces a connection from source to one or more
// targets.
func NewPathwayCreatedEvent(source string, targets []string, now time.Time) Event {
	return Event{Kind: EventPathwayCreated, Source: source, Targets: targets, At: now}
}

// NewPathwayStrengthenedEvent announces reinforcement of a single edge.
func NewPathwayStrengthenedEvent(source, target string, strength float64, now time.Time) Event {
	return Event{Kind: EventPathwayStrengthened, Source: source, Target: target, Strength: strength, At: now}
}

// NewPathwayPrunedEvent announces removal of an edge that decayed below the
// routable floor.
func NewPathwayPrunedEvent(source, target string, now time.Time) Event {
	return Event{Kind: EventPathwayPruned, Source: source, Target: target, At: now}
}

// NewNodeProcessedEvent announces a stage invocation and its elapsed time.
func NewNodeProcessedEvent(node string, duration time.Duration, now time.Time) Event {
	return Event{Kind: EventNodeProcessed, Node: node, Duration: duration, At: now}
}
