package engine

import (
	"time"

	"pathway-engine/internal/cache"
	"pathway-engine/internal/domain"
)

// Snapshot is the JSON-compatible export of the engine's full in-memory
// state: stages, connections, the lookup cache and usage statistics. It is
// meant for process-restart continuity, not cross-process replication.
type Snapshot struct {
	ExportedAt  time.Time              `json:"exported_at"`
	Nodes       []domain.Node          `json:"nodes"`
	Connections []domain.Connection    `json:"connections"`
	Cache       map[string]cache.Entry `json:"cache"`
	Stats       map[string]PathStat    `json:"stats"`
}

// ExportSnapshot serializes the engine state. Strengths, timestamps and use
// counts are preserved exactly.
func (e *Engine) ExportSnapshot() Snapshot {
	return Snapshot{
		ExportedAt:  time.Now(),
		Nodes:       e.store.Nodes(),
		Connections: e.store.Connections(),
		Cache:       e.cache.Entries(),
		Stats:       e.stats.All(),
	}
}

// ImportSnapshot restores the engine state verbatim, replacing whatever was
// there before.
func (e *Engine) ImportSnapshot(snap Snapshot) {
	e.store.Restore(snap.Nodes, snap.Connections)
	e.cache.Restore(snap.Cache)
	e.stats.Restore(snap.Stats)
}
