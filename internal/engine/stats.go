package engine

import (
	"sync"
	"time"

	"pathway-engine/internal/domain"
)

// PathStat aggregates usage of one distinct route, keyed by the path's
// canonical string form (e.g. "A → B → C"). Entries are never removed; the
// table is bounded in practice by the small fixed stage set.
type PathStat struct {
	Count     uint64        `json:"count"`
	TotalTime time.Duration `json:"total_time"`
	AvgTime   time.Duration `json:"avg_time"`
}

// Stats is the usage-statistics table, guarded by its own lock so that
// recording a route never contends with graph mutation.
type Stats struct {
	mu    sync.RWMutex
	paths map[string]*PathStat
}

// NewStats creates an empty statistics table.
func NewStats() *Stats {
	return &Stats{paths: make(map[string]*PathStat)}
}

// Record adds one traversal of path with the given elapsed time.
func (s *Stats) Record(path domain.Path, elapsed time.Duration) {
	key := path.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	stat, ok := s.paths[key]
	if !ok {
		stat = &PathStat{}
		s.paths[key] = stat
	}
	stat.Count++
	stat.TotalTime += elapsed
	stat.AvgTime = stat.TotalTime / time.Duration(stat.Count)
}

// Path returns the statistic for one route and whether it exists.
func (s *Stats) Path(key string) (PathStat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stat, ok := s.paths[key]
	if !ok {
		return PathStat{}, false
	}
	return *stat, true
}

// All returns a copy of the whole table, used for the status surface and
// snapshot export.
func (s *Stats) All() map[string]PathStat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]PathStat, len(s.paths))
	for k, v := range s.paths {
		out[k] = *v
	}
	return out
}

// Restore replaces the table verbatim from snapshot data.
func (s *Stats) Restore(stats map[string]PathStat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paths = make(map[string]*PathStat, len(stats))
	for k, v := range stats {
		stat := v
		s.paths[k] = &stat
	}
}
