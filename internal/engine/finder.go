package engine

import (
	"container/heap"
	"strings"

	"pathway-engine/internal/domain"

	"go.uber.org/zap"
)

// Finder resolves routes over the current pathway store using best-first
// search. The heuristic is cheap and inadmissible on purpose: routing favors
// "good enough, fast" over provably optimal.
type Finder struct {
	store    *Store
	autoHeal bool
	logger   *zap.Logger
}

// NewFinder creates a path finder over the given store. When autoHeal is on
// (the default policy), an unreachable pair gets a new direct edge at seed
// strength instead of an error.
func NewFinder(store *Store, autoHeal bool, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{store: store, autoHeal: autoHeal, logger: logger}
}

// FindPath computes the lowest-cost route from start to goal. Edges at or
// below the routable floor are excluded entirely. When no route exists the
// finder self-heals: it creates a direct start→goal edge at seed strength
// and returns the two-node path. With auto-healing disabled it returns
// ErrNoRoute instead.
func (f *Finder) FindPath(start, goal string) (domain.Path, error) {
	if start == goal {
		return domain.Path{start}, nil
	}

	if path := f.search(start, goal); path != nil {
		return path, nil
	}

	if !f.autoHeal {
		return nil, domain.ErrNoRoute
	}

	// Self-healing default: unreachable pairs gain a low-confidence direct
	// connection so routing never fails outright.
	f.logger.Debug("no route found, creating direct connection",
		zap.String("start", start),
		zap.String("goal", goal),
	)
	f.store.CreateConnection(start, []string{goal}, domain.DefaultSeedStrength)
	return domain.Path{start, goal}, nil
}

// search runs the A*-style walk under the store's read lock. The graph is
// small and every step is a map access, so holding the lock for the whole
// walk stays within the short-critical-section discipline.
func (f *Finder) search(start, goal string) domain.Path {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()

	if _, ok := f.store.nodes[start]; !ok {
		return nil
	}
	if _, ok := f.store.nodes[goal]; !ok {
		return nil
	}

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, &queuedNode{name: start, fScore: heuristic(start, goal)})

	gScore := map[string]float64{start: 0}
	cameFrom := map[string]string{}
	visited := map[string]bool{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*queuedNode)
		if current.name == goal {
			return reconstruct(cameFrom, goal)
		}
		if visited[current.name] {
			continue
		}
		visited[current.name] = true

		for _, conn := range f.store.neighborsLocked(current.name) {
			tentative := gScore[current.name] + conn.TraversalCost()
			if g, ok := gScore[conn.Target]; ok && tentative >= g {
				continue
			}
			gScore[conn.Target] = tentative
			cameFrom[conn.Target] = current.name
			heap.Push(open, &queuedNode{
				name:   conn.Target,
				fScore: tentative + heuristic(conn.Target, goal),
			})
		}
	}

	return nil
}

// heuristic estimates the remaining distance from node to goal based purely
// on the stage names: 0 for the goal itself, 1 when both reduce to the same
// logical type, 2 when one type contains the other, 5 otherwise.
func heuristic(node, goal string) float64 {
	if node == goal {
		return 0
	}
	nodeType := logicalType(node)
	goalType := logicalType(goal)
	if nodeType == goalType {
		return 1
	}
	if strings.Contains(nodeType, goalType) || strings.Contains(goalType, nodeType) {
		return 2
	}
	return 5
}

// logicalType reduces a stage name to its type by stripping a stage-type
// suffix, e.g. "memory_stage" and "memory" share the type "memory".
func logicalType(name string) string {
	t := strings.ToLower(name)
	for _, suffix := range []string{"_stage", "-stage", "stage"} {
		if cut, ok := strings.CutSuffix(t, suffix); ok && cut != "" {
			return cut
		}
	}
	return t
}

// reconstruct walks the predecessor map back from goal to start.
func reconstruct(cameFrom map[string]string, goal string) domain.Path {
	path := domain.Path{goal}
	current := goal
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(domain.Path{prev}, path...)
		current = prev
	}
	return path
}

// queuedNode is an open-set entry ordered by estimated total cost.
type queuedNode struct {
	name   string
	fScore float64
}

type nodeQueue []*queuedNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].fScore < q[j].fScore }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(*queuedNode)) }

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
