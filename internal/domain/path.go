package domain

import "strings"

// Path is an ordered sequence of stage names produced by the path finder.
// A valid path never repeats adjacent nodes and has length >= 1; a path from
// a node to itself is the single-node path.
type Path []string

// String renders the path in its canonical form, e.g. "A → B → C".
// Usage statistics are keyed by this form.
func (p Path) String() string {
	return strings.Join(p, " → ")
}

// Pairs yields every adjacent (source, target) hop along the path.
func (p Path) Pairs() [][2]string {
	if len(p) < 2 {
		return nil
	}
	pairs := make([][2]string, 0, len(p)-1)
	for i := 0; i < len(p)-1; i++ {
		pairs = append(pairs, [2]string{p[i], p[i+1]})
	}
	return pairs
}

// Valid reports whether the path is non-empty and free of repeated
// adjacent nodes.
func (p Path) Valid() bool {
	if len(p) == 0 {
		return false
	}
	for i := 1; i < len(p); i++ {
		if p[i] == p[i-1] {
			return false
		}
	}
	return true
}
