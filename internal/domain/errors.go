package domain

import "pathway-engine/pkg/errors"

var (
	// ErrNodeNotFound is returned by direct low-level lookups referencing a
	// stage that was never created. Routing itself never returns it: the
	// finder self-heals unreachable pairs.
	ErrNodeNotFound = errors.NewNotFound("node not found")

	// ErrConnectionNotFound is returned when both endpoints exist but no
	// edge connects them.
	ErrConnectionNotFound = errors.NewNotFound("connection not found")

	// ErrNoRoute is only possible when self-healing is disabled via
	// configuration; with the default settings routing cannot fail.
	ErrNoRoute = errors.NewValidation("no route between stages")
)
