package registry

import "errors"

// Registry construction errors. Resolution failures use the units error
// taxonomy (units.ErrUnknownUnit, units.ErrCircularDefinition, ...).
var (
	// ErrDuplicateName is returned by a strict Builder when a name is registered twice.
	ErrDuplicateName = errors.New("registry: duplicate name")

	// ErrInvalidRecord is returned when a definition record is malformed.
	ErrInvalidRecord = errors.New("registry: invalid record")

	// ErrNotPublished is returned by Store when no registry has been published yet.
	ErrNotPublished = errors.New("registry: no registry published")
)
