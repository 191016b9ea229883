package customunit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edoardob90/runits/internal/registry"
)

// Domain errors for the customunit package.
var (
	// ErrNotFound is returned when no custom unit has the requested name.
	ErrNotFound = errors.New("custom unit: not found")

	// ErrExists is returned when creating a custom unit whose name is taken.
	ErrExists = errors.New("custom unit: already exists")

	// ErrInvalid is returned when a custom unit fails validation.
	ErrInvalid = errors.New("custom unit: invalid")
)

// MaxDescriptionLength bounds the free-text description.
const MaxDescriptionLength = 500

// CustomUnit is a user-defined unit persisted across sessions.
type CustomUnit struct {
	ID string `json:"id"`
	registry.CustomDefinition
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New wraps a definition in a CustomUnit with a fresh ID.
func New(def registry.CustomDefinition) *CustomUnit {
	return &CustomUnit{
		ID:               uuid.NewString(),
		CustomDefinition: def,
	}
}

// Record returns the registry record for the unit.
func (u *CustomUnit) Record() registry.Record {
	return registry.CustomRecord{Definition: u.CustomDefinition}
}

// Validate checks the unit's shape. It does not check that Base resolves.
func Validate(u *CustomUnit) error {
	if u == nil {
		return fmt.Errorf("%w: nil unit", ErrInvalid)
	}
	if err := u.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(u.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalid, MaxDescriptionLength)
	}
	if u.ID != "" {
		if _, err := uuid.Parse(u.ID); err != nil {
			return fmt.Errorf("%w: id %q is not a UUID", ErrInvalid, u.ID)
		}
	}
	return nil
}
