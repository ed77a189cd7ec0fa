package domain

import (
	"fmt"
	"time"
)

// EntityStatus is the lifecycle state of an Entity.
type EntityStatus string

const (
	EntityStatusActive    EntityStatus = "ACTIVE"
	EntityStatusSuspended EntityStatus = "SUSPENDED"
	EntityStatusDissolved EntityStatus = "DISSOLVED"
)

// IsValid reports whether s is a known status.
func (s EntityStatus) IsValid() bool {
	switch s {
	case EntityStatusActive, EntityStatusSuspended, EntityStatusDissolved:
		return true
	default:
		return false
	}
}

// Entity is a legal or operational unit that owns accounts and ledgers.
type Entity struct {
	ID                  string
	Name                string
	ParentID            *string
	Jurisdiction        string
	RiskAppetiteProfile string
	CapitalBufferRef    string
	Status              EntityStatus
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SetStatus flips the entity status and bumps its version.
func (e *Entity) SetStatus(status EntityStatus, now time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidEntityStatus, status)
	}

	e.Status = status
	e.Version++
	e.UpdatedAt = now

	return nil
}

// CheckParentChain walks the parent chain starting at parentID and fails if
// it reaches childID again. Lookup errors, including not found, are returned as is.
func CheckParentChain(childID string, parentID *string, lookup func(id string) (*Entity, error)) error {
	seen := map[string]bool{childID: true}

	for cur := parentID; cur != nil; {
		if seen[*cur] {
			return ErrEntityCycle
		}
		seen[*cur] = true

		parent, err := lookup(*cur)
		if err != nil {
			return err
		}

		cur = parent.ParentID
	}

	return nil
}
