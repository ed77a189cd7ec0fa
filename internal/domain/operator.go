package domain

import (
	"errors"
)

// Operator is the caller identity extracted from an access token.
type Operator struct {
	ID   string
	Name string
	Role Role
}

// Role represents an operator's access level
type Role string

const (
	// RoleAdmin has full access, including direct postings and ledger locks
	RoleAdmin Role = "admin"

	// RoleTreasurer can open ledgers, create accounts and submit proposals
	RoleTreasurer Role = "treasurer"

	// RoleSigner can sign vault proposals
	RoleSigner Role = "signer"

	// RoleAuditor can verify escrow milestones and event chains
	RoleAuditor Role = "auditor"

	// RoleViewer can only read
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleTreasurer: true,
	RoleSigner:    true,
	RoleAuditor:   true,
	RoleViewer:    true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// Allows reports whether r may act where any of roles is required. Admin is
// always allowed.
func (r Role) Allows(roles ...Role) bool {
	if r == RoleAdmin {
		return true
	}

	for _, want := range roles {
		if r == want {
			return true
		}
	}

	return false
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
