// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"strings"

	"devconnect/internal/errors"
)

// Role represents the type of account an identity registered as.
type Role string

const (
	// RoleStudent indicates a developer looking for work.
	RoleStudent Role = "student"
	// RoleHirer indicates an employer searching for talent.
	RoleHirer Role = "hirer"
)

// ErrInvalidRole is returned by ParseRole for any value outside the closed set.
var ErrInvalidRole = errors.New("invalid role")

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleHirer:
		return true
	default:
		return false
	}
}

// ParseRole converts boundary input into a Role. Matching is exact after trimming;
// "Student" is not a role.
func ParseRole(s string) (Role, error) {
	role := Role(strings.TrimSpace(s))
	if !role.IsValid() {
		return "", errors.Wrapf(ErrInvalidRole, "%q", s)
	}

	return role, nil
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}
