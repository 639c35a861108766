// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole is the single role tag an account carries. It is set at creation
// and never changed through self-service paths.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "ADMIN"

	// Merchant accounts
	RoleVendor UserRole = "VENDOR"

	// Default role for standard registered users
	RoleUser UserRole = "USER"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleUser:
		return true
	default:
		return false
	}
}

// Is reports an exact role match. There is no hierarchy: an ADMIN is not a USER.
func (r UserRole) Is(target UserRole) bool {
	return r == target
}

// # Authenticated Identity

// Principal is the identity the auth middleware attaches to a request after
// the bearer token and the live account have both been checked.
type Principal struct {
	AccountID int64
	PublicID  string
	Role      UserRole
}
