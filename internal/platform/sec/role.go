// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// The overlay has exactly two principals: the administrators who may
// trigger/abort syncs and edit restrictions, and the ordinary readers who
// only browse and hide entities for themselves.
type UserRole string

const (
	// RoleAdmin may trigger/abort syncs, clear instance data, and edit
	// other users' content restrictions.
	RoleAdmin UserRole = "admin"

	// RoleUser is the default role for standard readers.
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleUser:
		return 10
	default:
		return 0
	}
}
