package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The eligibility flags say which roles the user may hold;
// Role is the role the user currently acts under and is the one baked
// into issued credentials.  Two users are the same user iff their IDs
// match; everything else is mutable between requests.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – the role the user currently holds.
//  IsCreator    – user may hold the CREATOR role.
//  IsCompiler   – user may hold the COMPILER role.
//  IsManager    – user may hold the MANAGER role.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsCreator    bool      // users.is_creator
	IsCompiler   bool      // users.is_compiler
	IsManager    bool      // users.is_manager
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// EligibleFor reports whether the user may hold the given role.
func (u *User) EligibleFor(r Role) bool {
	switch r {
	case RoleCreator:
		return u.IsCreator
	case RoleCompiler:
		return u.IsCompiler
	case RoleManager:
		return u.IsManager
	default:
		return false
	}
}
