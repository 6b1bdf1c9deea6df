package domain

import "time"

// User is a persisted account. The password hash never leaves the repository
// layer except for bootstrap tooling.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the public view of the user.
func (u *User) Identity() UserIdentity {
	return UserIdentity{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserIdentity is the public part of a user embedded in listing results.
type UserIdentity struct {
	ID    int64
	Name  string
	Email string
}

// Actor is the authenticated caller of a request. It is supplied by the
// identity provider and never persisted.
type Actor struct {
	ID   int64
	Role UserRole
}

// Owns reports whether the actor is the owner recorded as ownerID.
// A record whose owner was removed (nil) is owned by nobody.
func (a Actor) Owns(ownerID *int64) bool {
	return ownerID != nil && *ownerID == a.ID
}
