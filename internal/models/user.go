// Package models defines the domain entities of moodstream: users, moods,
// follow requests, and the two closed enumerations persisted by integer code.
// Entities are immutable values; a changed field means a new instance.
package models

// User identifies an account. The username doubles as the primary key of the
// user's profile document.
type User struct {
	Username  string
	FirstName string
	LastName  string
}

// NewUser constructs a User value.
func NewUser(username, firstName, lastName string) User {
	return User{Username: username, FirstName: firstName, LastName: lastName}
}
