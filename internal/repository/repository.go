// Package repository defines the data-access boundary of moodstream: user
// lookup and registration, mood and follow-request CRUD, and the live
// subscription queries feeding the UI. One adapter implements it over any
// docstore.Client, so the production store and the in-memory test store
// share every behavior.
package repository

import (
	"context"

	"github.com/dmitrijs2005/moodstream/internal/docstore"
	"github.com/dmitrijs2005/moodstream/internal/models"
)

// Registration is a live subscription handle. Unsubscribe is idempotent and
// guarantees no further callback invocations once it has returned.
type Registration = docstore.Registration

// MoodsCallback receives a full replacement mood list on every change, or a
// delivery error (a malformed stored record, or a snapshot the backend could
// not load). Subscribers must replace their entire local copy per invocation.
type MoodsCallback func(moods []models.Mood, err error)

// FollowingCallback receives the full follower list of the subscribed user.
// A missing follower document or list field is reported as corrupt state.
type FollowingCallback func(following []string, err error)

// RequestsCallback receives the full set of pending requests addressed to
// the subscribed user.
type RequestsCallback func(requests []models.Request, err error)

// Repository is the polymorphic data-access surface.
//
// Mutating operations validate their preconditions synchronously, before any
// backend call, and report backend faults verbatim. Subscription operations
// deliver an initial snapshot immediately, then one callback per change.
type Repository interface {
	// UserExists reports whether a profile document exists for username.
	UserExists(ctx context.Context, username string) (bool, error)

	// RegisterUser atomically creates the profile, credential, and empty
	// follower-list records for a new user. Empty arguments are a
	// validation error. Partial creation is never observable.
	RegisterUser(ctx context.Context, username, password, firstName, lastName string) error

	// ValidateUser compares the stored credential with the supplied one and
	// returns the User on a match, or (nil, nil) when the username is
	// unknown or the password does not match. A profile without a
	// credential record is corrupt state, not an authentication failure.
	//
	// The comparison is plaintext equality. That is a known, deliberate
	// weak point of the stored credential model, preserved as-is.
	ValidateUser(ctx context.Context, username, password string) (*models.User, error)

	// CreateMood persists a new mood under owner. The mood must not carry a
	// persisted id; the backend assigns one. The generated id is not
	// returned: the next snapshot of GetUserMoods is the source of truth.
	CreateMood(ctx context.Context, owner models.User, mood models.Mood) error

	// UpdateMood replaces the stored fields of a persisted mood.
	UpdateMood(ctx context.Context, owner models.User, mood models.Mood) error

	// DeleteMood removes a persisted mood.
	DeleteMood(ctx context.Context, owner models.User, mood models.Mood) error

	// GetUserMoods subscribes to all of user's moods, newest first, ties
	// broken by backend insertion order.
	GetUserMoods(ctx context.Context, user models.User, cb MoodsCallback) (Registration, error)

	// GetFollowingList subscribes to user's follower-list document.
	GetFollowingList(ctx context.Context, user models.User, cb FollowingCallback) (Registration, error)

	// GetFollowingMoods subscribes to the most recent mood of every user in
	// the caller-supplied following set. The set is read from the provider
	// at each delivery; it is session state, not re-derived here. A
	// followed user with no moods is simply absent from the result.
	GetFollowingMoods(ctx context.Context, user models.User, following func() []string, cb MoodsCallback) (Registration, error)

	// GetUserRequests subscribes to all pending requests addressed to user.
	GetUserRequests(ctx context.Context, user models.User, cb RequestsCallback) (Registration, error)

	// CreateRequest persists a new follow request. The request must not
	// carry a persisted id.
	CreateRequest(ctx context.Context, request models.Request) error

	// AcceptRequest atomically appends request.To to the sender's follower
	// list and deletes the request record.
	AcceptRequest(ctx context.Context, request models.Request) error

	// DeclineRequest deletes the request record only.
	DeclineRequest(ctx context.Context, request models.Request) error
}
