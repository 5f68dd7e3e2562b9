// Package session holds the per-login state shared across the UI: the
// authenticated user, the cached list of users they follow, and the single
// live subscription keeping that cache current. Exactly one follower
// subscription is open per logged-in session; logging in again or logging
// out closes it before anything else happens.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/moodstream/internal/logging"
	"github.com/dmitrijs2005/moodstream/internal/models"
	"github.com/dmitrijs2005/moodstream/internal/repository"
)

// Session is the mutable login state. The zero value is not usable; construct
// with New. All methods are safe for concurrent use.
type Session struct {
	repo   repository.Repository
	logger logging.Logger

	mu        sync.Mutex
	user      *models.User
	following []string
	followReg repository.Registration
	followErr error
}

// New returns a logged-out session bound to repo.
func New(repo repository.Repository, logger logging.Logger) *Session {
	return &Session{repo: repo, logger: logger.With("component", "session")}
}

// Repository returns the data-access layer the session was built with.
func (s *Session) Repository() repository.Repository {
	return s.repo
}

// Login validates the credentials and, on success, replaces any previous
// login state: the old follower subscription is closed, the user is set, and
// a fresh follower subscription starts feeding the cache. Returns the
// authenticated user, or (nil, nil) when the credentials do not match.
func (s *Session) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.ValidateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	s.Logout()

	reg, err := s.repo.GetFollowingList(ctx, *user, s.onFollowing)
	if err != nil {
		return nil, fmt.Errorf("open follower subscription: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.followReg = reg
	s.mu.Unlock()

	s.logger.Info(ctx, "logged in", "username", user.Username)
	return user, nil
}

func (s *Session) onFollowing(list []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.followErr = err
		s.logger.Error(context.Background(), "follower list delivery failed", "error", err)
		return
	}
	s.followErr = nil
	s.following = list
}

// Logout closes the follower subscription and clears all login state. Safe to
// call when already logged out.
func (s *Session) Logout() {
	s.mu.Lock()
	reg := s.followReg
	s.user = nil
	s.following = nil
	s.followReg = nil
	s.followErr = nil
	s.mu.Unlock()

	// Unsubscribe outside the lock: the registration guarantees no callback
	// after it returns, and onFollowing takes the same lock.
	if reg != nil {
		reg.Unsubscribe()
	}
}

// CurrentUser returns the logged-in user, or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoggedIn reports whether a user is authenticated.
func (s *Session) LoggedIn() bool {
	return s.CurrentUser() != nil
}

// FollowingList returns a copy of the cached followed-user list. The error is
// non-nil if the latest cache delivery reported corrupt stored state.
func (s *Session) FollowingList() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.followErr != nil {
		return nil, s.followErr
	}
	out := make([]string, len(s.following))
	copy(out, s.following)
	return out, nil
}

// Following is the provider form of FollowingList for feed subscriptions. A
// delivery error surfaces as an empty set until the cache recovers.
func (s *Session) Following() []string {
	list, err := s.FollowingList()
	if err != nil {
		return nil
	}
	return list
}
