package models

import (
	"fmt"

	"github.com/dmitrijs2005/moodstream/internal/common"
)

// Request is a pending follow request from user From to user To. Like Mood,
// an empty ID denotes an unpersisted request.
type Request struct {
	ID   string
	From string
	To   string
}

// NewRequest builds an unpersisted follow request.
func NewRequest(from, to string) (Request, error) {
	if from == "" || to == "" {
		return Request{}, fmt.Errorf("%w: both from and to usernames are required", common.ErrValidation)
	}
	return Request{From: from, To: to}, nil
}

// PersistedRequest builds a Request carrying a backend-assigned id.
func PersistedRequest(id, from, to string) (Request, error) {
	if id == "" {
		return Request{}, fmt.Errorf("%w: persisted request requires an id", common.ErrValidation)
	}
	r, err := NewRequest(from, to)
	if err != nil {
		return Request{}, err
	}
	r.ID = id
	return r, nil
}

// Persisted reports whether the request carries a backend-assigned id.
func (r Request) Persisted() bool {
	return r.ID != ""
}
